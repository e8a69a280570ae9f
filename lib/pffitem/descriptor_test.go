// SPDX-License-Identifier: GPL-2.0-or-later

package pffitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrautz/go-pff/lib/pffitem"
)

func TestDescriptorCmp(t *testing.T) {
	a := pffitem.New(1, 0, 0, false)
	b := pffitem.New(2, 0, 0, false)
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestDescriptorString(t *testing.T) {
	d := pffitem.New(5, 10, 20, true)
	assert.Contains(t, d.String(), "id=5")
	assert.Contains(t, d.String(), "recovered=true")
}
