// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers_test

import (
	"github.com/mkrautz/go-pff/lib/containers"
	"github.com/mkrautz/go-pff/lib/pffitem"
)

var _ containers.Ordered[pffitem.Descriptor] = pffitem.Descriptor{}
