// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"fmt"
	"os"

	"git.lukeshu.com/go/lowmemjson"

	"github.com/mkrautz/go-pff/lib/pffindex"
)

// loadFixture reads a JSON-encoded []pffindex.FixtureRecord from path
// and wraps it in a FixtureIndex; see cmd/pff-rec's copy of this
// helper for why a fixture rather than a physical decoder backs the
// index here too.
func loadFixture(path string) (*pffindex.FixtureIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	defer f.Close()

	var records []pffindex.FixtureRecord
	if err := lowmemjson.Decode(bufio.NewReader(f), &records); err != nil {
		return nil, fmt.Errorf("load index %q: %w", path, err)
	}
	return pffindex.NewFixtureIndex(records), nil
}
