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
// and wraps it in a FixtureIndex. It is the CLI's only
// DescriptorsIndex backing, since no physical PFF decoder is in
// scope; a real deployment would swap this for one reading actual
// descriptor-index B-tree pages.
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
