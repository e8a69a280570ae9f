// SPDX-License-Identifier: GPL-2.0-or-later

// Package pffio provides the opaque I/O plumbing threaded through
// DescriptorsIndex calls: a file handle and nothing else.  The item
// tree builder receives a *Handle and passes it along unexamined; it
// never reads through it directly.
package pffio

import (
	"github.com/mkrautz/go-pff/lib/diskio"
)

// Handle is the opaque IoHandle token of the core spec: a thin,
// uninterpreted wrapper around a diskio.File.  Only concrete
// DescriptorsIndex implementations dereference it.
type Handle struct {
	file diskio.File[int64]
}

// NewHandle wraps an already-open diskio.File.
func NewHandle(f diskio.File[int64]) *Handle {
	return &Handle{file: f}
}

// Open opens path read-only and wraps it in a Handle.
func Open(path string) (*Handle, error) {
	f, err := diskio.OpenOSFile[int64](path)
	if err != nil {
		return nil, err
	}
	return NewHandle(f), nil
}

// File returns the underlying diskio.File for use by a concrete
// DescriptorsIndex implementation; the builder never calls this.
func (h *Handle) File() diskio.File[int64] {
	if h == nil {
		return nil
	}
	return h.file
}

// Close releases the underlying file, if any.
func (h *Handle) Close() error {
	if h == nil || h.file == nil {
		return nil
	}
	return h.file.Close()
}
