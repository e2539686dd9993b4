// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package file provides a thin, memoizing wrapper around a path on disk: its
// content hash and whether it is an ELF file are each computed at most once,
// no matter how many times they are queried.
package file

import (
	"sync"

	"github.com/Wirelery/exodus/internal/sys"
)

// File is a "file with hash and ELF-ness" view over a path. Every attribute
// is computed lazily on first access and cached for the lifetime of the
// value: this is an explicit contract callers rely on to bound I/O cost, not
// an incidental optimization, so a File must never be copied after its
// attributes have been observed — share it by pointer.
type File struct {
	path string

	hashOnce sync.Once
	hash     string
	hashErr  error

	elfOnce sync.Once
	isELF   bool
	elf     *sys.Elf
	elfErr  error
}

// New wraps path. It performs no I/O.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the source path this File was constructed from.
func (f *File) Path() string {
	return f.path
}

// Hash returns the file's SHA-256 content hash as 64 lowercase hex
// characters, reading the file exactly once across the lifetime of f.
func (f *File) Hash() (string, error) {
	f.hashOnce.Do(func() {
		f.hash, f.hashErr = sys.Sha256File(f.path)
	})

	return f.hash, f.hashErr
}

// IsELF reports whether the file starts with the ELF magic number. The
// detection reads only the first four bytes and is cached like Hash.
func (f *File) IsELF() (bool, error) {
	f.probeELF()
	return f.isELF, f.elfErr
}

// Elf returns the parsed ELF view of the file, or nil if the file is not an
// ELF file. The underlying [sys.Open] is performed at most once.
func (f *File) Elf() (*sys.Elf, error) {
	f.probeELF()
	return f.elf, f.elfErr
}

func (f *File) probeELF() {
	f.elfOnce.Do(func() {
		isELF, err := sys.Detect(f.path)
		if err != nil {
			f.elfErr = err
			return
		}

		f.isELF = isELF
		if !isELF {
			return
		}

		f.elf, f.elfErr = sys.Open(f.path)
	})
}

// Equal reports whether f and other have identical content, by comparing
// content hashes rather than source paths: two Files with equal content
// hash are treated as the same payload regardless of where they came from.
func (f *File) Equal(other *File) bool {
	a, errA := f.Hash()
	b, errB := other.Hash()

	return errA == nil && errB == nil && a == b
}
