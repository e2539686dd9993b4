// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryNotDir is returned if an entry is supposed to be a directory
	// but is not.
	ErrEntryNotDir = errors.New("entry is not a directory")

	// ErrEntryNotExists is returned if an entry that is looked up does not
	// exist.
	ErrEntryNotExists = errors.New("entry does not exist")

	// ErrConflict is returned when two distinct entries would be placed at
	// the same path in the bundle's output tree.
	ErrConflict = errors.New("launcher name conflict")

	// ErrIO is returned on read, copy, symlink or rename failures while
	// materializing a bundle on disk.
	ErrIO = errors.New("io error")

	// ErrInvalidInput is returned when a caller-supplied path or rename is
	// invalid: a non-existent executable, a rename target containing a
	// path separator, or similar.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsafePath is returned when a destructive operation would touch a
	// path outside the process's temp-directory prefix.
	ErrUnsafePath = errors.New("refusing operation outside staging prefix")
)

// ConflictError names the two entries competing for the same path in the
// bundle's output tree.
type ConflictError struct {
	Path     string
	Existing string
	New      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%v: %s already maps to %s, cannot also map %s",
		ErrConflict, e.Path, e.Existing, e.New,
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
