// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
)

var (
	// ErrNotELF is returned when the ELF magic number is missing where an
	// ELF file was required.
	ErrNotELF = errors.New("not an ELF file")

	// ErrMalformedELF is returned when header fields are out of range or the
	// program header table is truncated.
	ErrMalformedELF = errors.New("malformed ELF file")

	// ErrMalformedLddOutput is returned when a trace line does not match any
	// known shape and contains a relative or empty path.
	ErrMalformedLddOutput = errors.New("malformed ldd output")

	// ErrTraceFailed is returned when both the trace tool and the
	// interpreter's "--list" fallback fail.
	ErrTraceFailed = errors.New("dependency trace failed")

	// ErrIO is returned on read, copy, symlink or rename failures.
	ErrIO = errors.New("io error")
)

// TraceError wraps the failure of both the ldd invocation and the
// interpreter fallback, carrying enough detail for callers to report the
// root cause.
type TraceError struct {
	Target      string
	LddErr      error
	FallbackErr error
}

func (e *TraceError) Error() string {
	if e.FallbackErr == nil {
		return fmt.Sprintf("trace %s: %v", e.Target, e.LddErr)
	}

	return fmt.Sprintf(
		"trace %s: ldd: %v; fallback --list: %v",
		e.Target, e.LddErr, e.FallbackErr,
	)
}

func (e *TraceError) Is(target error) bool {
	return target == ErrTraceFailed
}

func (e *TraceError) Unwrap() error {
	return e.LddErr
}

// LddOutputError records the offending line when ldd output cannot be
// parsed.
type LddOutputError struct {
	Line string
}

func (e *LddOutputError) Error() string {
	return fmt.Sprintf("%v: %q", ErrMalformedLddOutput, e.Line)
}

func (e *LddOutputError) Is(target error) bool {
	return target == ErrMalformedLddOutput
}
