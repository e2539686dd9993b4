// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBinaryNotFound is returned when a bare command name cannot be resolved
// against any directory on the search path.
var ErrBinaryNotFound = fmt.Errorf("binary not found on PATH")

// ResolveBinary resolves name to an absolute, executable path the way a
// shell would: a name containing a path separator is used as-is (after
// making it absolute), otherwise each directory in pathEnv is searched in
// order. pathEnv is typically the value of the PATH environment variable,
// taken as a parameter rather than read directly so callers can resolve
// against a different search path, e.g. one rooted at a chroot.
func ResolveBinary(name, pathEnv string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrIO, err)
		}

		if !isExecutableFile(abs) {
			return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
		}

		return abs, nil
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode()&0o111 != 0
}
