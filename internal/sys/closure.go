// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "context"

// Tracer traces the direct library dependencies of a single file, in the
// shape [Trace] produces.
type Tracer func(ctx context.Context, path string) ([]string, error)

// FindDirectLibraryDependencies returns the libraries target links against
// directly, plus its interpreter if it has one, via tracer.
func FindDirectLibraryDependencies(ctx context.Context, tracer Tracer, target string) ([]string, error) {
	deps, err := tracer(ctx, target)
	if err != nil {
		return nil, err
	}

	elf, err := Open(target)
	if err != nil {
		return deps, nil //nolint:nilerr
	}

	interp, err := elf.Interpreter()
	if err != nil || interp == "" {
		return deps, nil //nolint:nilerr
	}

	for _, d := range deps {
		if d == interp {
			return deps, nil
		}
	}

	return append(deps, interp), nil
}

// FindAllLibraryDependencies computes the transitive closure of library
// dependencies reachable from target using a worklist: each newly
// discovered library is itself traced for its own dependencies. Items that
// cannot be read or are not ELF files are treated as leaves rather than
// failing the whole closure, since a bundle may legitimately reference a
// non-ELF data file reached via a symlink chain. The target itself is never
// included in the result. Cycles are handled by tracking visited paths.
func FindAllLibraryDependencies(ctx context.Context, tracer Tracer, target string) ([]string, error) {
	var (
		result  []string
		visited = map[string]bool{target: true}
		queue   = []string{target}
	)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps, err := FindDirectLibraryDependencies(ctx, tracer, current)
		if err != nil {
			if current == target {
				return nil, err
			}

			continue
		}

		for _, dep := range deps {
			if visited[dep] {
				continue
			}

			visited[dep] = true

			result = append(result, dep)

			queue = append(queue, dep)
		}
	}

	return result, nil
}
