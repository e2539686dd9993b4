// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"context"
	"testing"

	"github.com/Wirelery/exodus/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graph is a tiny stand-in dependency graph used to drive a fake [sys.Tracer]
// without touching the filesystem or spawning ldd.
type graph map[string][]string

func (g graph) tracer(t *testing.T) sys.Tracer {
	t.Helper()

	return func(_ context.Context, path string) ([]string, error) {
		deps, ok := g[path]
		if !ok {
			return nil, assertionError{path}
		}

		return deps, nil
	}
}

type assertionError struct{ path string }

func (e assertionError) Error() string { return "no such node: " + e.path }

func TestFindAllLibraryDependencies(t *testing.T) {
	// a -> b, c
	// b -> d
	// c -> d (shared dependency, must not be duplicated)
	// d -> (none)
	g := graph{
		"/bin/a":   {"/lib/b.so"},
		"/lib/b.so": {"/lib/d.so"},
		"/lib/c.so": {"/lib/d.so"},
		"/lib/d.so": {},
	}
	g["/bin/a"] = append(g["/bin/a"], "/lib/c.so")

	deps, err := sys.FindAllLibraryDependencies(context.Background(), g.tracer(t), "/bin/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/lib/b.so", "/lib/c.so", "/lib/d.so"}, deps)
}

func TestFindAllLibraryDependenciesHandlesCycles(t *testing.T) {
	g := graph{
		"/bin/a":   {"/lib/b.so"},
		"/lib/b.so": {"/bin/a"}, // cycle back to the root
	}

	deps, err := sys.FindAllLibraryDependencies(context.Background(), g.tracer(t), "/bin/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/lib/b.so"}, deps)
}

func TestFindAllLibraryDependenciesSkipsUnreadableLeaves(t *testing.T) {
	g := graph{
		"/bin/a": {"/lib/b.so", "/data/unreadable.bin"},
		// /lib/b.so and /data/unreadable.bin are intentionally absent from g,
		// simulating a trace failure on a leaf; this must not fail the whole
		// closure.
	}

	deps, err := sys.FindAllLibraryDependencies(context.Background(), g.tracer(t), "/bin/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/lib/b.so", "/data/unreadable.bin"}, deps)
}

func TestFindAllLibraryDependenciesFailsWhenTargetUntraceable(t *testing.T) {
	g := graph{}

	_, err := sys.FindAllLibraryDependencies(context.Background(), g.tracer(t), "/bin/missing")
	require.Error(t, err)
}
