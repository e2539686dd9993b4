// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLauncher(t *testing.T) {
	content := renderLauncher(
		"../data/ab/interp",
		[]string{"../data/ab", "../data/cd"},
		"../data/ef/exec",
	)

	expected := `#!/bin/sh
HERE=$(dirname "$(readlink -f "$0")")
exec "$HERE/../data/ab/interp" \
    --library-path "$HERE/../data/ab:$HERE/../data/cd" \
    --inhibit-cache \
    "$HERE/../data/ef/exec" "$@"
`

	assert.Equal(t, expected, string(content))
}

func TestRenderLauncherNoLibraries(t *testing.T) {
	content := renderLauncher("../data/ab/interp", nil, "../data/ef/exec")

	assert.Contains(t, string(content), `--library-path "" \`)
}

func TestLibraryDirsDedupsInFirstAppearanceOrder(t *testing.T) {
	dirs, err := libraryDirs([]string{
		"/root/data/ab/libfoo.so",
		"/root/data/cd/libbar.so",
		"/root/data/ab/libbaz.so",
	}, "/root/bin")
	require.NoError(t, err)

	assert.Equal(t, []string{"../data/ab", "../data/cd"}, dirs)
}
