// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// launcherTemplate is a POSIX shell script, not bash-specific: it resolves
// its own location through a symlink, then execs the bundled interpreter
// with the bundled library path so the kernel never consults the host's
// dynamic linker or LD_LIBRARY_PATH.
const launcherTemplate = `#!/bin/sh
HERE=$(dirname "$(readlink -f "$0")")
exec "$HERE/%s" \
    --library-path "%s" \
    --inhibit-cache \
    "$HERE/%s" "$@"
`

// renderLauncher builds the launcher script content for an executable whose
// bundled interpreter lives at interpRelPath, whose bundled libraries live
// in the directories libDirs (relative to the launcher, in first-appearance
// order), and whose own bundled payload lives at execRelPath. All three
// paths must already be relative to the launcher's directory so the script
// never names an absolute host path.
func renderLauncher(interpRelPath string, libDirs []string, execRelPath string) []byte {
	prefixed := make([]string, len(libDirs))
	for i, dir := range libDirs {
		prefixed[i] = "$HERE/" + dir
	}

	libPath := strings.Join(prefixed, ":")

	return []byte(fmt.Sprintf(launcherTemplate, interpRelPath, libPath, execRelPath))
}

// libraryDirs returns the unique set of directories containing libPaths,
// relative to relativeTo, in the order each directory first appears among
// libPaths.
func libraryDirs(libPaths []string, relativeTo string) ([]string, error) {
	var (
		dirs []string
		seen = make(map[string]bool)
	)

	for _, lib := range libPaths {
		dir := filepath.Dir(lib)
		if seen[dir] {
			continue
		}

		seen[dir] = true

		rel, err := filepath.Rel(relativeTo, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: relativize %s: %w", ErrIO, dir, err)
		}

		dirs = append(dirs, rel)
	}

	return dirs, nil
}
