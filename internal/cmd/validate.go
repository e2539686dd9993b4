// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"
	"os/exec"
)

// Validate checks the file parameters of the given [Config].
func Validate(cfg *Config) error {
	if _, err := exec.LookPath(cfg.LddBinary); err != nil {
		return fmt.Errorf("ldd binary: %w", err)
	}

	if cfg.Chroot != "" {
		info, err := os.Stat(cfg.Chroot)
		if err != nil {
			return fmt.Errorf("chroot: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("chroot: %w", ErrNotRegularFile)
		}
	}

	for _, executable := range cfg.Executables {
		if err := ValidateFilePath(executable); err != nil {
			return fmt.Errorf("executable %s: %w", executable, err)
		}
	}

	seen := make(map[string]bool, len(cfg.Renames))

	for _, r := range cfg.Renames {
		if seen[r.New] {
			return fmt.Errorf("%w: duplicate rename target %q", ErrBadRename, r.New)
		}

		seen[r.New] = true
	}

	return nil
}
