// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import "github.com/Wirelery/exodus/internal/bundle"

// Config holds everything a run needs once flags have been parsed.
type Config struct {
	Executables []string
	Renames     []bundle.Rename
	Chroot      string
	LddBinary   string
	OutputDir   string
	Debug       bool
}

// New returns a Config with its defaults populated.
func New() *Config {
	return &Config{
		LddBinary: lddDefault,
	}
}
