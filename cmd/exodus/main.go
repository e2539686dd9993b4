// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Command exodus bundles a Linux executable and its shared library
// dependencies into a relocatable, self-contained tree.
package main

import (
	"os"

	"github.com/Wirelery/exodus/internal/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
