// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildELF assembles a minimal synthetic ELF64 little-endian file, optionally
// carrying a single PT_INTERP program header, enough to exercise bundle
// assembly without depending on a real compiled binary.
func buildELF(t *testing.T, dir, name, interp string) string {
	t.Helper()

	const phoff, phentsize = 64, 56

	var (
		phnum      int
		dataOffset = phoff
		interpData []byte
	)

	if interp != "" {
		phnum = 1
		interpData = append([]byte(interp), 0)
		dataOffset = phoff + phentsize
	}

	buf := make([]byte, dataOffset+len(interpData))

	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // little endian
	buf[6] = 1 // version

	putLE(buf, 32, uint64(phoff), 8)
	putLE(buf, 54, uint64(phentsize), 2)
	putLE(buf, 56, uint64(phnum), 2)

	if phnum == 1 {
		// p_type=PT_INTERP(3), p_offset, p_filesz.
		putLE(buf, phoff+0, 3, 4)
		putLE(buf, phoff+8, uint64(dataOffset), 8)
		putLE(buf, phoff+32, uint64(len(interpData)), 8)
		copy(buf[dataOffset:], interpData)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf, 0o755))

	return path
}

func putLE(buf []byte, offset int, value uint64, width int) {
	for i := 0; i < width; i++ {
		buf[offset+i] = byte(value >> (8 * i))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}
