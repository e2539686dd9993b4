// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// storeDir is the name of the content-addressed directory under the bundle's
// payload root (usr/lib/exodus), holding every unique file referenced by the
// launchers.
const storeDir = "data"

// storePath returns the path of a file with the given content hash within
// the store, relative to the payload root: data/<hash[0:2]>/<hash>. Splitting
// on the hash prefix keeps any single directory from growing to the size of
// the whole bundle.
func storePath(hash string) string {
	return filepath.Join(storeDir, hash[:2], hash)
}

// placeInStore materializes sourcePath at dest, preferring a hardlink over a
// copy when both paths live on the same device: a hardlink is instant and
// uses no extra disk space, but it only works within one filesystem.
func placeInStore(sourcePath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %w", ErrIO, err)
	}

	sameDevice, err := sameFilesystem(sourcePath, filepath.Dir(dest))
	if err != nil {
		return err
	}

	if sameDevice {
		if err := os.Link(sourcePath, dest); err == nil {
			return nil
		}
		// Fall through to copy: Link can fail for reasons other than
		// cross-device (e.g. a read-only source filesystem).
	}

	return copyFile(sourcePath, dest)
}

// sameFilesystem reports whether a and b live on the same underlying
// device, by comparing the device numbers [unix.Stat] reports.
func sameFilesystem(a, b string) (bool, error) {
	var statA, statB unix.Stat_t

	if err := unix.Stat(a, &statA); err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrIO, a, err)
	}

	if err := unix.Stat(b, &statB); err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrIO, b, err)
	}

	return statA.Dev == statB.Dev, nil
}

func copyFile(sourcePath, dest string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIO, sourcePath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, sourcePath, err)
	}

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, dest, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: copy %s: %w", ErrIO, sourcePath, err)
	}

	return nil
}
