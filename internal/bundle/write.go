// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write materializes the bundle's launchers and symlinks under the staging
// root (the content-addressed store was already populated incrementally by
// [Bundle.AddExecutable]), then atomically renames the staging root to
// dest. On any failure, the staging root is removed.
func (b *Bundle) Write(dest string) (err error) {
	defer func() {
		if err != nil {
			_ = b.cleanup()
		}
	}()

	if err := b.materialize(); err != nil {
		return err
	}

	return b.rename(dest)
}

// materialize walks the tree and creates every directory, symlink and
// launcher script under the staging root. Store files were already placed
// by [Bundle.place].
func (b *Bundle) materialize() error {
	return b.tree.Walk(func(path string, entry *Entry) error {
		full := filepath.Join(b.root, path)

		switch entry.Type {
		case TypeDirectory:
			if err := os.MkdirAll(full, 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %w", ErrIO, full, err)
			}
		case TypeStoreFile:
			// Already placed by Bundle.place; nothing further to do.
		case TypeLink:
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %w", ErrIO, filepath.Dir(full), err)
			}

			if err := os.Symlink(entry.RelatedPath, full); err != nil && !os.IsExist(err) {
				return fmt.Errorf("%w: symlink %s: %w", ErrIO, full, err)
			}
		case TypeLauncher:
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %w", ErrIO, filepath.Dir(full), err)
			}

			if err := os.WriteFile(full, entry.Content, 0o755); err != nil {
				return fmt.Errorf("%w: write %s: %w", ErrIO, full, err)
			}
		}

		return nil
	})
}

// rename atomically moves the staging root to dest. dest's parent
// directory must already exist.
func (b *Bundle) rename(dest string) error {
	if err := requireUnderPrefix(b.root); err != nil {
		return err
	}

	if err := os.Rename(b.root, dest); err != nil {
		return fmt.Errorf("%w: rename staging root to %s: %w", ErrIO, dest, err)
	}

	b.root = dest

	return nil
}

// Close removes the staging root without writing a finished bundle. It is
// safe to call after a failed [Bundle.Write].
func (b *Bundle) Close() error {
	return b.cleanup()
}

func (b *Bundle) cleanup() error {
	if err := requireUnderPrefix(b.root); err != nil {
		return err
	}

	if err := os.RemoveAll(b.root); err != nil {
		return fmt.Errorf("%w: remove staging root: %w", ErrIO, err)
	}

	return nil
}

// requireUnderPrefix guards every destructive filesystem operation against
// accidentally touching a path outside the system temp directory.
func requireUnderPrefix(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}

	prefix, err := filepath.Abs(tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}

	if abs != prefix && !strings.HasPrefix(abs, prefix+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, path)
	}

	return nil
}
