// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bundle assembles a relocatable, self-contained bundle of a Linux
// executable and every shared library it needs: a content-addressed store
// keyed by hash, symlinks that preserve each library's original basename,
// and a generated launcher per executable that forces resolution against
// the bundled tree.
package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Wirelery/exodus/internal/file"
	"github.com/Wirelery/exodus/internal/sys"
)

const (
	binDir      = "bin"
	payloadRoot = "usr/lib/exodus"
)

// tempPrefix is the directory every Bundle's staging root is created under.
// Write and cleanup refuse to touch any path that doesn't live under a
// prefix like this, guarding against an accidental rmtree or rename
// escaping the staging area.
var tempPrefix = os.TempDir()

// Rename instructs the bundle to place the launcher for an executable
// originally named Original under the name New instead, while the launcher
// still points at Original's payload.
type Rename struct {
	Original string
	New      string
}

// Bundle accumulates executables and their transitive library dependencies
// into a staging directory, to be written out atomically by [Bundle.Write].
// A Bundle must not be copied after construction; share it by pointer.
type Bundle struct {
	root   string
	tracer sys.Tracer
	chroot string

	mu       sync.Mutex
	tree     Tree
	store    map[string]string // content hash -> store path relative to root
	launched map[string]bool   // launcher basenames already claimed
}

// New creates a Bundle with a fresh staging directory, using tracer to
// discover each executable's library dependencies. chroot is recorded on the
// Bundle but not read by it: any chroot-relative resolution of dependency
// paths is done by tracer itself.
func New(tracer sys.Tracer, chroot string) (*Bundle, error) {
	root, err := os.MkdirTemp(tempPrefix, "exodus-bundle-*")
	if err != nil {
		return nil, fmt.Errorf("%w: mkdir staging root: %w", ErrIO, err)
	}

	return &Bundle{
		root:     root,
		tracer:   tracer,
		chroot:   chroot,
		store:    make(map[string]string),
		launched: make(map[string]bool),
	}, nil
}

// Root returns the bundle's current staging directory. It is only valid
// until [Bundle.Write] or [Bundle.Close] is called.
func (b *Bundle) Root() string {
	return b.root
}

// AddExecutable adds the ELF at path to the bundle: its interpreter and the
// transitive closure of its library dependencies are placed into the
// content-addressed store, symlinked at their original logical locations,
// and a launcher is emitted at bin/<basename(path)> (or bin/<rename> if
// renames names it).
func (b *Bundle) AddExecutable(ctx context.Context, path string, renames ...Rename) error {
	rename := renameFor(renames, filepath.Base(path))
	if strings.ContainsRune(rename, filepath.Separator) {
		return fmt.Errorf("%w: rename target %q contains a path separator", ErrInvalidInput, rename)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	f := file.New(path)

	isELF, err := f.IsELF()
	if err != nil {
		return fmt.Errorf("%w: %w", sys.ErrIO, err)
	}

	if !isELF {
		return fmt.Errorf("%w: %s is not an ELF file", ErrInvalidInput, path)
	}

	elf, err := f.Elf()
	if err != nil {
		return err
	}

	interp, err := elf.Interpreter()
	if err != nil {
		return err
	}

	deps, err := sys.FindAllLibraryDependencies(ctx, b.tracer, path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	execRel, err := b.place(path)
	if err != nil {
		return err
	}

	var interpRel string

	if interp != "" {
		interpRel, err = b.place(interp)
		if err != nil {
			return err
		}
	}

	libRelPaths := make([]string, 0, len(deps))

	for _, dep := range sortedDeps(deps, interp) {
		if _, err := b.place(dep); err != nil {
			return err
		}

		// The launcher's library path names the directories of the
		// basename-preserving symlinks, not the hash-named store payloads.
		libRelPaths = append(libRelPaths,
			filepath.Join(payloadRoot, strings.TrimPrefix(dep, string(filepath.Separator))))
	}

	if err := b.linkLibraries(deps, interp); err != nil {
		return err
	}

	return b.emitLauncher(rename, execRel, interpRel, libRelPaths)
}

// AddExecutables adds every executable in paths concurrently, bounded by
// GOMAXPROCS, returning the first error encountered. The store is protected
// by Bundle's mutex so two concurrent writers of the same content hash
// still produce exactly one payload.
func (b *Bundle) AddExecutables(ctx context.Context, paths []string, renames ...Rename) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		path := path

		group.Go(func() error {
			return b.AddExecutable(ctx, path, renames...)
		})
	}

	return group.Wait() //nolint:wrapcheck
}

func renameFor(renames []Rename, original string) string {
	for _, r := range renames {
		if r.Original == original {
			return r.New
		}
	}

	return original
}

// sortedDeps returns deps ordered by original path, with interp (if
// present) moved to the front, matching the launcher's first-appearance
// library-path ordering requirement.
func sortedDeps(deps []string, interp string) []string {
	out := make([]string, 0, len(deps))

	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)

	if interp != "" {
		out = append(out, interp)
	}

	for _, d := range sorted {
		if d != interp {
			out = append(out, d)
		}
	}

	return out
}

// place ensures the file at sourcePath is present in the content-addressed
// store and returns its path relative to the bundle root. Calling place
// twice with files of identical content (even at different source paths)
// yields the same store path: the per-hash critical section is the
// Bundle-wide mutex held by the caller.
func (b *Bundle) place(sourcePath string) (string, error) {
	hash, err := sys.Sha256File(sourcePath)
	if err != nil {
		return "", err
	}

	if rel, ok := b.store[hash]; ok {
		return rel, nil
	}

	rel := filepath.Join(payloadRoot, storePath(hash))
	dest := filepath.Join(b.root, rel)

	if err := placeInStore(sourcePath, dest); err != nil {
		return "", err
	}

	if err := preservePermissions(sourcePath, dest); err != nil {
		return "", err
	}

	b.store[hash] = rel

	if _, err := b.tree.AddStoreFile(rel, sourcePath); err != nil {
		return "", fmt.Errorf("%w", err)
	}

	return rel, nil
}

func preservePermissions(sourcePath, dest string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, sourcePath, err)
	}

	mode := info.Mode().Perm() &^ 0o111
	if info.Mode().Perm()&0o111 != 0 {
		mode = info.Mode().Perm()
	}

	if err := os.Chmod(dest, mode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrIO, dest, err)
	}

	return nil
}

// linkLibraries creates a symlink at each library's original logical
// location (relative to the bundle's payload root) pointing at its store
// payload. deps may already include interp, since the transitive closure
// walk discovers the root executable's interpreter as one of its direct
// dependencies; the seen set keeps it from being linked twice.
func (b *Bundle) linkLibraries(deps []string, interp string) error {
	all := append(append([]string(nil), deps...), interp)
	seen := make(map[string]bool, len(all))

	for _, dep := range all {
		if dep == "" || seen[dep] {
			continue
		}

		seen[dep] = true

		hash, err := sys.Sha256File(dep)
		if err != nil {
			return err
		}

		storeRel, ok := b.store[hash]
		if !ok {
			return fmt.Errorf("%w: %s was not placed in store", ErrIO, dep)
		}

		linkPath := filepath.Join(payloadRoot, strings.TrimPrefix(dep, string(filepath.Separator)))

		target, err := filepath.Rel(filepath.Dir(linkPath), storeRel)
		if err != nil {
			return fmt.Errorf("%w: relativize symlink: %w", ErrIO, err)
		}

		// A library shared with an executable added earlier already has
		// this exact link; only a link to a different payload conflicts.
		if existing, err := b.tree.GetEntry(linkPath); err == nil &&
			existing.Type == TypeLink && existing.RelatedPath == target {
			continue
		}

		if _, err := b.tree.AddLink(linkPath, target); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

func (b *Bundle) emitLauncher(name, execRel, interpRel string, libRelPaths []string) error {
	launcherPath := filepath.Join(binDir, name)

	if b.launched[name] {
		return fmt.Errorf("%w: launcher %s already emitted", ErrConflict, name)
	}

	launcherDir := filepath.Dir(launcherPath)

	interpFromLauncher := relFromLauncher(launcherDir, interpRel)
	execFromLauncher := relFromLauncher(launcherDir, execRel)

	libDirs, err := libraryDirs(libRelPaths, launcherDir)
	if err != nil {
		return err
	}

	content := renderLauncher(interpFromLauncher, libDirs, execFromLauncher)

	if _, err := b.tree.AddLauncher(launcherPath, content); err != nil {
		return fmt.Errorf("%w", err)
	}

	b.launched[name] = true

	return nil
}

func relFromLauncher(launcherDir, target string) string {
	rel, err := filepath.Rel(launcherDir, target)
	if err != nil {
		return target
	}

	return rel
}
