// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const traceTimeout = 5 * time.Second

// Trace runs lddBinary against the file at path and returns the absolute
// library paths found in its output. If lddBinary exits nonzero, or
// succeeds but produces no usable output for an ELF target, it falls back
// to invoking the target's own interpreter as "<interp> --list <path>" — the
// classic ldd fallback used when ldd is a shell script built against a
// different libc than the target.
//
// If chroot is non-empty, the command is run with that directory as root
// and every returned path is reinterpreted relative to it.
func Trace(ctx context.Context, lddBinary, chroot, path string) ([]string, error) {
	out, lddErr := runTrace(ctx, lddBinary, chroot, nil, path)
	if lddErr == nil {
		deps := parseLddOutput(out)
		if len(deps) > 0 || !looksLikeELF(path) {
			return rebase(deps, chroot), nil
		}
	}

	elf, openErr := Open(rebasePath(chroot, path))
	if openErr != nil {
		return nil, &TraceError{Target: path, LddErr: lddErr, FallbackErr: openErr}
	}

	interp, err := elf.Interpreter()
	if err != nil || interp == "" {
		return nil, &TraceError{Target: path, LddErr: lddErr, FallbackErr: err}
	}

	out, fallbackErr := runTrace(ctx, interp, chroot, []string{"--list"}, path)
	if fallbackErr != nil {
		return nil, &TraceError{Target: path, LddErr: lddErr, FallbackErr: fallbackErr}
	}

	return rebase(parseLddOutput(out), chroot), nil
}

func runTrace(
	ctx context.Context,
	binary, chroot string,
	extraArgs []string,
	path string,
) (string, error) {
	ctx, stop := context.WithTimeout(ctx, traceTimeout)
	defer stop()

	args := append(append([]string{}, extraArgs...), path)

	var cmd *exec.Cmd

	if chroot != "" {
		cmd = exec.CommandContext(ctx, "chroot", append([]string{chroot, binary}, args...)...)
	} else {
		cmd = exec.CommandContext(ctx, binary, args...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %w: %s", ErrTraceFailed, binary, err, stderr.String())
	}

	return stdout.String(), nil
}

func looksLikeELF(path string) bool {
	isELF, err := Detect(path)
	return err == nil && isELF
}

func rebasePath(chroot, path string) string {
	if chroot == "" {
		return path
	}

	return filepath.Join(chroot, path)
}

func rebase(deps []string, chroot string) []string {
	if chroot == "" {
		return deps
	}

	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = filepath.Join(chroot, d)
	}

	return out
}

// ParseLddOutput parses the textual output of an ldd-compatible trace tool
// into the set of absolute library paths it names, deduplicated and ordered
// by first occurrence. Lines for virtual entries (vdso) and unresolved
// libraries ("not found") are ignored. A "statically linked" line yields no
// paths.
func ParseLddOutput(text string) ([]string, error) {
	var (
		deps []string
		seen = make(map[string]bool)
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		path, ok, err := parseLddLine(line)
		if err != nil {
			return nil, err
		}

		if !ok || seen[path] {
			continue
		}

		seen[path] = true

		deps = append(deps, path)
	}

	return deps, nil
}

func parseLddOutput(text string) []string {
	deps, _ := ParseLddOutput(text)
	return deps
}

// parseLddLine classifies a single non-blank ldd output line. ok is false
// for lines that carry no file path (vdso, "not found", "statically
// linked"). An error is returned only when the line otherwise looks like it
// names a library but the path is not absolute.
func parseLddLine(line string) (string, bool, error) {
	trimmed := strings.TrimSpace(line)

	if trimmed == "statically linked" {
		return "", false, nil
	}

	if name, path, ok := strings.Cut(trimmed, "=>"); ok {
		_ = name

		path = strings.TrimSpace(path)
		if path == "not found" || path == "" {
			return "", false, nil
		}

		// "NAME => (0xADDR)" — virtual entry with no path, e.g. vdso.
		if strings.HasPrefix(path, "(0x") {
			return "", false, nil
		}

		fields := strings.Fields(path)
		if len(fields) == 0 {
			return "", false, nil
		}

		resolved := fields[0]
		if !filepath.IsAbs(resolved) {
			return "", false, &LddOutputError{Line: line}
		}

		return resolved, true, nil
	}

	// "/PATH (0xADDR)" — the linker itself, no "NAME =>" prefix.
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", false, nil
	}

	if strings.HasPrefix(fields[0], "(0x") {
		return "", false, nil
	}

	if !filepath.IsAbs(fields[0]) {
		return "", false, &LddOutputError{Line: line}
	}

	return fields[0], true, nil
}
