// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wirelery/exodus/internal/bundle"
	"github.com/Wirelery/exodus/internal/sys"
)

func runBundle(ctx context.Context, cfg *Config) error {
	tracer := func(ctx context.Context, path string) ([]string, error) {
		return sys.Trace(ctx, cfg.LddBinary, cfg.Chroot, path)
	}

	b, err := bundle.New(tracer, cfg.Chroot)
	if err != nil {
		return err
	}

	if err := b.AddExecutables(ctx, cfg.Executables, cfg.Renames...); err != nil {
		_ = b.Close()
		return err
	}

	if err := b.Write(cfg.OutputDir); err != nil {
		return err
	}

	slog.Debug("bundle written", slog.String("path", cfg.OutputDir))

	return nil
}

// handleParseArgsError maps a [Flags.ParseArgs] error to a process exit
// code. [ParseArgsError] has already printed its own message via
// [Flags.Fail], so it is not logged again here.
func handleParseArgsError(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	var parseErr *ParseArgsError
	if errors.As(err, &parseErr) {
		return 2
	}

	log.Printf("ERROR %v", err)

	return 2
}

// handleRunError maps an error from the bundle-building run to a process
// exit code: 0 on success, 2 for caller input errors, 1 for everything
// else.
func handleRunError(err error) int {
	if err == nil {
		return 0
	}

	log.Printf("ERROR %v", err)

	if errors.Is(err, bundle.ErrInvalidInput) {
		return 2
	}

	return 1
}

// Run parses arguments from the environment and command line, builds the
// bundle, and returns a process exit code.
func Run() int {
	cfg := New()
	flags := NewFlags(cfg, os.Stderr)

	args := append(EnvArgs(), os.Args[1:]...) //nolint:gocritic

	if err := flags.ParseArgs(args); err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(os.Stderr, cfg.Debug)

	if err := Validate(cfg); err != nil {
		return handleRunError(err)
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGABRT,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	)
	defer cancel()

	return handleRunError(runBundle(ctx, cfg))
}
