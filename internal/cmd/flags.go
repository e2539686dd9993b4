// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/Wirelery/exodus/internal/bundle"
)

const (
	name = "exodus"

	lddDefault = "ldd"
	outDefault = "bundle"

	usageMessage = `Usage of 'exodus':
    exodus [flags...] executable [executable...]

Bundle one or more ELF executables and every shared library they need into a
relocatable, self-contained tree:

	exodus -out ./mybundle /usr/bin/myapp

All exodus flags can also be provided via environment variable EXODUS_ARGS:
	EXODUS_ARGS="-out /tmp/out" exodus /usr/bin/myapp
`
)

// Set on build.
var version = "dev" //nolint:gochecknoglobals

// Flags parses command line arguments into a [Config].
type Flags struct {
	cfg *Config

	versionFlag bool
	renameFlag  renameListValue
	flagSet     *flag.FlagSet
}

// NewFlags builds a Flags bound to cfg, writing usage and parse errors to
// output.
func NewFlags(cfg *Config, output io.Writer) *Flags {
	flags := &Flags{cfg: cfg}
	flags.renameFlag.target = &cfg.Renames

	flags.initFlagset(output)

	return flags
}

func (f *Flags) initFlagset(output io.Writer) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = f.usage

	fs.Var(
		(*FilePath)(&f.cfg.OutputDir),
		"out",
		"directory the finished bundle is written to",
	)

	fs.StringVar(
		&f.cfg.LddBinary,
		"ldd",
		lddDefault,
		"ldd-compatible trace tool to use for dependency discovery",
	)

	fs.StringVar(
		&f.cfg.Chroot,
		"chroot",
		f.cfg.Chroot,
		"resolve dependency paths relative to this directory",
	)

	fs.Var(
		&f.renameFlag,
		"rename",
		"rename a launcher: OLD=NEW. Flag may be used more than once.",
	)

	fs.BoolVar(
		&f.cfg.Debug,
		"debug",
		f.cfg.Debug,
		"enable debug output",
	)

	fs.BoolVar(
		&f.versionFlag,
		"version",
		f.versionFlag,
		"show version and exit",
	)

	f.flagSet = fs
}

// ParseArgs parses args (not including the program name) into f's Config.
func (f *Flags) ParseArgs(args []string) error {
	if err := f.flagSet.Parse(args); err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	if f.versionFlag {
		f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: ErrHelp}
	}

	positional := f.flagSet.Args()
	if len(positional) == 0 {
		return f.Fail("no executable given", ErrNoExecutable)
	}

	executables := make([]string, 0, len(positional))

	for _, p := range positional {
		abs, err := AbsoluteFilePath(p)
		if err != nil {
			return f.Fail("executable path", err)
		}

		executables = append(executables, abs)
	}

	f.cfg.Executables = executables

	if f.cfg.OutputDir == "" {
		f.cfg.OutputDir = outDefault
	}

	return nil
}

// Fail fails like flag does: it prints the error, then usage.
func (f *Flags) Fail(msg string, err error) error {
	wrapped := &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), wrapped.Error())

	f.flagSet.Usage()

	return wrapped
}

func (f *Flags) printVersionInformation() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintf(f.flagSet.Output(), "%s: %s\n", name, version)
		return
	}

	fmt.Fprintf(f.flagSet.Output(), "%s: %s\n\n", name, version)
	fmt.Fprintln(f.flagSet.Output(), buildInfo.String())
}

func (f *Flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}

// renameListValue implements [flag.Value] for repeated -rename=OLD=NEW
// arguments.
type renameListValue struct {
	target *[]bundle.Rename
}

func (r *renameListValue) String() string {
	if r.target == nil {
		return ""
	}

	parts := make([]string, 0, len(*r.target))
	for _, rn := range *r.target {
		parts = append(parts, rn.Original+"="+rn.New)
	}

	return strings.Join(parts, ",")
}

func (r *renameListValue) Set(s string) error {
	original, newName, ok := strings.Cut(s, "=")
	if !ok || newName == "" || strings.ContainsRune(newName, '/') {
		return fmt.Errorf("%w: %q", ErrBadRename, s)
	}

	*r.target = append(*r.target, bundle.Rename{Original: original, New: newName})

	return nil
}
