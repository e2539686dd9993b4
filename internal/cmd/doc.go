// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd implements the exodus command line front end: flag parsing,
// environment-variable argument injection, logging setup and the run loop
// that drives bundle assembly.
package cmd
