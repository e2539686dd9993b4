// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"testing"

	"github.com/Wirelery/exodus/internal/bundle"
	"github.com/stretchr/testify/assert"
)

func TestHandleParseArgsError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedOut  string
	}{
		{
			name: "flag help",
			err:  flag.ErrHelp,
		},
		{
			name:         "parse args error",
			err:          &ParseArgsError{},
			expectedCode: 2,
		},
		{
			name:         "other error",
			err:          assert.AnError,
			expectedCode: 2,
			expectedOut:  "ERROR assert.AnError general error for testing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdErr bytes.Buffer

			log.SetOutput(&stdErr)
			log.SetFlags(0)

			actualExitCode := handleParseArgsError(tt.err)

			assert.Equal(t, tt.expectedCode, actualExitCode,
				"exit code should be as expected")
			assert.Equal(t, tt.expectedOut, stdErr.String(),
				"stderr output should be as expected")
		})
	}
}

func TestHandleRunError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedOut  string
	}{
		{
			name: "success",
		},
		{
			name:         "invalid input",
			err:          fmt.Errorf("executable: %w", bundle.ErrInvalidInput),
			expectedCode: 2,
			expectedOut:  "ERROR executable: invalid input\n",
		},
		{
			name:         "conflict",
			err:          &bundle.ConflictError{Path: "bin/app", Existing: "a", New: "b"},
			expectedCode: 1,
			expectedOut: "ERROR launcher name conflict: bin/app already maps to a, " +
				"cannot also map b\n",
		},
		{
			name:         "any error",
			err:          assert.AnError,
			expectedCode: 1,
			expectedOut:  "ERROR assert.AnError general error for testing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdErr bytes.Buffer

			log.SetOutput(&stdErr)
			log.SetFlags(0)

			actualExitCode := handleRunError(tt.err)

			assert.Equal(t, tt.expectedCode, actualExitCode,
				"exit code should be as expected")
			assert.Equal(t, tt.expectedOut, stdErr.String(),
				"stderr output should be as expected")
		})
	}
}
