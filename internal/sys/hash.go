// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashChunkSize = 64 * 1024

// Sha256File streams the file at path in bounded-size chunks and returns its
// content hash as 64 lowercase hex characters. It returns [ErrIO] wrapping
// the underlying error on any read failure.
func Sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open: %w", ErrIO, err)
	}
	defer f.Close()

	h := sha256.New()

	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("%w: read: %w", ErrIO, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
