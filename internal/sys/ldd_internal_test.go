// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "testing"

func TestParseLddLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantPath string
		wantOK   bool
		wantErr  bool
	}{
		{"vdso", "\tlinux-vdso.so.1 => (0x00007ffd)", "", false, false},
		{"resolved", "\tlibc.so.6 => /lib/libc.so.6 (0x1)", "/lib/libc.so.6", true, false},
		{"not found", "\tlibfoo.so.1 => not found", "", false, false},
		{"linker itself", "\t/lib64/ld-linux-x86-64.so.2 (0x1)", "/lib64/ld-linux-x86-64.so.2", true, false},
		{"statically linked", "\tstatically linked", "", false, false},
		{"relative after arrow", "\tlibfoo.so.1 => rel/path.so (0x1)", "", false, true},
		{"relative linker", "\trel/ld.so (0x1)", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok, err := parseLddLine(tt.line)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for line %q", tt.line)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if ok != tt.wantOK || path != tt.wantPath {
				t.Fatalf("got (%q, %v), want (%q, %v)", path, ok, tt.wantPath, tt.wantOK)
			}
		})
	}
}

func TestRebase(t *testing.T) {
	got := rebase([]string{"/lib/libc.so.6"}, "/chroot")
	want := "/chroot/lib/libc.so.6"

	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want [%s]", got, want)
	}

	same := rebase([]string{"/lib/libc.so.6"}, "")
	if same[0] != "/lib/libc.so.6" {
		t.Fatalf("expected no-op rebase, got %v", same)
	}
}
