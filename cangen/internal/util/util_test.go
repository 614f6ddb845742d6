// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInOutFiles(t *testing.T) {
	tests := []struct {
		in, inSuffix, out, outSuffix string
		wantIn, wantOut              string
	}{
		{"s32k.yaml", ".yaml", "", ".go", "s32k.yaml", "s32k.go"},
		{"cfg/s32k.xml", ".yaml", "", ".hex", "cfg/s32k.xml", "cfg/s32k.hex"},
		{"a.yaml", ".yaml", "b.bin", ".bin", "a.yaml", "b.bin"},
	}
	for _, tc := range tests {
		in, out := InOutFiles(tc.in, tc.inSuffix, tc.out, tc.outSuffix)
		if in != tc.wantIn || out != tc.wantOut {
			t.Errorf(
				"InOutFiles(%q, %q): expected %s, %s got %s, %s",
				tc.in, tc.out, tc.wantIn, tc.wantOut, in, out,
			)
		}
	}
}

func TestModulePath(t *testing.T) {
	path, err := ModulePath([]byte("// comment\nmodule example.com/can/cfg\n\ngo 1.23\n"))
	if err != nil {
		t.Fatal(err)
	}
	if path != "example.com/can/cfg" {
		t.Errorf("expected example.com/can/cfg, got %s", path)
	}
	if _, err = ModulePath([]byte("go 1.23\n")); err == nil {
		t.Errorf("expected an error for go.mod without module directive")
	}
}

func TestSetLogLevel(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	if err := SetLogLevel("debug"); err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", log.GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}
