// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const config = "../../../../ecuc/testdata/s32k.yaml"

func TestCommand(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		size  int
		data  int // offset of the image in the output
	}{
		{"bin", nil, 480, 0},
		{"bin", []string{"--base", "0x1000"}, 480, 0},
		{"uf2", []string{"--base", "0x20000000", "--family", "rp2040"}, 2 * 512, 32},
	}
	for _, tc := range tests {
		t.Run(tc.name+strings.Join(tc.flags, ""), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "cancfg."+tc.name)
			cmd := Command(tc.name)
			cmd.SetArgs(append(tc.flags, config, out))
			if err := cmd.Execute(); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) != tc.size {
				t.Fatalf("expected %d bytes, got %d", tc.size, len(data))
			}
			if !bytes.HasPrefix(data[tc.data:], []byte("CANT")) {
				t.Errorf("image header not found at %d: % x", tc.data, data[tc.data:tc.data+4])
			}
			if tc.name == "uf2" && !bytes.HasPrefix(data, []byte("UF2\n")) {
				t.Errorf("bad UF2 magic: % x", data[:4])
			}
		})
	}
}

func TestFamilyNames(t *testing.T) {
	names := strings.Split(familyNames(), "\n")
	if len(names) < 2 || names[0] != "absolute" {
		t.Errorf("unexpected family list %q", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("families not sorted: %q", names)
			break
		}
	}
}
