// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import "testing"

func TestPackageName(t *testing.T) {
	tests := []struct {
		out, want string
	}{
		{"cancfg/s32k.go", "cancfg"},
		{"/src/board/can-cfg/cfg.go", "can_cfg"},
	}
	for _, tc := range tests {
		if pkg := packageName(tc.out); pkg != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.out, tc.want, pkg)
		}
	}
}
