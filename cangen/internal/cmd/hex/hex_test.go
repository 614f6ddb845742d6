// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/embeddedgo/cantools/cangen/internal/image"
)

func TestDump(t *testing.T) {
	ss := image.Sections{
		{Name: "b", Paddr: 0x1010, Data: []byte{5}},
		{Name: "a", Paddr: 0x1000, Data: []byte{1, 2, 3, 4}},
	}
	var buf bytes.Buffer
	if err := dump(&buf, ss); err != nil {
		t.Fatal(err)
	}
	out := strings.ToUpper(buf.String())
	for _, rec := range []string{
		":0410000001020304E2",
		":0110100005DA",
		":00000001FF",
	} {
		if !strings.Contains(out, rec) {
			t.Errorf("%s not found in:\n%s", rec, out)
		}
	}
	if ss[0].Name != "a" {
		t.Errorf("sections not sorted")
	}
}
