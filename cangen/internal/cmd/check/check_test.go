// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package check

import (
	"bytes"
	"strings"
	"testing"

	"github.com/embeddedgo/cantools/bittiming"
	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/cfgtab"
	"github.com/embeddedgo/cantools/ecuc"
)

func TestSamplePoint(t *testing.T) {
	tests := []struct {
		s    bittiming.Segments
		want int
	}{
		{bittiming.Segments{PropSeg: 5, Seg1: 6, Seg2: 4}, 750},
		{bittiming.Segments{PropSeg: 7, Seg1: 8, Seg2: 4}, 800},
		{bittiming.Segments{PropSeg: 1, Seg1: 1, Seg2: 2}, 600},
	}
	for _, tc := range tests {
		if sp := samplePoint(tc.s); sp != tc.want {
			t.Errorf("%+v: expected %d, got %d", tc.s, tc.want, sp)
		}
	}
}

func TestReport(t *testing.T) {
	doc, err := ecuc.Load("../../../../ecuc/testdata/s32k.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := canconf.Resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := cfgtab.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := report(&buf, tab); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		"CAN0 (id 0, FD): 5 of 64 mailboxes, first user 0\n",
		"CAN1 (id 1, classic): 10 of 32 mailboxes, first user 8\n",
		"profile 0x10 (default)",
		"data 2000 kbit/s BRS",
		"alt nominal",
		"sp=75.0%",
		"sp=80.0%",
		"0x18ff0001x",
		"fifo",
		"format A",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("%q not found in report:\n%s", s, out)
		}
	}
	if n := strings.Count(out, "TRANSMIT"); n != 5 {
		t.Errorf("expected 5 transmit mailboxes, got %d", n)
	}
}
