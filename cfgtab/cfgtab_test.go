// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfgtab

import (
	"errors"
	"testing"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
	"github.com/embeddedgo/cantools/ecuc"
)

func load(t *testing.T, name string) *canconf.Config {
	t.Helper()
	doc, err := ecuc.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := canconf.Resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func checkRange(t *testing.T, what string, r Range, first, count int) {
	t.Helper()
	if r.First != first || r.Count != count {
		t.Errorf("%s: expected %d+%d, got %d+%d", what, first, count, r.First, r.Count)
	}
}

func TestGenerateS32K(t *testing.T) {
	tab, err := Generate(load(t, "../ecuc/testdata/s32k.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Warnings) != 0 {
		t.Errorf("unexpected warnings:\n%s", tab.Warnings)
	}

	want := []struct {
		object, index, addr int
		msgID               uint32
	}{
		{0, 0, 0x80, 0x100},
		{1, 0, 0x80, 0x000},
		{2, 8, 0x100, 0x200},
		{5, 4, 0xc0, 0x050},
		{3, 1, 0x90, 0x300},
		{3, 2, 0xa0, 0x300},
		{3, 3, 0xb0, 0x300},
		{4, 9, 0x110, 0x18ff0001},
	}
	if len(tab.Mailboxes) != len(want) {
		t.Fatalf("expected %d descriptors, got %d", len(want), len(tab.Mailboxes))
	}
	for i, w := range want {
		m := tab.Mailboxes[i]
		if m.Object != w.object || m.Index != w.index || m.Address != w.addr || m.MessageID != w.msgID {
			t.Errorf("%d: expected %+v, got %+v", i, w, m)
		}
	}
	if !tab.Mailboxes[1].Fifo || !tab.Mailboxes[3].Trigger || tab.Mailboxes[3].Padding != 0xcc {
		t.Errorf("descriptor flags not carried over")
	}

	if len(tab.FilterMasks) != 2 || tab.FilterMasks[0] != 0x7f0<<18 || tab.FilterMasks[1] != 0x7ff<<18 {
		t.Errorf("unexpected filter masks %#x", tab.FilterMasks)
	}
	if tab.Mailboxes[0].MaskIndex != 0 || tab.Mailboxes[1].MaskIndex != -1 || tab.Mailboxes[2].MaskIndex != 1 {
		t.Errorf("bad mask indexes")
	}

	c0, c1 := &tab.Controllers[0], &tab.Controllers[1]
	checkRange(t, "CAN0 HRH", c0.HRH, 0, 1)
	checkRange(t, "CAN0 HTH", c0.HTH, 3, 4)
	checkRange(t, "CAN1 HRH", c1.HRH, 1, 2)
	checkRange(t, "CAN1 HTH", c1.HTH, 7, 1)
	if c0.MaxMBCount != 5 || c1.MaxMBCount != 10 || c1.FirstUserMailbox != 8 {
		t.Errorf(
			"unexpected mailbox counts %d, %d (first user %d)",
			c0.MaxMBCount, c1.MaxMBCount, c1.FirstUserMailbox,
		)
	}
	if c0.MCR != 0x00030804 || c1.MCR != 0x20030009 {
		t.Errorf("unexpected MCR %#08x, %#08x", c0.MCR, c1.MCR)
	}
	if c0.CTRL1 != 0x037b6046 || c1.CTRL1 != 0x01eb8004 {
		t.Errorf("unexpected CTRL1 %#08x, %#08x", c0.CTRL1, c1.CTRL1)
	}
	if c0.FDCTRL != 0x80188500 || c1.FDCTRL != 0 {
		t.Errorf("unexpected FDCTRL %#08x, %#08x", c0.FDCTRL, c1.FDCTRL)
	}
	if len(c1.RxFifo) != 8 || c1.RxFifo[0].Value != 0x09180000 || c1.RxFifo[0].Mask != 0xfff80000 {
		t.Errorf("unexpected RX FIFO table %#x", c1.RxFifo)
	}
	if p := c0.Profiles[0]; p.Alt == nil || p.Main.CBT == nil || p.Main.FD == nil {
		t.Errorf("CAN0 profile variants missing")
	}
	if s := c1.Profiles[1].Main.Nominal.Segments; s.PropSeg != 3 || s.Seg1 != 6 || s.Seg2 != 6 || s.SJW != 4 {
		t.Errorf("unexpected auto derived segments %+v", s)
	}

	if ds, ok := tab.Handle(3); !ok || len(ds) != 3 || ds[0].Object != 3 {
		t.Errorf("bad handle lookup for object 3: %+v", ds)
	}
	if _, ok := tab.Handle(99); ok {
		t.Errorf("object 99 must not exist")
	}
	for i, h := range tab.Handles {
		if h.Object != i {
			t.Errorf("handles not sorted by object: %+v", tab.Handles)
			break
		}
	}

	k := tab.Constants
	want2 := Constants{
		MaxMBCount:          10,
		MaxFilterCount:      8,
		MaxBaudrateCount:    2,
		ControllerCount:     2,
		HardwareObjectCount: 6,
		DescriptorCount:     8,
		FilterMaskCount:     2,
	}
	if k != want2 {
		t.Errorf("expected constants %+v, got %+v", want2, k)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := load(t, "../ecuc/testdata/s32k.yaml")
	t1, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < 10; n++ {
		t2, err := Generate(cfg)
		if err != nil {
			t.Fatal(err)
		}
		for i := range t1.Mailboxes {
			if t1.Mailboxes[i] != t2.Mailboxes[i] {
				t.Fatalf("run %d: descriptor %d differs", n, i)
			}
		}
	}
}

func TestGenerateSingle(t *testing.T) {
	tab, err := Generate(load(t, "../ecuc/testdata/single.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Mailboxes) != 2 || tab.Constants.ControllerCount != 1 {
		t.Fatalf("unexpected table %+v", tab)
	}
	c := tab.Controllers[0]
	checkRange(t, "HRH", c.HRH, 0, 1)
	checkRange(t, "HTH", c.HTH, 1, 1)
	if c.FDCTRL != 0 || c.RxFifo != nil {
		t.Errorf("classic controller without FIFO expected")
	}
}

func TestGenerateWarnings(t *testing.T) {
	cfg := load(t, "../ecuc/testdata/s32k.yaml")
	cfg.Controllers[1].Baudrates[0].Seg1 = 5 // 15 TQ declared, 16 from clock
	tab, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(tab.Warnings))
	}

	_, err = Options{Strict: true}.Generate(cfg)
	if !errors.Is(err, diag.ErrWarning) || diag.IsFatal(err) {
		t.Errorf("strict mode: expected a warning error, got %v", err)
	}
}

func TestGenerateErrors(t *testing.T) {
	cfg := load(t, "../ecuc/testdata/s32k.yaml")
	cfg.Controllers[0].Baudrates[0].Prescaler = 0
	cfg.Controllers[1].RxFifo.Filters = cfg.Controllers[1].RxFifo.Filters[:4]
	tab, err := Generate(cfg)
	if tab != nil {
		t.Errorf("no table expected on fatal errors")
	}
	var (
		oor *diag.OutOfRange
		inv *diag.Invalid
	)
	if !errors.As(err, &oor) || !errors.As(err, &inv) {
		t.Errorf("expected errors of both controllers, got %v", err)
	}
}
