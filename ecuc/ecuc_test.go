// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ecuc

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadYAML(t *testing.T) {
	doc, err := Load("testdata/s32k.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Controllers) != 2 {
		t.Fatalf("expected 2 controllers, got %d", len(doc.Controllers))
	}
	c := doc.Controllers[1]
	if c.Name != "CAN0" || c.ClockHz != 40000000 {
		t.Errorf("unexpected controller: %+v", c)
	}
	if c.DefaultBaudrate == nil || *c.DefaultBaudrate != 0x10 {
		t.Errorf("defaultBaudrate: expected 0x10")
	}
	if c.RamBlock == nil || len(c.RamBlock.Regions) != 2 || c.RamBlock.Regions[1] != 64 {
		t.Errorf("unexpected ram block: %+v", c.RamBlock)
	}
	b := c.Baudrates[0]
	if b.FD == nil || !b.FD.BitRateSwitch || b.FD.TdcOffset == nil || *b.FD.TdcOffset != 5 {
		t.Errorf("unexpected FD sub-profile: %+v", b.FD)
	}
	fifo := doc.Controllers[0].RxFifo
	if fifo == nil || len(fifo.Filters) != 8 || fifo.Filters[4].Mask != 0x7f0 {
		t.Errorf("unexpected rx fifo: %+v", fifo)
	}
	if len(doc.HardwareObjects) != 6 {
		t.Fatalf("expected 6 hardware objects, got %d", len(doc.HardwareObjects))
	}
	if ho := doc.HardwareObjects[4]; ho.MessageID != 0x18ff0001 || ho.IDType != "extended" {
		t.Errorf("unexpected hardware object: %+v", ho)
	}
}

func TestLoadXML(t *testing.T) {
	doc, err := Load("testdata/single.xml")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Controllers) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(doc.Controllers))
	}
	c := doc.Controllers[0]
	if c.ClockHz != 8000000 {
		t.Errorf("clockHz: expected 8000000, got %d", c.ClockHz)
	}
	if c.MaxMailboxes == nil || *c.MaxMailboxes != 32 {
		t.Errorf("maxMailboxes: expected 32")
	}
	if len(c.Baudrates) != 1 || c.Baudrates[0].BaudKbps != 500 {
		t.Errorf("unexpected baudrates: %+v", c.Baudrates)
	}
	if len(doc.HardwareObjects) != 2 || doc.HardwareObjects[1].MessageID != 0x1abcdef {
		t.Errorf("unexpected hardware objects")
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"v1.0.0", true},
		{"1.3", true},
		{"v0.9.0", false},
		{"v2.0.0", false},
		{"", false},
		{"one", false},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			_, err := Parse([]byte("version: \""+tc.version+"\"\n"), YAML)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestUnknownField(t *testing.T) {
	_, err := Parse([]byte("version: v1.0.0\nbogus: 1\n"), YAML)
	if err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestUintYAML(t *testing.T) {
	var v struct {
		A Uint   `yaml:"a"`
		B Uint64 `yaml:"b"`
	}
	if err := yaml.Unmarshal([]byte("a: 0x80\nb: 0b101\n"), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != 0x80 || v.B != 5 {
		t.Errorf("expected 0x80 and 5, got %#x and %d", v.A, v.B)
	}
	out, err := yaml.Marshal(struct {
		A Uint `yaml:"a"`
		B Uint `yaml:"b"`
	}{0x7ff, 8})
	if err != nil {
		t.Fatal(err)
	}
	if s := string(out); !strings.Contains(s, "a: 0x7ff") || !strings.Contains(s, "b: 8") {
		t.Errorf("unexpected output:\n%s", s)
	}
}

func TestFormatOf(t *testing.T) {
	if f, err := FormatOf("a/b.ARXML"); err != nil || f != XML {
		t.Errorf("expected XML, got %v %v", f, err)
	}
	if _, err := FormatOf("cfg.json"); err == nil {
		t.Errorf("expected an error for .json")
	}
}
