// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
)

// ordered reports whether x may precede y in the dispatch sequence.
func ordered(x, y *Descriptor) bool {
	xr, yr := x.Type == canconf.Receive, y.Type == canconf.Receive
	switch {
	case xr && !yr:
		return true
	case xr != yr:
		return false
	case x.Controller != y.Controller:
		return x.Controller < y.Controller
	}
	return x.MessageID <= y.MessageID
}

func TestOrder(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	descs := make([]Descriptor, 200)
	for i := range descs {
		descs[i] = Descriptor{
			Object:     i,
			Type:       canconf.ObjectType(rnd.Intn(2)),
			Controller: rnd.Intn(3),
			MessageID:  uint32(rnd.Intn(16)),
		}
	}
	if err := CheckOrder(descs); err == nil {
		t.Fatalf("random sequence reported as ordered")
	}
	Order(descs)
	for i := 0; i < len(descs); i++ {
		for j := i + 1; j < len(descs); j++ {
			if !ordered(&descs[i], &descs[j]) {
				t.Fatalf("%d: %+v before %d: %+v", i, descs[i], j, descs[j])
			}
		}
	}
	if err := CheckOrder(descs); err != nil {
		t.Fatal(err)
	}
}

func TestOrderStable(t *testing.T) {
	descs := []Descriptor{
		{Object: 5, Instance: 0, Type: canconf.Transmit, MessageID: 0x300},
		{Object: 5, Instance: 1, Type: canconf.Transmit, MessageID: 0x300},
		{Object: 1, Type: canconf.Receive, MessageID: 0x200},
		{Object: 5, Instance: 2, Type: canconf.Transmit, MessageID: 0x300},
		{Object: 2, Type: canconf.Receive, MessageID: 0x100},
	}
	Order(descs)
	want := []struct{ object, instance int }{{2, 0}, {1, 0}, {5, 0}, {5, 1}, {5, 2}}
	for i, w := range want {
		if descs[i].Object != w.object || descs[i].Instance != w.instance {
			t.Errorf("%d: expected %v, got object %d instance %d", i, w, descs[i].Object, descs[i].Instance)
		}
	}
}

func TestCheckOrder(t *testing.T) {
	descs := []Descriptor{
		{Type: canconf.Transmit, Controller: 0, MessageID: 1},
		{Type: canconf.Receive, Controller: 0, MessageID: 2},
	}
	err := CheckOrder(descs)
	var ov *diag.OrderingViolation
	if !errors.As(err, &ov) {
		t.Fatalf("expected *diag.OrderingViolation, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	objs := []canconf.HardwareObject{
		{ID: 0, Type: canconf.Receive, MessageID: 0x10, FilterMask: 0x7f0, HasFilterMask: true},
		{ID: 1, Type: canconf.Transmit, MessageID: 0x20, Multiplex: 2, Priority: 3},
	}
	a, err := Allocate(classicCtrl(16), objs)
	if err != nil {
		t.Fatal(err)
	}
	descs, err := Describe(objs, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(descs) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descs))
	}
	d := descs[2]
	if d.Object != 1 || d.Instance != 1 || d.Index != 2 || d.Address != 0xa0 || d.Priority != 3 {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if descs[0].MaskIndex != -1 {
		t.Errorf("mask index must be unset before FilterMasks")
	}

	a.Slots[0].Object = 9
	if _, err = Describe(objs, a); !errors.Is(err, diag.ErrFatal) {
		t.Errorf("expected a fatal error for a dangling object, got %v", err)
	}
}

func TestFilterMasks(t *testing.T) {
	descs := []Descriptor{
		{Type: canconf.Receive, IDType: canconf.Standard, Mask: 0x7f0, HasMask: true},
		{Type: canconf.Receive, IDType: canconf.Standard},
		{Type: canconf.Receive, IDType: canconf.Extended, Mask: 0x1fffff00, HasMask: true},
		{Type: canconf.Receive, IDType: canconf.Standard, Mask: 0x7f0, HasMask: true},
		{Type: canconf.Transmit, IDType: canconf.Standard, Mask: 0x7ff, HasMask: true},
		{Type: canconf.Receive, IDType: canconf.Mixed, Mask: 0x1fffff00, HasMask: true},
		{Type: canconf.Receive, IDType: canconf.Mixed, Mask: 0x1ffff800, HasMask: true},
	}
	for i := range descs {
		descs[i].MaskIndex = -1
	}
	masks := FilterMasks(descs)
	want := []uint32{0x7f0 << 18, 0x1fffff00, 0x1ffff800}
	if len(masks) != len(want) {
		t.Fatalf("expected %d masks, got %#x", len(want), masks)
	}
	for i := range want {
		if masks[i] != want[i] {
			t.Errorf("%d: expected %#08x, got %#08x", i, want[i], masks[i])
		}
	}
	for i, k := range []int{0, -1, 1, 0, -1, 1, 2} {
		if descs[i].MaskIndex != k {
			t.Errorf("descriptor %d: expected mask index %d, got %d", i, k, descs[i].MaskIndex)
		}
	}
}

func TestEncodeID(t *testing.T) {
	tests := []struct {
		t    canconf.IDType
		id   uint32
		want uint32
	}{
		{canconf.Standard, 0x123, 0x123 << 18},
		{canconf.Standard, 0xfff, 0x7ff << 18},
		{canconf.Extended, 0x18ff0001, 0x18ff0001},
		{canconf.Extended, 0xffffffff, 0x1fffffff},
		{canconf.Mixed, 0x1ffff800, 0x1ffff800},
		{canconf.Mixed, 0x7ff, 0x7ff},
	}
	for _, tc := range tests {
		if got := EncodeID(tc.t, tc.id); got != tc.want {
			t.Errorf("%v %#x: expected %#08x, got %#08x", tc.t, tc.id, tc.want, got)
		}
	}
}
