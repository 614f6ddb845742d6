// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
)

// Descriptor describes one mailbox as seen by the runtime dispatch code.
type Descriptor struct {
	Object     int // hardware object ID
	Instance   int
	Type       canconf.ObjectType
	Controller int
	IDType     canconf.IDType
	MessageID  uint32
	Priority   uint8
	Address    int
	Payload    int
	Index      int
	Fifo       bool
	Trigger    bool
	Padding    uint8
	Mask       uint32 // raw filter mask, valid if HasMask
	HasMask    bool
	MaskIndex  int // index in the filter mask table or -1
}

// Describe joins the slots of the allocation a with the hardware objects
// they were assigned to. Descriptors follow the slot order.
func Describe(objs []canconf.HardwareObject, a *Allocation) ([]Descriptor, error) {
	byID := make(map[int]*canconf.HardwareObject, len(objs))
	for i := range objs {
		byID[objs[i].ID] = &objs[i]
	}
	descs := make([]Descriptor, 0, len(a.Slots))
	for _, s := range a.Slots {
		o := byID[s.Object]
		if o == nil {
			return nil, &diag.OrderingViolation{
				Where:       fmt.Sprintf("controller %d", a.Controller),
				Description: fmt.Sprintf("slot %d refers to unknown hardware object %d", s.Index, s.Object),
			}
		}
		descs = append(descs, Descriptor{
			Object:     o.ID,
			Instance:   s.Instance,
			Type:       o.Type,
			Controller: o.Controller,
			IDType:     o.IDType,
			MessageID:  o.MessageID,
			Priority:   o.Priority,
			Address:    s.Address,
			Payload:    s.Payload,
			Index:      s.Index,
			Fifo:       s.Fifo,
			Trigger:    o.TriggerTransmit,
			Padding:    o.FDPadding,
			Mask:       o.FilterMask,
			HasMask:    o.HasFilterMask,
			MaskIndex:  -1,
		})
	}
	return descs, nil
}

func compare(x, y *Descriptor) int {
	xt, yt := x.Type != canconf.Receive, y.Type != canconf.Receive
	switch {
	case xt != yt:
		if yt {
			return -1
		}
		return 1
	case x.Controller != y.Controller:
		return x.Controller - y.Controller
	case x.MessageID < y.MessageID:
		return -1
	case x.MessageID > y.MessageID:
		return 1
	}
	return 0
}

// Order sorts the descriptors into the dispatch order: all receive mailboxes
// before all transmit ones, grouped by controller, then by message ID. The
// sort is stable so the instances of a multiplexed object stay together in
// allocation order.
func Order(descs []Descriptor) {
	slices.SortStableFunc(descs, func(x, y Descriptor) int {
		return compare(&x, &y)
	})
}

// CheckOrder returns an *diag.OrderingViolation for the first pair of
// descriptors that is not in the dispatch order.
func CheckOrder(descs []Descriptor) error {
	for i := 1; i < len(descs); i++ {
		p, d := &descs[i-1], &descs[i]
		if compare(p, d) > 0 {
			return &diag.OrderingViolation{
				Where: "mailbox descriptors",
				Description: fmt.Sprintf(
					"%d: %v/ctrl %d/id %#x after %v/ctrl %d/id %#x",
					i, d.Type, d.Controller, d.MessageID,
					p.Type, p.Controller, p.MessageID,
				),
			}
		}
	}
	return nil
}

// FilterMasks returns the table of individual receive filter masks and sets
// the MaskIndex of every receive descriptor that declares a mask. Equal masks
// share the entry of their first occurrence. Table entries are encoded in the
// layout of the mailbox ID word.
func FilterMasks(descs []Descriptor) []uint32 {
	var masks []uint32
	for i := range descs {
		d := &descs[i]
		if d.Type != canconf.Receive || !d.HasMask {
			continue
		}
		m := EncodeID(d.IDType, d.Mask)
		k := slices.Index(masks, m)
		if k < 0 {
			k = len(masks)
			masks = append(masks, m)
		}
		d.MaskIndex = k
	}
	return masks
}

// EncodeID returns id in the layout of the mailbox ID word: a standard ID
// occupies bits 28:18, an extended or mixed one bits 28:0.
func EncodeID(t canconf.IDType, id uint32) uint32 {
	if t == canconf.Standard {
		return (id & 0x7ff) << 18
	}
	return id & 0x1fffffff
}
