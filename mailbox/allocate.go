// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mailbox assigns the FlexCAN message buffer memory to hardware
// objects and builds the tables derived from the assignment: the canonical
// mailbox descriptor order, the individual filter masks and the RX FIFO ID
// filter table.
package mailbox

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
)

// Slot is one physical message buffer assigned to a hardware object.
type Slot struct {
	Object   int // hardware object ID
	Instance int // multiplexed transmit instance, 0 otherwise
	Region   int
	Address  int // offset in the controller register block
	Payload  int
	Index    int // hardware mailbox index
	Fifo     bool
}

// Allocation is the mailbox memory map of one controller.
type Allocation struct {
	Controller int
	Slots      []Slot
	Reserved   int // mailboxes occupied by the RX FIFO engine and ID table
	FirstUser  int // index of the first ordinary mailbox
	MaxMBCount int
	End        int // cursor after the last slot
}

type state uint8

const (
	atRegionStart state = iota
	withinRegion
	regionExhausted
	done
)

var stateNames = [...]string{
	atRegionStart:   "atRegionStart",
	withinRegion:    "withinRegion",
	regionExhausted: "regionExhausted",
	done:            "done",
}

func (s state) String() string { return stateNames[s] }

type allocator struct {
	c       *canconf.Controller
	cursor  int
	state   state
	regions int
	cum     [canconf.MaxRegions + 1]int // index of the first slot in region
	slots   int                         // requested slots, for diagnostics
}

// fitSlot returns the address of a slot of size needed that starts at cursor
// or at the next region boundary if the rest of the current region is too
// small.
func fitSlot(cursor, needed int) (addr int, bumped bool) {
	rel := cursor - canconf.MailboxBase
	remaining := canconf.RegionSize - rel%canconf.RegionSize
	if remaining < needed {
		return cursor + remaining, true
	}
	return cursor, false
}

func regionOf(addr int) int {
	return (addr - canconf.MailboxBase) / canconf.RegionSize
}

func (a *allocator) exceeded(detail string, args ...any) error {
	a.state = regionExhausted
	return &diag.CapacityExceeded{
		Controller: a.c.Name,
		Requested:  a.slots,
		Available:  a.c.MaxMailboxes,
		Detail:     fmt.Sprintf(detail, args...),
	}
}

// next assigns the next slot.
func (a *allocator) next() (Slot, error) {
	for {
		region := regionOf(a.cursor)
		if region >= a.regions {
			return Slot{}, a.exceeded("no free region at %#x", a.cursor)
		}
		payload := a.c.Payload(region)
		needed := canconf.HeaderLen + payload
		addr, bumped := fitSlot(a.cursor, needed)
		if bumped {
			log.WithFields(log.Fields{"ctrl": a.c.Name, "state": a.state}).Debugf(
				"slot of %d bytes does not fit at %#x, moved to %#x",
				needed, a.cursor, addr,
			)
			a.cursor = addr
			a.state = atRegionStart
			continue
		}
		if addr+needed > a.c.MemoryLimit() {
			return Slot{}, a.exceeded(
				"%d byte slot at %#x beyond memory end %#x",
				needed, addr, a.c.MemoryLimit(),
			)
		}
		regionStart := canconf.MailboxBase + region*canconf.RegionSize
		index := a.cum[region] + (addr-regionStart)/needed
		if index >= a.c.MaxMailboxes {
			return Slot{}, a.exceeded("mailbox index %d", index)
		}
		a.cursor = addr + needed
		a.state = withinRegion
		return Slot{
			Region:  region,
			Address: addr,
			Payload: payload,
			Index:   index,
		}, nil
	}
}

// Allocate assigns message buffers to the hardware objects objs of the
// controller c. Objects are processed in ID order. A multiplexed transmit
// object gets one slot per instance. A receive object served by the RX FIFO
// gets no slot of its own: it reports index 0 at the FIFO base address.
//
// If the controller has an RX FIFO the mailboxes it occupies are reserved
// before the first ordinary slot.
//
// Allocate does not modify its arguments and always returns the same
// assignment for the same input.
func Allocate(c *canconf.Controller, objs []canconf.HardwareObject) (*Allocation, error) {
	a := &allocator{
		c:       c,
		cursor:  canconf.MailboxBase,
		regions: c.Regions(),
	}
	for r := 0; r < a.regions && r < canconf.MaxRegions; r++ {
		a.cum[r+1] = a.cum[r] + canconf.RegionSize/(canconf.HeaderLen+c.Payload(r))
	}
	sorted := slices.Clone(objs)
	slices.SortStableFunc(sorted, func(x, y canconf.HardwareObject) int {
		return x.ID - y.ID
	})
	res := &Allocation{Controller: c.ID}
	if c.RxFifo != nil {
		res.Reserved = c.RxFifo.MailboxCount()
	}
	a.slots = res.Reserved
	for i := range sorted {
		a.slots += sorted[i].Slots()
	}

	if n := res.Reserved; n != 0 {
		size := n * canconf.ClassicSlot
		if n > c.MaxMailboxes || canconf.MailboxBase+size > c.MemoryLimit() {
			return nil, a.exceeded("RX FIFO needs %d mailboxes", n)
		}
		a.cursor += size
		a.state = withinRegion
	}
	res.FirstUser = res.Reserved
	for i := range sorted {
		o := &sorted[i]
		if o.RxFifo {
			res.Slots = append(res.Slots, Slot{
				Object:  o.ID,
				Address: canconf.MailboxBase,
				Payload: canconf.ClassicPayload,
				Fifo:    true,
			})
			continue
		}
		for k := 0; k < o.Slots(); k++ {
			s, err := a.next()
			if err != nil {
				return nil, fmt.Errorf("%v: %w", o, err)
			}
			s.Object = o.ID
			s.Instance = k
			res.Slots = append(res.Slots, s)
		}
	}
	a.state = done
	res.End = a.cursor
	res.MaxMBCount = MaxMBCount(res.Reserved, res.Slots)
	log.Debugf(
		"%s: %d slots, first user mailbox %d, max MB count %d, end %#x",
		c.Name, len(res.Slots), res.FirstUser, res.MaxMBCount, res.End,
	)
	return res, nil
}

// MaxMBCount returns the number of mailboxes the controller must enable: one
// past the highest index used by the reserved FIFO area or by slots.
func MaxMBCount(reserved int, slots []Slot) int {
	n := reserved
	for _, s := range slots {
		if !s.Fifo && s.Index+1 > n {
			n = s.Index + 1
		}
	}
	return n
}

// Lookup returns the slots assigned to the hardware object with the given ID.
func (a *Allocation) Lookup(object int) []Slot {
	var slots []Slot
	for _, s := range a.Slots {
		if s.Object == object {
			slots = append(slots, s)
		}
	}
	return slots
}
