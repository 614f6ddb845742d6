// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package canconf provides the resolved CAN driver configuration: flat arrays
// of controllers and hardware objects in which every cross reference is an
// index. The mailbox allocator and the bit-timing resolver work only on this
// form.
package canconf

import "fmt"

type ObjectType uint8

const (
	Receive ObjectType = iota
	Transmit
)

func (t ObjectType) String() string {
	if t == Receive {
		return "RECEIVE"
	}
	return "TRANSMIT"
}

type IDType uint8

const (
	Standard IDType = iota
	Extended
	Mixed
)

func (t IDType) String() string {
	switch t {
	case Standard:
		return "STANDARD"
	case Extended:
		return "EXTENDED"
	}
	return "MIXED"
}

// AcceptanceMode selects the RX FIFO ID filter table element format.
type AcceptanceMode uint8

const (
	FormatA AcceptanceMode = iota // one full ID per element
	FormatB                       // two partial IDs per element
	FormatC                       // four 8-bit ID slices per element
	FormatD                       // reject all
)

func (m AcceptanceMode) String() string {
	return string('A' + rune(m))
}

type RamBlockMode uint8

const (
	SharedPayload RamBlockMode = iota
	PerRegionPayload
)

// Mailbox memory layout constants.
const (
	MailboxBase    = 0x80 // offset of MB0 in the controller register block
	RegionSize     = 512
	HeaderLen      = 8 // control/status + ID words
	MaxRegions     = 3
	ClassicPayload = 8
	ClassicSlot    = HeaderLen + ClassicPayload
)

// FeatureSet lists the optional driver features enabled for the whole
// configuration.
type FeatureSet struct {
	FD                  bool
	CBT                 bool
	RxFifo              bool
	DualClock           bool
	TriggerTransmit     bool
	MultiplexedTransmit bool
}

type Options struct {
	LoopBack       bool
	ListenOnly     bool
	BusOffRecovery bool
	LocalPriority  bool
}

type RamBlock struct {
	Mode    RamBlockMode
	Payload int             // SharedPayload
	Regions [MaxRegions]int // PerRegionPayload
}

type FilterEntry struct {
	Value uint32
	Mask  uint32
}

type RxFifo struct {
	FiltersNumber int
	Mode          AcceptanceMode
	IDType        IDType // Standard or Extended, used by formats A and B
	Filters       []FilterEntry
}

// MailboxCount returns the number of 16-byte mailboxes occupied by the FIFO
// engine and its ID filter table.
func (f *RxFifo) MailboxCount() int {
	return f.FiltersNumber/4 + 6
}

type Notification struct {
	Enabled  bool
	Callback string
}

type Notifications struct {
	BusOff         Notification
	Error          Notification
	RxFifoOverflow Notification
	RxFifoWarning  Notification
}

type AutoTiming struct {
	BusLengthM         int
	TransceiverDelayNs int
}

type FDTiming struct {
	BaudKbps  uint32
	Prescaler int
	PropSeg   int
	Seg1      int
	Seg2      int
	SJW       int
	BRS       bool
	TDC       bool
	TDCOffset int
}

type CBTTiming struct {
	Prescaler int
	PropSeg   int
	Seg1      int
	Seg2      int
	SJW       int
}

// Alternate holds the prescalers used with the alternate clock. Zero means
// the same value as for the main clock.
type Alternate struct {
	Prescaler    int
	FDPrescaler  int
	CBTPrescaler int
}

type BaudrateConfig struct {
	ID        uint16
	BaudKbps  uint32
	Prescaler int
	PropSeg   int
	Seg1      int
	Seg2      int
	SJW       int
	Auto      *AutoTiming
	FD        *FDTiming
	CBT       *CBTTiming
	Alternate *Alternate
}

type Controller struct {
	ID              int
	Name            string
	Activated       bool
	MaxMailboxes    int
	ClockHz         uint64
	AltClockHz      uint64
	PeripheralClock bool // CLKSRC
	FD              bool
	Options         Options
	RamBlock        RamBlock
	RxFifo          *RxFifo
	Baudrates       []BaudrateConfig
	DefaultBaudrate int // index in Baudrates
	Notifications   Notifications
}

// Payload returns the mailbox payload length used in the given RAM region.
func (c *Controller) Payload(region int) int {
	switch {
	case !c.FD:
		return ClassicPayload
	case c.RamBlock.Mode == PerRegionPayload:
		return c.RamBlock.Regions[region]
	}
	return c.RamBlock.Payload
}

// MemoryLimit returns the end offset of the mailbox memory.
func (c *Controller) MemoryLimit() int {
	return MailboxBase + c.MaxMailboxes*ClassicSlot
}

// Regions returns the number of RAM regions, the last one possibly partial.
func (c *Controller) Regions() int {
	return (c.MaxMailboxes*ClassicSlot + RegionSize - 1) / RegionSize
}

type HardwareObject struct {
	ID              int
	Name            string
	Type            ObjectType
	Controller      int // index in Config.Controllers
	IDType          IDType
	MessageID       uint32
	FilterMask      uint32
	HasFilterMask   bool
	Priority        uint8
	Multiplex       int
	TriggerTransmit bool
	FDPadding       uint8
	RxFifo          bool // served by the controller RX FIFO
}

// Slots returns the number of mailboxes the object occupies.
func (o *HardwareObject) Slots() int {
	switch {
	case o.RxFifo:
		return 0
	case o.Type == Transmit && o.Multiplex > 1:
		return o.Multiplex
	}
	return 1
}

func (o *HardwareObject) String() string {
	if o.Name != "" {
		return fmt.Sprintf("HOH%d(%s)", o.ID, o.Name)
	}
	return fmt.Sprintf("HOH%d", o.ID)
}

// Config is a resolved configuration. Controllers[i].ID == i.
type Config struct {
	Features        FeatureSet
	Controllers     []Controller
	HardwareObjects []HardwareObject
}

// ObjectsOf returns the hardware objects that belong to the controller with
// the given index.
func (c *Config) ObjectsOf(ctrl int) []HardwareObject {
	var objs []HardwareObject
	for _, o := range c.HardwareObjects {
		if o.Controller == ctrl {
			objs = append(objs, o)
		}
	}
	return objs
}
