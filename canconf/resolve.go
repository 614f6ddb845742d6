// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canconf

import (
	"errors"
	"fmt"
	"strings"

	"go.einride.tech/can"
	"golang.org/x/exp/slices"

	"github.com/embeddedgo/cantools/diag"
	"github.com/embeddedgo/cantools/ecuc"
)

var (
	validMailboxes = []int{16, 32, 64, 96}
	validPayloads  = []int{8, 16, 32, 64}
)

type resolver struct {
	feat  FeatureSet
	names map[string]int
	errs  []error
}

func (r *resolver) fail(err error) {
	r.errs = append(r.errs, err)
}

func (r *resolver) invalid(where, param, format string, args ...any) {
	r.fail(&diag.Invalid{
		Where:       where,
		Parameter:   param,
		Description: fmt.Sprintf(format, args...),
	})
}

func (r *resolver) ordering(where, format string, args ...any) {
	r.fail(&diag.OrderingViolation{
		Where:       where,
		Description: fmt.Sprintf(format, args...),
	})
}

func (r *resolver) check(err error) {
	if err != nil {
		r.fail(err)
	}
}

// Resolve validates the document and converts it to the resolved form. All
// problems found are reported together as one joined error.
func Resolve(doc *ecuc.Document) (*Config, error) {
	r := &resolver{
		feat:  FeatureSet(doc.Features),
		names: make(map[string]int),
	}
	cfg := &Config{Features: r.feat}
	cfg.Controllers = r.controllers(doc.Controllers)
	if len(r.errs) == 0 {
		cfg.HardwareObjects = r.objects(doc.HardwareObjects, cfg.Controllers)
	}
	if len(r.errs) != 0 {
		return nil, errors.Join(r.errs...)
	}
	return cfg, nil
}

func (r *resolver) controllers(dcs []*ecuc.Controller) []Controller {
	n := len(dcs)
	if n == 0 {
		r.invalid("", "controllers", "no controller configured")
		return nil
	}
	ctrls := make([]Controller, n)
	seen := make([]bool, n)
	for _, dc := range dcs {
		id := int(dc.ID)
		where := dc.Name
		if where == "" {
			where = fmt.Sprintf("controller %d", id)
		}
		if id >= n {
			r.ordering(where, "controller id %d outside 0..%d", id, n-1)
			continue
		}
		if seen[id] {
			r.ordering(where, "duplicate controller id %d", id)
			continue
		}
		seen[id] = true
		if dc.Name == "" {
			r.invalid(where, "name", "missing controller name")
		} else if prev, ok := r.names[dc.Name]; ok {
			r.ordering(where, "controller name already used by controller %d", prev)
		} else {
			r.names[dc.Name] = id
		}
		ctrls[id] = r.controller(where, id, dc)
	}
	return ctrls
}

func (r *resolver) controller(where string, id int, dc *ecuc.Controller) Controller {
	c := Controller{
		ID:        id,
		Name:      dc.Name,
		Activated: dc.Activated == nil || *dc.Activated,
		ClockHz:   uint64(dc.ClockHz),
		FD:        dc.FD,
		Options: Options{
			LoopBack:       dc.LoopBack,
			ListenOnly:     dc.ListenOnly,
			BusOffRecovery: dc.BusOffRecovery,
			LocalPriority:  dc.LocalPriority,
		},
		MaxMailboxes: 32,
	}
	if dc.MaxMailboxes != nil {
		c.MaxMailboxes = int(*dc.MaxMailboxes)
		if !slices.Contains(validMailboxes, c.MaxMailboxes) {
			r.invalid(
				where, "maxMailboxes", "%d not one of %v",
				c.MaxMailboxes, validMailboxes,
			)
		}
	}
	if c.ClockHz == 0 {
		r.invalid(where, "clockHz", "missing clock frequency")
	}
	if dc.AltClockHz != nil {
		c.AltClockHz = uint64(*dc.AltClockHz)
	}
	switch strings.ToLower(dc.ClockSource) {
	case "", "oscillator":
	case "peripheral":
		c.PeripheralClock = true
	default:
		r.invalid(where, "clockSource", "unknown clock source %q", dc.ClockSource)
	}
	if c.FD && !r.feat.FD {
		r.invalid(where, "fd", "CAN FD used but disabled in features")
	}
	c.RamBlock = r.ramBlock(where, &c, dc.RamBlock)
	c.RxFifo = r.rxFifo(where, &c, dc.RxFifo)
	c.Baudrates, c.DefaultBaudrate = r.baudrates(where, &c, dc)
	c.Notifications = r.notifications(where, &c, &dc.Notifications)
	return c
}

func (r *resolver) ramBlock(where string, c *Controller, drb *ecuc.RamBlock) RamBlock {
	rb := RamBlock{Payload: ClassicPayload}
	for i := range rb.Regions {
		rb.Regions[i] = ClassicPayload
	}
	if drb == nil {
		return rb
	}
	switch strings.ToLower(drb.Mode) {
	case "", "shared":
	case "perregion":
		rb.Mode = PerRegionPayload
	default:
		r.invalid(where, "ramBlock.mode", "unknown mode %q", drb.Mode)
	}
	checkPayload := func(param string, p int) {
		if !slices.Contains(validPayloads, p) {
			r.invalid(where, param, "payload %d not one of %v", p, validPayloads)
		} else if p > ClassicPayload && !c.FD {
			r.invalid(where, param, "payload %d requires CAN FD", p)
		}
	}
	if drb.Payload != nil {
		rb.Payload = int(*drb.Payload)
		checkPayload("ramBlock.payload", rb.Payload)
	}
	if len(drb.Regions) > c.Regions() {
		r.invalid(
			where, "ramBlock.regions", "%d regions given, controller has %d",
			len(drb.Regions), c.Regions(),
		)
		return rb
	}
	for i, p := range drb.Regions {
		rb.Regions[i] = int(p)
		checkPayload(fmt.Sprintf("ramBlock.regions[%d]", i), rb.Regions[i])
	}
	return rb
}

func parseIDType(s string) (IDType, bool) {
	switch strings.ToLower(s) {
	case "", "standard":
		return Standard, true
	case "extended":
		return Extended, true
	case "mixed":
		return Mixed, true
	}
	return 0, false
}

func (r *resolver) rxFifo(where string, c *Controller, df *ecuc.RxFifo) *RxFifo {
	if df == nil || !df.Enabled {
		return nil
	}
	if !r.feat.RxFifo {
		r.invalid(where, "rxFifo", "RX FIFO used but disabled in features")
	}
	if c.FD {
		r.invalid(where, "rxFifo", "legacy RX FIFO cannot be used together with CAN FD")
	}
	f := &RxFifo{FiltersNumber: int(df.FiltersNumber)}
	if n := f.FiltersNumber; n < 8 || n > 128 || n%8 != 0 {
		r.invalid(where, "rxFifo.filtersNumber", "%d not one of 8, 16, ..., 128", n)
	}
	switch strings.ToUpper(df.AcceptanceMode) {
	case "", "A":
		f.Mode = FormatA
	case "B":
		f.Mode = FormatB
	case "C":
		f.Mode = FormatC
	case "D":
		f.Mode = FormatD
	default:
		r.invalid(where, "rxFifo.acceptanceMode", "unknown mode %q", df.AcceptanceMode)
	}
	idt, ok := parseIDType(df.IDType)
	if !ok || idt == Mixed {
		r.invalid(where, "rxFifo.idType", "must be standard or extended, got %q", df.IDType)
	}
	f.IDType = idt
	for i, flt := range df.Filters {
		if flt.Value > 0xffffffff || flt.Mask > 0xffffffff {
			r.invalid(where, fmt.Sprintf("rxFifo.filters[%d]", i), "value or mask exceeds 32 bits")
		}
		f.Filters = append(f.Filters, FilterEntry{uint32(flt.Value), uint32(flt.Mask)})
	}
	return f
}

func (r *resolver) baudrates(where string, c *Controller, dc *ecuc.Controller) ([]BaudrateConfig, int) {
	if len(dc.Baudrates) == 0 {
		r.invalid(where, "baudrates", "no baud rate configured")
		return nil, 0
	}
	brs := make([]BaudrateConfig, 0, len(dc.Baudrates))
	ids := make(map[uint16]int)
	for i, db := range dc.Baudrates {
		bwhere := fmt.Sprintf("%s/baudrate %d", where, db.ID)
		if db.ID > 0xffff {
			r.invalid(bwhere, "id", "baud rate id exceeds 16 bits")
		}
		id := uint16(db.ID)
		if _, ok := ids[id]; ok {
			r.ordering(bwhere, "duplicate baud rate id %d", id)
		}
		ids[id] = i
		brs = append(brs, r.baudrate(bwhere, c, db))
	}
	def := 0
	if dc.DefaultBaudrate != nil {
		i, ok := ids[uint16(*dc.DefaultBaudrate)]
		if !ok || *dc.DefaultBaudrate > 0xffff {
			r.ordering(where, "default baud rate %d does not exist", *dc.DefaultBaudrate)
		}
		def = i
	}
	return brs, def
}

func (r *resolver) baudrate(where string, c *Controller, db *ecuc.Baudrate) BaudrateConfig {
	b := BaudrateConfig{
		ID:        uint16(db.ID),
		BaudKbps:  uint32(db.BaudKbps),
		Prescaler: int(db.Prescaler),
		PropSeg:   int(db.PropSeg),
		Seg1:      int(db.Seg1),
		Seg2:      int(db.Seg2),
		SJW:       int(db.SyncJumpWidth),
	}
	if b.BaudKbps == 0 {
		r.invalid(where, "baudKbps", "missing baud rate")
	}
	if db.Auto != nil {
		b.Auto = &AutoTiming{
			BusLengthM:         int(db.Auto.BusLengthM),
			TransceiverDelayNs: int(db.Auto.TransceiverDelayNs),
		}
	}
	if fd := db.FD; fd != nil {
		if !c.FD {
			r.invalid(where, "fd", "FD sub-profile on a classic controller")
		}
		b.FD = &FDTiming{
			BaudKbps:  uint32(fd.BaudKbps),
			Prescaler: int(fd.Prescaler),
			PropSeg:   int(fd.PropSeg),
			Seg1:      int(fd.Seg1),
			Seg2:      int(fd.Seg2),
			SJW:       int(fd.SyncJumpWidth),
			BRS:       fd.BitRateSwitch,
		}
		if fd.TdcOffset != nil {
			b.FD.TDC = true
			b.FD.TDCOffset = int(*fd.TdcOffset)
		}
	}
	if cbt := db.CBT; cbt != nil {
		if !r.feat.CBT {
			r.invalid(where, "cbt", "CBT used but disabled in features")
		}
		b.CBT = &CBTTiming{
			Prescaler: int(cbt.Prescaler),
			PropSeg:   int(cbt.PropSeg),
			Seg1:      int(cbt.Seg1),
			Seg2:      int(cbt.Seg2),
			SJW:       int(cbt.SyncJumpWidth),
		}
	}
	if alt := db.Alternate; alt != nil {
		if !r.feat.DualClock {
			r.invalid(where, "alternate", "dual clock used but disabled in features")
		}
		if c.AltClockHz == 0 {
			r.invalid(where, "alternate", "controller has no alternate clock")
		}
		b.Alternate = &Alternate{Prescaler: int(alt.Prescaler)}
		if alt.FDPrescaler != nil {
			b.Alternate.FDPrescaler = int(*alt.FDPrescaler)
		}
		if alt.CBTPrescaler != nil {
			b.Alternate.CBTPrescaler = int(*alt.CBTPrescaler)
		}
	}
	return b
}

func (r *resolver) notifications(where string, c *Controller, dn *ecuc.Notifications) Notifications {
	n := Notifications{
		BusOff:         Notification(dn.BusOff),
		Error:          Notification(dn.Error),
		RxFifoOverflow: Notification(dn.RxFifoOverflow),
		RxFifoWarning:  Notification(dn.RxFifoWarning),
	}
	check := func(name string, nt Notification) {
		switch {
		case nt.Enabled && nt.Callback == "":
			r.invalid(where, name, "notification enabled without a callback")
		case !nt.Enabled && nt.Callback != "":
			r.invalid(where, name, "callback %s set but notification disabled", nt.Callback)
		}
	}
	check("notifications.busOff", n.BusOff)
	check("notifications.error", n.Error)
	check("notifications.rxFifoOverflow", n.RxFifoOverflow)
	check("notifications.rxFifoWarning", n.RxFifoWarning)
	if c.RxFifo == nil && (n.RxFifoOverflow.Enabled || n.RxFifoWarning.Enabled) {
		r.invalid(where, "notifications", "RX FIFO notification without RX FIFO")
	}
	return n
}

func validID(id uint32, ext bool) error {
	f := can.Frame{ID: id, IsExtended: ext}
	return f.Validate()
}

func (r *resolver) objects(dos []*ecuc.HardwareObject, ctrls []Controller) []HardwareObject {
	objs := make([]HardwareObject, 0, len(dos))
	ids := make(map[int]bool)
	fifoUsers := make(map[int]string)
	for _, do := range dos {
		o := HardwareObject{
			ID:              int(do.ID),
			Name:            do.Name,
			MessageID:       uint32(do.MessageID),
			Multiplex:       1,
			TriggerTransmit: do.TriggerTransmit,
			RxFifo:          do.RxFifo,
		}
		where := o.String()
		if ids[o.ID] {
			r.ordering(where, "duplicate hardware object id %d", o.ID)
		}
		ids[o.ID] = true
		switch strings.ToLower(do.Type) {
		case "receive", "hrh":
			o.Type = Receive
		case "transmit", "hth":
			o.Type = Transmit
		default:
			r.invalid(where, "type", "unknown object type %q", do.Type)
		}
		ci, ok := r.names[do.Controller]
		if !ok {
			r.ordering(where, "controller %q does not exist", do.Controller)
			continue
		}
		o.Controller = ci
		c := &ctrls[ci]
		if !c.Activated {
			r.ordering(where, "controller %s is not activated", c.Name)
		}
		idt, ok := parseIDType(do.IDType)
		if !ok {
			r.invalid(where, "idType", "unknown ID type %q", do.IDType)
		}
		o.IDType = idt
		if do.MessageID > 0xffffffff {
			r.invalid(where, "messageId", "exceeds 32 bits")
		} else if err := validID(o.MessageID, idt != Standard); err != nil {
			r.invalid(where, "messageId", "%v", err)
		}
		if do.FilterMask != nil {
			o.FilterMask = uint32(*do.FilterMask)
			o.HasFilterMask = true
			if o.Type != Receive {
				r.invalid(where, "filterMask", "filter mask on a transmit object")
			} else if err := validID(o.FilterMask, idt != Standard); err != nil {
				r.invalid(where, "filterMask", "%v", err)
			}
		}
		r.check(diag.Range(where, "priority", do.Priority, 0, 255))
		o.Priority = uint8(do.Priority)
		if do.Multiplex != nil {
			o.Multiplex = int(*do.Multiplex)
			r.check(diag.Range(where, "multiplex", o.Multiplex, 1, int64(c.MaxMailboxes)))
			if o.Multiplex > 1 {
				if o.Type != Transmit {
					r.invalid(where, "multiplex", "only transmit objects can be multiplexed")
				}
				if !r.feat.MultiplexedTransmit {
					r.invalid(where, "multiplex", "multiplexed transmission disabled in features")
				}
			}
		}
		if o.TriggerTransmit {
			if o.Type != Transmit {
				r.invalid(where, "triggerTransmit", "only transmit objects can use trigger transmit")
			}
			if !r.feat.TriggerTransmit {
				r.invalid(where, "triggerTransmit", "trigger transmit disabled in features")
			}
		}
		if do.FDPadding != nil {
			r.check(diag.Range(where, "fdPadding", *do.FDPadding, 0, 255))
			o.FDPadding = uint8(*do.FDPadding)
		}
		if o.RxFifo {
			switch {
			case o.Type != Receive:
				r.invalid(where, "rxFifo", "only receive objects can use the RX FIFO")
			case c.RxFifo == nil:
				r.invalid(where, "rxFifo", "controller %s has no RX FIFO", c.Name)
			case fifoUsers[ci] != "":
				r.ordering(where, "RX FIFO of %s already used by %s", c.Name, fifoUsers[ci])
			}
			fifoUsers[ci] = where
		}
		objs = append(objs, o)
	}
	return objs
}
