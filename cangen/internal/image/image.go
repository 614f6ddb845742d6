// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image serializes the CAN configuration table into a little-endian
// binary image that can be placed in the target Flash at a fixed address.
//
// The image starts with a header that holds the table sizes and the offsets
// of the controller, mailbox, filter mask and handle tables. All offsets are
// relative to the image start.
package image

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/embeddedgo/cantools/cfgtab"
)

const (
	Magic   = 0x544e4143 // "CANT"
	Version = 1
)

type header struct {
	Magic       uint32
	Version     uint16
	Controllers uint8
	MaxMBCount  uint8
	Mailboxes   uint16
	FilterMasks uint16
	Handles     uint16
	MaxProfiles uint8
	MaxFilters  uint8
	CtrlOff     uint32
	MailboxOff  uint32
	MaskOff     uint32
	HandleOff   uint32
}

// Controller flags
const (
	ctrlActivated = 1 << iota
	ctrlFD
	ctrlRxFifo
)

type ctrlRecord struct {
	ID          uint8
	Flags       uint8
	MaxMBCount  uint8
	FirstUserMB uint8
	HRHFirst    uint16
	HRHCount    uint16
	HTHFirst    uint16
	HTHCount    uint16
	MCR         uint32
	CTRL1       uint32
	FDCTRL      uint32
	Profiles    uint8
	Default     uint8
	FifoLen     uint8
	FifoMode    uint8
	ProfileOff  uint32
	FifoOff     uint32
}

// Profile flags
const (
	profFD = 1 << iota
	profBRS
	profCBT
	profAlt
)

type profileRecord struct {
	ID         uint16
	Flags      uint16
	BaudKbps   uint16
	FDBaudKbps uint16
	CTRL1      uint32
	FDCBT      uint32
	CBT        uint32
	AltCTRL1   uint32
	AltFDCBT   uint32
	AltCBT     uint32
}

// Mailbox flags
const (
	mbFifo = 1 << iota
	mbTrigger
)

type mbRecord struct {
	MessageID  uint32
	Object     uint16
	Address    uint16
	MaskIndex  int16
	Index      uint8
	Controller uint8
	Type       uint8
	IDType     uint8
	Priority   uint8
	Payload    uint8
	Flags      uint8
	Padding    uint8
	Instance   uint8
	_          uint8
}

type handleRecord struct {
	Object uint16
	First  uint16
	Count  uint16
	_      uint16
}

type encoder struct {
	base uint64
	off  uint32
	ss   Sections
}

func (e *encoder) section(name string, records ...any) (off uint32, err error) {
	var buf bytes.Buffer
	for _, r := range records {
		if err = binary.Write(&buf, binary.LittleEndian, r); err != nil {
			return
		}
	}
	off = e.off
	if buf.Len() == 0 {
		return
	}
	e.ss = append(e.ss, &Section{
		Name:  name,
		Paddr: e.base + uint64(off),
		Data:  buf.Bytes(),
	})
	e.off += uint32(buf.Len())
	return
}

func u8(what string, v int) (uint8, error) {
	if v < 0 || v > 0xff {
		return 0, fmt.Errorf("image: %s %d does not fit in 8 bits", what, v)
	}
	return uint8(v), nil
}

func u16(what string, v int) (uint16, error) {
	if v < 0 || v > 0xffff {
		return 0, fmt.Errorf("image: %s %d does not fit in 16 bits", what, v)
	}
	return uint16(v), nil
}

func profile(p *cfgtab.Controller, k int) (r profileRecord, err error) {
	pr := &p.Profiles[k]
	r.ID = pr.ID
	if r.BaudKbps, err = u16("baud rate", int(pr.BaudKbps)); err != nil {
		return
	}
	if r.FDBaudKbps, err = u16("FD baud rate", int(pr.FDBaudKbps)); err != nil {
		return
	}
	r.CTRL1 = pr.Main.Nominal.Registers.CTRL1()
	if fd := pr.Main.FD; fd != nil {
		r.Flags |= profFD
		r.FDCBT = fd.Registers.FDCBT()
	}
	if pr.BRS {
		r.Flags |= profBRS
	}
	if cbt := pr.Main.CBT; cbt != nil {
		r.Flags |= profCBT
		r.CBT = cbt.Registers.CBT()
	}
	if alt := pr.Alt; alt != nil {
		r.Flags |= profAlt
		r.AltCTRL1 = alt.Nominal.Registers.CTRL1()
		if alt.FD != nil {
			r.AltFDCBT = alt.FD.Registers.FDCBT()
		}
		if alt.CBT != nil {
			r.AltCBT = alt.CBT.Registers.CBT()
		}
	}
	return
}

func mailbox(t *cfgtab.Table, i int) (r mbRecord, err error) {
	m := &t.Mailboxes[i]
	r.MessageID = m.MessageID
	if r.Object, err = u16("hardware object", m.Object); err != nil {
		return
	}
	if r.Address, err = u16("mailbox address", m.Address); err != nil {
		return
	}
	r.MaskIndex = int16(m.MaskIndex)
	r.Index = uint8(m.Index)
	r.Controller = uint8(m.Controller)
	r.Type = uint8(m.Type)
	r.IDType = uint8(m.IDType)
	r.Priority = m.Priority
	r.Payload = uint8(m.Payload)
	r.Padding = m.Padding
	if r.Instance, err = u8("multiplex instance", m.Instance); err != nil {
		return
	}
	if m.Fifo {
		r.Flags |= mbFifo
	}
	if m.Trigger {
		r.Flags |= mbTrigger
	}
	return
}

// Encode returns the binary image of t as a list of sections located at base.
func Encode(t *cfgtab.Table, base uint64) (Sections, error) {
	k := &t.Constants
	var err error
	check8 := func(what string, v int) uint8 {
		r, e := u8(what, v)
		if err == nil {
			err = e
		}
		return r
	}
	check16 := func(what string, v int) uint16 {
		r, e := u16(what, v)
		if err == nil {
			err = e
		}
		return r
	}
	h := header{
		Magic:       Magic,
		Version:     Version,
		Controllers: check8("controller count", k.ControllerCount),
		MaxMBCount:  check8("mailbox count", k.MaxMBCount),
		Mailboxes:   check16("descriptor count", k.DescriptorCount),
		FilterMasks: check16("filter mask count", k.FilterMaskCount),
		Handles:     check16("handle count", len(t.Handles)),
		MaxProfiles: check8("baud rate count", k.MaxBaudrateCount),
		MaxFilters:  check8("filter count", k.MaxFilterCount),
	}
	if err != nil {
		return nil, err
	}

	e := &encoder{base: base, off: uint32(binary.Size(header{}))}
	h.CtrlOff = e.off
	e.off += uint32(len(t.Controllers) * binary.Size(ctrlRecord{}))
	ctrls := make([]any, len(t.Controllers))
	for i := range t.Controllers {
		c := &t.Controllers[i]
		r := ctrlRecord{
			ID:          uint8(c.ID),
			MaxMBCount:  uint8(c.MaxMBCount),
			FirstUserMB: uint8(c.FirstUserMailbox),
			HRHFirst:    uint16(c.HRH.First),
			HRHCount:    uint16(c.HRH.Count),
			HTHFirst:    uint16(c.HTH.First),
			HTHCount:    uint16(c.HTH.Count),
			MCR:         c.MCR,
			CTRL1:       c.CTRL1,
			FDCTRL:      c.FDCTRL,
			Default:     uint8(c.DefaultProfile),
			FifoMode:    uint8(c.FifoMode),
		}
		if c.Activated {
			r.Flags |= ctrlActivated
		}
		if c.FD {
			r.Flags |= ctrlFD
		}
		if r.Profiles, err = u8("profile count", len(c.Profiles)); err != nil {
			return nil, err
		}
		profs := make([]any, len(c.Profiles))
		for j := range c.Profiles {
			if profs[j], err = profile(c, j); err != nil {
				return nil, err
			}
		}
		if r.ProfileOff, err = e.section(c.Name+".profiles", profs...); err != nil {
			return nil, err
		}
		if c.RxFifo != nil {
			r.Flags |= ctrlRxFifo
			if r.FifoLen, err = u8("RX FIFO filter count", len(c.RxFifo)); err != nil {
				return nil, err
			}
			fifo := make([]any, len(c.RxFifo))
			for j, el := range c.RxFifo {
				fifo[j] = [2]uint32{el.Value, el.Mask}
			}
			if r.FifoOff, err = e.section(c.Name+".rxfifo", fifo...); err != nil {
				return nil, err
			}
		}
		ctrls[i] = r
	}
	mbs := make([]any, len(t.Mailboxes))
	for i := range t.Mailboxes {
		if mbs[i], err = mailbox(t, i); err != nil {
			return nil, err
		}
	}
	if h.MailboxOff, err = e.section("mailboxes", mbs...); err != nil {
		return nil, err
	}
	if h.MaskOff, err = e.section("masks", t.FilterMasks); err != nil {
		return nil, err
	}
	handles := make([]any, len(t.Handles))
	for i, hd := range t.Handles {
		r := handleRecord{First: uint16(hd.Descriptors.First), Count: uint16(hd.Descriptors.Count)}
		if r.Object, err = u16("hardware object", hd.Object); err != nil {
			return nil, err
		}
		handles[i] = r
	}
	if h.HandleOff, err = e.section("handles", handles...); err != nil {
		return nil, err
	}

	// The header and the controller table are written last, when all
	// offsets are known.
	tail := e.ss
	e.ss, e.off = nil, 0
	if _, err = e.section("header", h); err != nil {
		return nil, err
	}
	if _, err = e.section("controllers", ctrls...); err != nil {
		return nil, err
	}
	return append(e.ss, tail...), nil
}
