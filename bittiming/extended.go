// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittiming

import (
	"github.com/embeddedgo/cantools/diag"
)

// CAN FD data phase (FDCBT) limits.
const (
	MinFDTQ, MaxFDTQ = 5, 48
	MaxFDPrescaler   = 1024
	MaxFDPropSeg     = 31
	MaxFDSJW         = 8
	MaxTDCOffset     = 31
)

// Extended nominal timing (CBT) limits.
const (
	MinCBTTQ, MaxCBTTQ     = 8, 129
	MinCBTSeg1, MaxCBTSeg1 = 4, 96
	MinCBTSeg2, MaxCBTSeg2 = 2, 32
	MaxCBTPrescaler        = 1024
	MaxCBTPropSeg          = 64
	MaxCBTPhaseSeg         = 32
	MaxCBTSJW              = 32
)

// FDRegisters holds the FDCBT fields and the transceiver delay compensation
// part of FDCTRL.
type FDRegisters struct {
	FPRESDIV uint16
	FRJW     uint8
	FPROPSEG uint8
	FPSEG1   uint8
	FPSEG2   uint8
	TDCEN    bool
	TDCOFF   uint8
}

func (r FDRegisters) FDCBT() uint32 {
	return uint32(r.FPRESDIV)<<20 | uint32(r.FRJW)<<16 | uint32(r.FPROPSEG)<<10 |
		uint32(r.FPSEG1)<<5 | uint32(r.FPSEG2)
}

// CBTRegisters holds the CBT register fields.
type CBTRegisters struct {
	EPRESDIV uint16
	ERJW     uint8
	EPROPSEG uint8
	EPSEG1   uint8
	EPSEG2   uint8
}

// CBT returns the CBT register value with the BTF bit set.
func (r CBTRegisters) CBT() uint32 {
	return 1<<31 | uint32(r.EPRESDIV)<<21 | uint32(r.ERJW)<<16 |
		uint32(r.EPROPSEG)<<10 | uint32(r.EPSEG1)<<5 | uint32(r.EPSEG2)
}

type FDParams struct {
	Where     string
	ClockHz   uint64
	BaudKbps  uint32
	Segments  Segments
	TDC       bool
	TDCOffset int
}

type FDResult struct {
	TQFromClock int
	TQFromUser  int
	Segments    Segments
	Registers   FDRegisters
	Warnings    diag.Warnings
}

// ResolveFD validates the CAN FD data phase bit timing.
func ResolveFD(p FDParams) (FDResult, error) {
	s := p.Segments
	res := FDResult{Segments: s, TQFromUser: s.TQ()}
	if err := checkInputs(p.Where, p.ClockHz, p.BaudKbps, s.Prescaler, MaxFDPrescaler); err != nil {
		return res, err
	}
	res.TQFromClock = clockTQ(p.ClockHz, p.BaudKbps, s.Prescaler)
	crossCheckTQ(&res.Warnings, p.Where, "FD", res.TQFromClock, res.TQFromUser)
	err := diag.First(
		diag.Range(p.Where, "FdTimeQuanta", res.TQFromClock, MinFDTQ, MaxFDTQ),
		diag.Range(p.Where, "FdPropSeg", s.PropSeg, 0, MaxFDPropSeg),
		diag.Range(p.Where, "FdSeg1", s.Seg1, 1, MaxSeg),
		diag.Range(p.Where, "FdSeg2", s.Seg2, MinSeg2, MaxSeg),
		diag.Range(p.Where, "FdSyncJumpWidth", s.SJW, 1, MaxFDSJW),
	)
	if err != nil {
		return res, err
	}
	if p.TDC {
		if err := diag.Range(p.Where, "TdcOffset", p.TDCOffset, 0, MaxTDCOffset); err != nil {
			return res, err
		}
	}
	res.Registers = FDRegisters{
		FPRESDIV: uint16(s.Prescaler - 1),
		FRJW:     uint8(s.SJW - 1),
		FPROPSEG: uint8(s.PropSeg),
		FPSEG1:   uint8(s.Seg1 - 1),
		FPSEG2:   uint8(s.Seg2 - 1),
		TDCEN:    p.TDC,
		TDCOFF:   uint8(p.TDCOffset),
	}
	return res, nil
}

type CBTParams struct {
	Where     string
	ClockHz   uint64
	BaudKbps  uint32
	Segments  Segments
	Mailboxes int
}

type CBTResult struct {
	TQFromClock int
	TQFromUser  int
	Segments    Segments
	Registers   CBTRegisters
	Warnings    diag.Warnings
}

// ResolveCBT validates the extended nominal bit timing.
func ResolveCBT(p CBTParams) (CBTResult, error) {
	s := p.Segments
	res := CBTResult{Segments: s, TQFromUser: s.TQ()}
	if err := checkInputs(p.Where, p.ClockHz, p.BaudKbps, s.Prescaler, MaxCBTPrescaler); err != nil {
		return res, err
	}
	res.TQFromClock = clockTQ(p.ClockHz, p.BaudKbps, s.Prescaler)
	crossCheckTQ(&res.Warnings, p.Where, "CBT", res.TQFromClock, res.TQFromUser)
	err := diag.First(
		diag.Range(p.Where, "CbtTimeQuanta", res.TQFromClock, MinCBTTQ, MaxCBTTQ),
		diag.Range(p.Where, "CbtSeg1", s.PropSeg+s.Seg1, MinCBTSeg1, MaxCBTSeg1),
		diag.Range(p.Where, "CbtSeg2", s.Seg2, MinCBTSeg2, MaxCBTSeg2),
		diag.Range(p.Where, "CbtPropSeg", s.PropSeg, 1, MaxCBTPropSeg),
		diag.Range(p.Where, "CbtPhaseSeg1", s.Seg1, 1, MaxCBTPhaseSeg),
		diag.Range(p.Where, "CbtSyncJumpWidth", s.SJW, 1, MaxCBTSJW),
		diag.Range(
			p.Where, "ClockRatio", res.TQFromClock*s.Prescaler,
			int64(MinClockRatio(p.Mailboxes)), 1<<31-1,
		),
	)
	if err != nil {
		return res, err
	}
	res.Registers = CBTRegisters{
		EPRESDIV: uint16(s.Prescaler - 1),
		ERJW:     uint8(s.SJW - 1),
		EPROPSEG: uint8(s.PropSeg - 1),
		EPSEG1:   uint8(s.Seg1 - 1),
		EPSEG2:   uint8(s.Seg2 - 1),
	}
	return res, nil
}

// CrossCheck compares the prescalers of the nominal, FD and CBT timings. A
// zero fd or cbt prescaler means the feature is not used. Disagreements are
// returned as warnings.
func CrossCheck(where string, classic, fd, cbt int, brs bool) diag.Warnings {
	var ws diag.Warnings
	switch {
	case fd != 0 && cbt != 0:
		if fd != cbt {
			ws.Add(where, "FD prescaler (%d) != CBT prescaler (%d)", fd, cbt)
		}
	case fd != 0 && brs:
		if fd != classic {
			ws.Add(
				where,
				"FD prescaler (%d) != nominal prescaler (%d) with bit rate switching",
				fd, classic,
			)
		}
	}
	return ws
}
