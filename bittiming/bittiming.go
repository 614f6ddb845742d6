// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bittiming computes and validates FlexCAN bit-timing register fields.
//
// The number of time quanta per bit is computed twice: from the clock
// frequency, the baud rate and the prescaler, and from the declared segment
// lengths. A difference is reported as a diag.Inconsistent warning and the
// declared segments are used. Values outside the valid ranges are fatal
// diag.OutOfRange errors.
package bittiming

import (
	"fmt"
	"math"

	"github.com/embeddedgo/cantools/diag"
)

// Classic (CTRL1) timing limits.
const (
	MinTQ, MaxTQ       = 8, 25
	MinTSeg1, MaxTSeg1 = 4, 16
	MaxPrescaler       = 256
	MaxSeg             = 8
	MinSeg2            = 2
	MaxSJW             = 4
)

// BusDelayNsPerM is the signal propagation delay on the bus wires.
const BusDelayNsPerM = 5

// Registers holds the CTRL1 bit-timing fields.
type Registers struct {
	PRESDIV uint8
	RJW     uint8
	PSEG1   uint8
	PSEG2   uint8
	PROPSEG uint8
	CLKSRC  bool
}

// CTRL1 returns the timing part of the CTRL1 register.
func (r Registers) CTRL1() uint32 {
	v := uint32(r.PRESDIV)<<24 | uint32(r.RJW)<<22 | uint32(r.PSEG1)<<19 |
		uint32(r.PSEG2)<<16 | uint32(r.PROPSEG)
	if r.CLKSRC {
		v |= 1 << 13
	}
	return v
}

// Segments describes one bit in time quanta.
type Segments struct {
	Prescaler int
	PropSeg   int
	Seg1      int
	Seg2      int
	SJW       int
}

// TQ returns the number of time quanta per bit including the sync segment.
func (s Segments) TQ() int { return 1 + s.PropSeg + s.Seg1 + s.Seg2 }

type ClassicParams struct {
	Where     string
	ClockHz   uint64
	BaudKbps  uint32
	Segments  Segments
	Mailboxes int // used by the minimum clock ratio check
	ClkSrc    bool
}

type Result struct {
	TQFromClock int
	TQFromUser  int
	Segments    Segments
	Registers   Registers
	Warnings    diag.Warnings
}

// MinClockRatio returns the minimum number of CAN engine clocks per bit that
// the controller needs to serve the given number of mailboxes.
func MinClockRatio(mailboxes int) int {
	switch {
	case mailboxes <= 32:
		return 8
	case mailboxes <= 64:
		return 16
	}
	return 24
}

// clockTQ returns round(clock / baud / prescaler).
func clockTQ(clockHz uint64, baudKbps uint32, prescaler int) int {
	bitClocks := float64(clockHz) / (float64(baudKbps) * 1000)
	return int(math.Round(bitClocks / float64(prescaler)))
}

func checkInputs(where string, clockHz uint64, baudKbps uint32, prescaler, maxPrescaler int) error {
	if clockHz == 0 {
		return &diag.OutOfRange{Where: where, Parameter: "ClockHz", Bounds: diag.Bounds{Min: 1, Max: math.MaxInt64}}
	}
	return diag.First(
		diag.Range(where, "BaudRate", baudKbps, 1, math.MaxUint32),
		diag.Range(where, "Prescaler", prescaler, 1, int64(maxPrescaler)),
	)
}

// crossCheckTQ compares the clock derived TQ with the declared one.
func crossCheckTQ(ws *diag.Warnings, where, what string, fromClock, fromUser int) {
	if fromClock != fromUser {
		ws.Add(
			where,
			"%s time quanta from clock (%d) != declared segments 1+prop+seg1+seg2 (%d)",
			what, fromClock, fromUser,
		)
	}
}

// ResolveClassic validates the nominal bit timing and encodes the CTRL1
// fields. On error the returned Result still carries the warnings found
// before the failing check.
func ResolveClassic(p ClassicParams) (Result, error) {
	s := p.Segments
	res := Result{Segments: s, TQFromUser: s.TQ()}
	if err := checkInputs(p.Where, p.ClockHz, p.BaudKbps, s.Prescaler, MaxPrescaler); err != nil {
		return res, err
	}
	res.TQFromClock = clockTQ(p.ClockHz, p.BaudKbps, s.Prescaler)
	crossCheckTQ(&res.Warnings, p.Where, "nominal", res.TQFromClock, res.TQFromUser)
	err := diag.First(
		diag.Range(p.Where, "TimeQuanta", res.TQFromClock, MinTQ, MaxTQ),
		diag.Range(p.Where, "TimeSegment1", s.PropSeg+s.Seg1, MinTSeg1, MaxTSeg1),
		diag.Range(p.Where, "PropSeg", s.PropSeg, 1, MaxSeg),
		diag.Range(p.Where, "Seg1", s.Seg1, 1, MaxSeg),
		diag.Range(p.Where, "Seg2", s.Seg2, MinSeg2, MaxSeg),
		diag.Range(p.Where, "SyncJumpWidth", s.SJW, 1, min(MaxSJW, int64(s.Seg2))),
		diag.Range(
			p.Where, "ClockRatio", res.TQFromClock*s.Prescaler,
			int64(MinClockRatio(p.Mailboxes)), math.MaxInt32,
		),
	)
	if err != nil {
		return res, err
	}
	res.Registers = Registers{
		PRESDIV: uint8(s.Prescaler - 1),
		RJW:     uint8(s.SJW - 1),
		PSEG1:   uint8(s.Seg1 - 1),
		PSEG2:   uint8(s.Seg2 - 1),
		PROPSEG: uint8(s.PropSeg - 1),
		CLKSRC:  p.ClkSrc,
	}
	return res, nil
}

type AutoParams struct {
	Where              string
	ClockHz            uint64
	BaudKbps           uint32
	Prescaler          int
	BusLengthM         int
	TransceiverDelayNs int
	Mailboxes          int
	ClkSrc             bool
}

// DeriveSegments computes the segment lengths from the physical layer
// parameters.
func DeriveSegments(p AutoParams) (Segments, error) {
	s := Segments{Prescaler: p.Prescaler}
	if err := checkInputs(p.Where, p.ClockHz, p.BaudKbps, p.Prescaler, MaxPrescaler); err != nil {
		return s, err
	}
	tq := clockTQ(p.ClockHz, p.BaudKbps, p.Prescaler)
	if err := diag.Range(p.Where, "TimeQuanta", tq, MinTQ, MaxTQ); err != nil {
		return s, err
	}
	tqNs := float64(p.Prescaler) * 1e9 / float64(p.ClockHz)
	physDelay := float64(p.BusLengthM * BusDelayNsPerM)
	propTime := 2 * (physDelay + 2*float64(p.TransceiverDelayNs))
	s.PropSeg = 1 + int(math.Round(propTime/tqNs))
	if err := diag.Range(p.Where, "PropSeg", s.PropSeg, 1, MaxSeg); err != nil {
		return s, err
	}
	phase := tq - s.PropSeg - 1
	if err := diag.Range(p.Where, "PhaseSegments", phase, 2, 2*MaxSeg); err != nil {
		return s, err
	}
	s.Seg1 = min((phase+1)/2, MaxSeg)
	s.Seg2 = phase - s.Seg1
	err := diag.First(
		diag.Range(p.Where, "Seg1", s.Seg1, 1, MaxSeg),
		diag.Range(p.Where, "Seg2", s.Seg2, MinSeg2, MaxSeg),
	)
	if err != nil {
		return s, err
	}
	s.SJW = min(s.Seg1, MaxSJW)
	return s, nil
}

// ResolveAuto derives the segments and validates them like ResolveClassic.
func ResolveAuto(p AutoParams) (Result, error) {
	s, err := DeriveSegments(p)
	if err != nil {
		return Result{Segments: s}, err
	}
	return ResolveClassic(ClassicParams{
		Where:     p.Where,
		ClockHz:   p.ClockHz,
		BaudKbps:  p.BaudKbps,
		Segments:  s,
		Mailboxes: p.Mailboxes,
		ClkSrc:    p.ClkSrc,
	})
}

func (r Result) String() string {
	return fmt.Sprintf(
		"presc=%d prop=%d seg1=%d seg2=%d sjw=%d tq=%d",
		r.Segments.Prescaler, r.Segments.PropSeg, r.Segments.Seg1,
		r.Segments.Seg2, r.Segments.SJW, r.TQFromUser,
	)
}
