// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittiming

import (
	"fmt"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
)

// Variant is a baud rate profile resolved for one clock.
type Variant struct {
	ClockHz uint64
	Nominal Result
	FD      *FDResult
	CBT     *CBTResult
}

// Profile is a resolved canconf.BaudrateConfig.
type Profile struct {
	ID         uint16
	BaudKbps   uint32
	FDBaudKbps uint32
	BRS        bool
	Main       Variant
	Alt        *Variant // alternate clock, nil if not configured
	Warnings   diag.Warnings
}

type prescalers struct {
	nominal, fd, cbt int
}

// ResolveProfile resolves all timings of the baud rate configuration b of the
// controller c. The mailboxes parameter is the number of mailboxes used by the
// controller.
func ResolveProfile(c *canconf.Controller, b *canconf.BaudrateConfig, mailboxes int) (Profile, error) {
	p := Profile{ID: b.ID, BaudKbps: b.BaudKbps}
	where := fmt.Sprintf("%s/baudrate %d", c.Name, b.ID)
	ps := prescalers{nominal: b.Prescaler}
	if b.FD != nil {
		p.FDBaudKbps = b.FD.BaudKbps
		p.BRS = b.FD.BRS
		ps.fd = b.FD.Prescaler
	}
	if b.CBT != nil {
		ps.cbt = b.CBT.Prescaler
	}
	var err error
	p.Main, err = resolveVariant(&p.Warnings, where, c.ClockHz, c.PeripheralClock, b, ps, mailboxes)
	if err != nil {
		return p, err
	}
	if alt := b.Alternate; alt != nil {
		aps := ps
		if alt.Prescaler != 0 {
			aps.nominal = alt.Prescaler
		}
		if alt.FDPrescaler != 0 && b.FD != nil {
			aps.fd = alt.FDPrescaler
		}
		if alt.CBTPrescaler != 0 && b.CBT != nil {
			aps.cbt = alt.CBTPrescaler
		}
		v, err := resolveVariant(
			&p.Warnings, where+"/alt", c.AltClockHz, !c.PeripheralClock, b, aps,
			mailboxes,
		)
		if err != nil {
			return p, err
		}
		p.Alt = &v
	}
	return p, nil
}

func resolveVariant(ws *diag.Warnings, where string, clockHz uint64, clkSrc bool, b *canconf.BaudrateConfig, ps prescalers, mailboxes int) (Variant, error) {
	v := Variant{ClockHz: clockHz}
	var err error
	if b.Auto != nil {
		v.Nominal, err = ResolveAuto(AutoParams{
			Where:              where,
			ClockHz:            clockHz,
			BaudKbps:           b.BaudKbps,
			Prescaler:          ps.nominal,
			BusLengthM:         b.Auto.BusLengthM,
			TransceiverDelayNs: b.Auto.TransceiverDelayNs,
			Mailboxes:          mailboxes,
			ClkSrc:             clkSrc,
		})
	} else {
		v.Nominal, err = ResolveClassic(ClassicParams{
			Where:    where,
			ClockHz:  clockHz,
			BaudKbps: b.BaudKbps,
			Segments: Segments{
				Prescaler: ps.nominal,
				PropSeg:   b.PropSeg,
				Seg1:      b.Seg1,
				Seg2:      b.Seg2,
				SJW:       b.SJW,
			},
			Mailboxes: mailboxes,
			ClkSrc:    clkSrc,
		})
	}
	*ws = append(*ws, v.Nominal.Warnings...)
	if err != nil {
		return v, err
	}
	if fd := b.FD; fd != nil {
		r, err := ResolveFD(FDParams{
			Where:    where,
			ClockHz:  clockHz,
			BaudKbps: fd.BaudKbps,
			Segments: Segments{
				Prescaler: ps.fd,
				PropSeg:   fd.PropSeg,
				Seg1:      fd.Seg1,
				Seg2:      fd.Seg2,
				SJW:       fd.SJW,
			},
			TDC:       fd.TDC,
			TDCOffset: fd.TDCOffset,
		})
		*ws = append(*ws, r.Warnings...)
		if err != nil {
			return v, err
		}
		v.FD = &r
		if fd.BRS && fd.BaudKbps < b.BaudKbps {
			ws.Add(
				where, "FD data baud rate (%d kbps) below nominal (%d kbps)",
				fd.BaudKbps, b.BaudKbps,
			)
		}
	}
	if cbt := b.CBT; cbt != nil {
		r, err := ResolveCBT(CBTParams{
			Where:    where,
			ClockHz:  clockHz,
			BaudKbps: b.BaudKbps,
			Segments: Segments{
				Prescaler: ps.cbt,
				PropSeg:   cbt.PropSeg,
				Seg1:      cbt.Seg1,
				Seg2:      cbt.Seg2,
				SJW:       cbt.SJW,
			},
			Mailboxes: mailboxes,
		})
		*ws = append(*ws, r.Warnings...)
		if err != nil {
			return v, err
		}
		v.CBT = &r
	}
	brs := b.FD != nil && b.FD.BRS
	*ws = append(*ws, CrossCheck(where, ps.nominal, ps.fd, ps.cbt, brs)...)
	return v, nil
}
