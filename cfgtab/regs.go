// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfgtab

import (
	"math/bits"

	"github.com/embeddedgo/cantools/canconf"
)

// MCR bits
const (
	mcrMAXMB   = 0x7f
	mcrIDAMn   = 8
	mcrFDEN    = 1 << 11
	mcrLPRIOEN = 1 << 13
	mcrIRMQ    = 1 << 16
	mcrSRXDIS  = 1 << 17
	mcrRFEN    = 1 << 29
)

// CTRL1 option bits
const (
	ctrl1LOM     = 1 << 3
	ctrl1BOFFREC = 1 << 6
	ctrl1LPB     = 1 << 12
	ctrl1ERRMSK  = 1 << 14
	ctrl1BOFFMSK = 1 << 15
)

// FDCTRL bits
const (
	fdctrlTDCOFFn = 8
	fdctrlTDCEN   = 1 << 15
	fdctrlFDRATE  = 1 << 31
)

var fdctrlMBDSRn = [canconf.MaxRegions]int{16, 19, 22}

func mcr(c *canconf.Controller, maxMB int) uint32 {
	v := uint32(mcrIRMQ)
	if maxMB > 0 {
		v |= uint32(maxMB-1) & mcrMAXMB
	}
	if !c.Options.LoopBack {
		v |= mcrSRXDIS
	}
	if c.FD {
		v |= mcrFDEN
	}
	if c.Options.LocalPriority {
		v |= mcrLPRIOEN
	}
	if f := c.RxFifo; f != nil {
		v |= mcrRFEN | uint32(f.Mode)<<mcrIDAMn
	}
	return v
}

func ctrl1Options(c *canconf.Controller) uint32 {
	var v uint32
	if c.Options.ListenOnly {
		v |= ctrl1LOM
	}
	if c.Options.LoopBack {
		v |= ctrl1LPB
	}
	if !c.Options.BusOffRecovery {
		v |= ctrl1BOFFREC
	}
	if c.Notifications.BusOff.Enabled {
		v |= ctrl1BOFFMSK
	}
	if c.Notifications.Error.Enabled {
		v |= ctrl1ERRMSK
	}
	return v
}

// mbdsr returns the data size code of a payload length: 8, 16, 32, 64 bytes
// give 0, 1, 2, 3.
func mbdsr(payload int) uint32 {
	if payload <= canconf.ClassicPayload {
		return 0
	}
	return uint32(bits.TrailingZeros(uint(payload / canconf.ClassicPayload)))
}

func fdctrl(c *canconf.Controller, brs, tdc bool, tdcOffset uint8) uint32 {
	if !c.FD {
		return 0
	}
	var v uint32
	for r := 0; r < canconf.MaxRegions; r++ {
		v |= mbdsr(c.Payload(r)) << fdctrlMBDSRn[r]
	}
	if brs {
		v |= fdctrlFDRATE
	}
	if tdc {
		v |= fdctrlTDCEN | uint32(tdcOffset&0x1f)<<fdctrlTDCOFFn
	}
	return v
}
