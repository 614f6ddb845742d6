// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

const uf2FamilyIDPresent = 0x00002000

// UF2Families maps the known family names to UF2 family IDs.
var UF2Families = map[string]uint32{
	"absolute":      0xe48bff57,
	"data":          0xe48bff58,
	"kl32l2":        0x7f83e793,
	"lpc55":         0x2abc77ec,
	"mimxrt10xx":    0x4fb2d5bd,
	"rp2040":        0xe48bff56,
	"rp2350_arm_s":  0xe48bff59,
	"rp2350_arm_ns": 0xe48bff5b,
	"samd51":        0x55114460,
	"stm32f4":       0x57755a57,
}

// FamilyID parses a UF2 family given as a known name or a 32-bit number.
func FamilyID(s string) (uint32, error) {
	if id, ok := UF2Families[s]; ok {
		return id, nil
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("uf2: bad family ID: %q", s)
	}
	return uint32(u), nil
}

type uf2block struct {
	Magic0 uint32
	Magic1 uint32
	Flags  uint32
	Addr   uint32
	Len    uint32
	Seq    uint32
	Total  uint32
	Family uint32
	Data   [256]byte
	_      [476 - 256]byte
	Magic2 uint32
}

type uf2Writer struct {
	w io.Writer
	b uf2block
}

func newUF2Writer(w io.Writer, addr, flags, family uint32, size int) *uf2Writer {
	u := new(uf2Writer)
	u.w = w
	u.b.Magic0 = 0x0a324655
	u.b.Magic1 = 0x9e5d5157
	u.b.Flags = flags
	u.b.Addr = addr
	u.b.Total = uint32((size + len(u.b.Data) - 1) / len(u.b.Data))
	u.b.Family = family
	u.b.Magic2 = 0x0ab16f30
	return u
}

func (u *uf2Writer) Write(p []byte) (n int, err error) {
	b := &u.b
	for len(p) != 0 {
		m := copy(b.Data[b.Len:], p)
		n += m
		p = p[m:]
		b.Len += uint32(m)
		if int(b.Len) == len(b.Data) {
			if err = u.emit(); err != nil {
				return
			}
		}
	}
	return
}

func (u *uf2Writer) emit() error {
	b := &u.b
	err := binary.Write(u.w, binary.LittleEndian, b)
	b.Addr += b.Len
	b.Seq++
	b.Len = 0
	return err
}

// Flush writes the last, zero padded block.
func (u *uf2Writer) Flush() error {
	b := &u.b
	if b.Len == 0 {
		return nil
	}
	clear(b.Data[b.Len:])
	b.Len = uint32(len(b.Data))
	return u.emit()
}

// WriteUF2 flattens ss and writes them to w as UF2 blocks.
func (ss Sections) WriteUF2(w io.Writer, family uint32, pad byte) error {
	if len(ss) == 0 {
		return nil
	}
	buf := bytes.NewBuffer(make([]byte, 0, ss.Size()))
	if _, err := ss.Flatten(buf, pad); err != nil {
		return err
	}
	addr := uint32(ss[0].Paddr)
	if uint64(addr) != ss[0].Paddr {
		return fmt.Errorf("uf2: the target address %#x doesn't fit in 32 bits", ss[0].Paddr)
	}
	u := newUF2Writer(w, addr, uf2FamilyIDPresent, family, buf.Len())
	if _, err := u.Write(buf.Bytes()); err != nil {
		return err
	}
	return u.Flush()
}
