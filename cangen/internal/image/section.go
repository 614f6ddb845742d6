// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"cmp"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// Section is a contiguous part of the configuration image.
type Section struct {
	Name  string
	Paddr uint64 // location of the section in the target memory
	Data  []byte
}

type Sections []*Section

// SortByPaddr sorts sections by their target address. Sections that start
// at the same address keep their relative order.
func (ss Sections) SortByPaddr() {
	slices.SortStableFunc(ss, func(a, b *Section) int {
		return cmp.Compare(a.Paddr, b.Paddr)
	})
}

// Size returns the size of the flattened sections.
func (ss Sections) Size() int {
	if len(ss) == 0 {
		return 0
	}
	first, last := ss[0].Paddr, ss[0].Paddr+uint64(len(ss[0].Data))
	for _, s := range ss[1:] {
		first = min(first, s.Paddr)
		last = max(last, s.Paddr+uint64(len(s.Data)))
	}
	return int(last - first)
}

// Flatten sorts the sections using SortByPaddr and writes their data to w so
// that every section lands at its offset from the lowest Paddr. Gaps between
// sections are filled with the pad byte. Overlapping sections are an error.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return 0, nil
	}
	ss.SortByPaddr()
	var padCache []byte
	addr := ss[0].Paddr
	for _, s := range ss {
		if s.Paddr < addr {
			return n, fmt.Errorf("flatten: section %s overlaps the previous one", s.Name)
		}
		if gap := int(s.Paddr - addr); gap != 0 {
			m, err := w.Write(PadBytes(&padCache, gap, pad))
			n += m
			if err != nil {
				return n, err
			}
		}
		m, err := w.Write(s.Data)
		n += m
		if err != nil {
			return n, err
		}
		addr = s.Paddr + uint64(len(s.Data))
	}
	return n, nil
}

// PadBytes returns n bytes of value b. The backing array is kept in cache and
// reused by subsequent calls.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	if len(*cache) < n || (n != 0 && (*cache)[0] != b) {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
