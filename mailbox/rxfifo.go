// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"fmt"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
)

// Element is one entry of the RX FIFO ID filter table with its individual
// mask (RXIMR).
type Element struct {
	Value uint32
	Mask  uint32
}

const (
	ide        = 1 << 30
	guardA     = 0xc0000000 // RTR and IDE compared
	guardB     = 0xc000c000
	idBitsB    = 14
	stdMax     = 0x7ff
	extMax     = 0x1fffffff
	halfMaxExt = 1<<idBitsB - 1
)

// BuildRxFifoTable encodes the ID filter table of the RX FIFO of c according
// to its acceptance mode. The number of filters must be equal to the declared
// filter number.
func BuildRxFifoTable(c *canconf.Controller) ([]Element, error) {
	f := c.RxFifo
	if f == nil {
		return nil, nil
	}
	where := c.Name + "/rxFifo"
	if len(f.Filters) != f.FiltersNumber {
		return nil, &diag.Invalid{
			Where:     where,
			Parameter: "filters",
			Description: fmt.Sprintf(
				"%d entries, declared filter number is %d",
				len(f.Filters), f.FiltersNumber,
			),
		}
	}
	tab := make([]Element, len(f.Filters))
	for i, e := range f.Filters {
		var err error
		w := fmt.Sprintf("%s/filter %d", where, i)
		switch f.Mode {
		case canconf.FormatA:
			tab[i], err = encodeA(w, f.IDType, e)
		case canconf.FormatB:
			tab[i], err = encodeB(w, f.IDType, e)
		case canconf.FormatC:
			tab[i] = Element{e.Value, e.Mask}
		default:
			tab[i] = Element{0, e.Mask}
		}
		if err != nil {
			return nil, err
		}
	}
	return tab, nil
}

func encodeA(where string, t canconf.IDType, e canconf.FilterEntry) (Element, error) {
	if t == canconf.Extended {
		err := diag.First(
			diag.Range(where, "id", e.Value, 0, extMax),
			diag.Range(where, "mask", e.Mask, 0, extMax),
		)
		return Element{e.Value<<1 | ide, e.Mask<<1 | guardA}, err
	}
	err := diag.First(
		diag.Range(where, "id", e.Value, 0, stdMax),
		diag.Range(where, "mask", e.Mask, 0, stdMax),
	)
	return Element{e.Value << 19, e.Mask<<19 | guardA}, err
}

// encodeB packs the two IDs held in the 16-bit halves of e.Value.
func encodeB(where string, t canconf.IDType, e canconf.FilterEntry) (Element, error) {
	vh, vl := e.Value>>16, e.Value&0xffff
	mh, ml := e.Mask>>16, e.Mask&0xffff
	lim := int64(stdMax)
	if t == canconf.Extended {
		lim = halfMaxExt
	}
	err := diag.First(
		diag.Range(where, "id[0]", vh, 0, lim),
		diag.Range(where, "id[1]", vl, 0, lim),
		diag.Range(where, "mask[0]", mh, 0, lim),
		diag.Range(where, "mask[1]", ml, 0, lim),
	)
	if err != nil {
		return Element{}, err
	}
	if t == canconf.Extended {
		return Element{
			Value: vh<<16 | vl | ide | ide>>16,
			Mask:  mh<<16 | ml | guardB,
		}, nil
	}
	return Element{
		Value: vh<<19 | vl<<3,
		Mask:  mh<<19 | ml<<3 | guardB,
	}, nil
}
