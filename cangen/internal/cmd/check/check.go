// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package check

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/embeddedgo/cantools/bittiming"
	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/cangen/internal/util"
	"github.com/embeddedgo/cantools/cfgtab"
)

const Descr = "validate a configuration and print the timing and mailbox report"

func Command() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check [CONFIG]",
		Short: Descr,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			in, _ := util.InOutFiles(util.Arg(args, 0), ".yaml", "-", "")
			t := util.Load(in, strict)
			util.FatalErr("report", report(cmd.OutOrStdout(), t))
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

// samplePoint returns the sample point position in per mille of the bit time.
func samplePoint(s bittiming.Segments) int {
	return (1 + s.PropSeg + s.Seg1) * 1000 / s.TQ()
}

func timing(w io.Writer, what string, s bittiming.Segments) {
	sp := samplePoint(s)
	fmt.Fprintf(
		w, "\t%s\tpresc=%d\ttq=%d\tprop=%d\tseg1=%d\tseg2=%d\tsjw=%d\tsp=%d.%d%%\n",
		what, s.Prescaler, s.TQ(), s.PropSeg, s.Seg1, s.Seg2, s.SJW,
		sp/10, sp%10,
	)
}

func variant(w io.Writer, prefix string, v *bittiming.Variant) {
	timing(w, prefix+"nominal", v.Nominal.Segments)
	if v.FD != nil {
		timing(w, prefix+"data", v.FD.Segments)
	}
	if v.CBT != nil {
		timing(w, prefix+"cbt", v.CBT.Segments)
	}
}

func controller(w io.Writer, t *cfgtab.Table, c *cfgtab.Controller) {
	kind := "classic"
	if c.FD {
		kind = "FD"
	}
	fmt.Fprintf(
		w, "%s (id %d, %s): %d of %d mailboxes, first user %d\n",
		c.Name, c.ID, kind, c.MaxMBCount, c.MaxMailboxes, c.FirstUserMailbox,
	)
	fmt.Fprintf(w, "\tMCR=%#08x\tCTRL1=%#08x\tFDCTRL=%#08x\n", c.MCR, c.CTRL1, c.FDCTRL)
	if c.RxFifo != nil {
		fmt.Fprintf(w, "\tRX FIFO\tformat %v\t%d filter elements\n", c.FifoMode, len(c.RxFifo))
	}
	for i := range c.Profiles {
		p := &c.Profiles[i]
		def := ""
		if i == c.DefaultProfile {
			def = " (default)"
		}
		fmt.Fprintf(w, "\tprofile %#x%s\t%d kbit/s", p.ID, def, p.BaudKbps)
		if p.FDBaudKbps != 0 {
			fmt.Fprintf(w, "\tdata %d kbit/s", p.FDBaudKbps)
			if p.BRS {
				fmt.Fprint(w, " BRS")
			}
		}
		fmt.Fprintln(w)
		variant(w, "", &p.Main)
		if p.Alt != nil {
			variant(w, "alt ", p.Alt)
		}
	}
	fmt.Fprintln(w, "\tMB\tADDR\tHOH\tTYPE\tID\tPAYLOAD\tMASK")
	for _, m := range t.Mailboxes {
		if m.Controller != c.ID {
			continue
		}
		mb := fmt.Sprint(m.Index)
		if m.Fifo {
			mb = "fifo"
		}
		mask := "-"
		if m.MaskIndex >= 0 {
			mask = fmt.Sprintf("%#x", t.FilterMasks[m.MaskIndex])
		}
		id := fmt.Sprintf("%#x", m.MessageID)
		if m.IDType == canconf.Extended {
			id += "x"
		}
		fmt.Fprintf(
			w, "\t%s\t%#x\t%d\t%v\t%s\t%d\t%s\n",
			mb, m.Address, m.Object, m.Type, id, m.Payload, mask,
		)
	}
}

func report(w io.Writer, t *cfgtab.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for i := range t.Controllers {
		if i != 0 {
			fmt.Fprintln(tw)
		}
		controller(tw, t, &t.Controllers[i])
	}
	return tw.Flush()
}
