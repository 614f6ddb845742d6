// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"io"

	"github.com/marcinbor85/gohex"
	"github.com/spf13/cobra"

	"github.com/embeddedgo/cantools/cangen/internal/image"
	"github.com/embeddedgo/cantools/cangen/internal/util"
)

const Descr = "write the configuration table in the Intel HEX format"

func Command() *cobra.Command {
	var (
		strict bool
		base   uint64
	)
	cmd := &cobra.Command{
		Use:   "hex [CONFIG [HEX]]",
		Short: Descr,
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			in, out := util.InOutFiles(util.Arg(args, 0), ".yaml", util.Arg(args, 1), ".hex")
			if base > 0xffffffff {
				util.Fatal("hex: the target address %#x doesn't fit in 32 bits", base)
			}
			t := util.Load(in, strict)
			sections, err := image.Encode(t, base)
			util.FatalErr("encode", err)
			w := util.Create(out)
			defer w.Close()
			util.FatalErr("dumpintelhex", dump(w, sections))
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().Uint64Var(&base, "base", 0, "target `address` of the image")
	return cmd
}

func dump(w io.Writer, sections image.Sections) error {
	sections.SortByPaddr()
	mem := gohex.NewMemory()
	for _, s := range sections {
		if err := mem.AddBinary(uint32(s.Paddr), s.Data); err != nil {
			return err
		}
	}
	return mem.DumpIntelHex(w, 16)
}
