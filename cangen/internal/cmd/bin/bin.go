// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/embeddedgo/cantools/cangen/internal/image"
	"github.com/embeddedgo/cantools/cangen/internal/util"
)

const (
	DescrBin = "write the configuration table as a binary image"
	DescrUF2 = "write the configuration table in the UF2 format"
)

func familyNames() string {
	names := maps.Keys(image.UF2Families)
	slices.Sort(names)
	return strings.Join(names, "\n")
}

// Command returns the bin or uf2 command.
func Command(name string) *cobra.Command {
	var (
		strict bool
		base   uint64
		pad    uint8
		family string
	)
	descr := DescrBin
	if name == "uf2" {
		descr = DescrUF2
	}
	cmd := &cobra.Command{
		Use:   name + " [CONFIG [" + strings.ToUpper(name) + "]]",
		Short: descr,
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			in, out := util.InOutFiles(util.Arg(args, 0), ".yaml", util.Arg(args, 1), "."+name)
			var familyID uint32
			if name == "uf2" {
				var err error
				familyID, err = image.FamilyID(family)
				util.FatalErr("", err)
			}
			t := util.Load(in, strict)
			sections, err := image.Encode(t, base)
			util.FatalErr("encode", err)
			w := util.Create(out)
			defer w.Close()
			switch name {
			case "bin":
				_, err = sections.Flatten(w, pad)
				util.FatalErr("flatten", err)
			case "uf2":
				util.FatalErr("uf2", sections.WriteUF2(w, familyID, pad))
			}
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&strict, "strict", false, "treat warnings as errors")
	fs.Uint64Var(&base, "base", 0, "target `address` of the image")
	fs.Uint8Var(&pad, "pad", 0xff, "pad `byte` used to fill gaps between sections")
	if name == "uf2" {
		fs.StringVar(
			&family, "family", "absolute",
			"UF2 family `ID` (32-bit number) or a known family name:\n"+familyNames(),
		)
	}
	return cmd
}
