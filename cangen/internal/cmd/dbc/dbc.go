// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbc

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/embeddedgo/cantools/cangen/internal/dbc"
	"github.com/embeddedgo/cantools/cangen/internal/util"
)

const Descr = "derive the hardware objects of an ECU node from a DBC file"

func Command() *cobra.Command {
	var o dbc.Options
	cmd := &cobra.Command{
		Use:   "dbc [DBC [YAML]]",
		Short: Descr,
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			in, out := util.InOutFiles(util.Arg(args, 0), ".dbc", util.Arg(args, 1), ".yaml")
			if o.Node == "" {
				util.Fatal("dbc: no node specified")
			}
			data, err := os.ReadFile(in)
			util.FatalErr("", err)
			objs, err := dbc.Import(in, data, o)
			util.FatalErr("", err)
			log.WithField("file", in).Infof("%d hardware objects for %s", len(objs), o.Node)
			w := util.Create(out)
			defer w.Close()
			util.FatalErr("", dbc.Write(w, objs))
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.Node, "node", "n", "", "ECU node `name`")
	fs.StringVarP(&o.Controller, "controller", "c", "CAN0", "controller `name` used by all objects")
	fs.IntVar(&o.FirstID, "first-id", 0, "`ID` of the first hardware object")
	return cmd
}
