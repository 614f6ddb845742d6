// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Cangen generates the static CAN driver configuration of a FlexCAN based
// MCU from a YAML or XML configuration document.
//
// Usage:
//
//	cangen COMMAND [OPTIONS] [ARGUMENTS]
//
// The configuration file name defaults to the name of the current module or
// directory with the .yaml suffix. The output file name is derived from the
// configuration file name.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/embeddedgo/cantools/cangen/internal/cmd/bin"
	"github.com/embeddedgo/cantools/cangen/internal/cmd/check"
	"github.com/embeddedgo/cantools/cangen/internal/cmd/dbc"
	"github.com/embeddedgo/cantools/cangen/internal/cmd/gen"
	"github.com/embeddedgo/cantools/cangen/internal/cmd/hex"
	"github.com/embeddedgo/cantools/cangen/internal/util"
)

var tools = map[string]func() *cobra.Command{
	"bin":   func() *cobra.Command { return bin.Command("bin") },
	"check": check.Command,
	"dbc":   dbc.Command,
	"gen":   gen.Command,
	"hex":   hex.Command,
	"uf2":   func() *cobra.Command { return bin.Command("uf2") },
}

func rootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "cangen",
		Short:         "CAN mailbox and bit timing configuration generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.SetLogLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(
		&logLevel, "log-level", "warning",
		"logging `level`: panic, fatal, error, warning, info, debug, trace",
	)
	names := maps.Keys(tools)
	slices.Sort(names)
	for _, name := range names {
		root.AddCommand(tools[name]())
	}
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
