// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embeddedgo/cantools/cangen/internal/gosrc"
	"github.com/embeddedgo/cantools/cangen/internal/util"
)

const Descr = "generate the Go source of the configuration table"

func Command() *cobra.Command {
	var (
		strict bool
		pkg    string
	)
	cmd := &cobra.Command{
		Use:   "gen [CONFIG [GO]]",
		Short: Descr,
		Args:  cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			in, out := util.InOutFiles(util.Arg(args, 0), ".yaml", util.Arg(args, 1), ".go")
			if pkg == "" {
				if pkg = packageName(out); pkg == "" {
					util.Warn("gen: cannot infer the package name, using cancfg")
					pkg = "cancfg"
				}
			}
			t := util.Load(in, strict)
			w := util.Create(out)
			defer w.Close()
			util.FatalErr("gen", gosrc.Write(w, t, pkg, out))
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringVarP(
		&pkg, "package", "p", "",
		"package `name` (default: name of the output directory)",
	)
	return cmd
}

// packageName infers the package name from the directory of the output file.
func packageName(out string) string {
	dir := filepath.Dir(out)
	if dir == "." {
		return util.DirName()
	}
	return strings.ReplaceAll(filepath.Base(dir), "-", "_")
}
