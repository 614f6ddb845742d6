// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "testing"

func TestRootCommand(t *testing.T) {
	root := rootCommand()
	for name := range tools {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("%s: command not registered (%v)", name, err)
			continue
		}
		if cmd.Short == "" {
			t.Errorf("%s: no description", name)
		}
	}
	if f := root.PersistentFlags().Lookup("log-level"); f == nil || f.DefValue != "warning" {
		t.Errorf("bad log-level flag")
	}
}
