// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/cfgtab"
	"github.com/embeddedgo/cantools/ecuc"
)

func Warn(f string, args ...any) {
	log.Warnf(f, args...)
}

func Fatal(f string, args ...any) {
	log.Fatalf(f, args...)
}

// FatalErr logs an error description and exits the program if the err != nil.
// Every error joined in err is logged in a separate line.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	errs := []error{err}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	}
	for _, e := range errs {
		if what != "" {
			log.Error(what + ": " + e.Error())
		} else {
			log.Error(e)
		}
	}
	log.Exit(1)
}

// SetLogLevel sets the level of the standard logger by name.
func SetLogLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// DirName returns the last element of the path to the current working
// directory.
func DirName() string {
	dir, err := os.Getwd()
	FatalErr("", err)
	dir = filepath.Base(dir)
	if dir == "/" || dir == "." {
		dir = ""
	}
	return dir
}

// ModulePath returns the module path declared in the go.mod file content.
func ModulePath(gomod []byte) (string, error) {
	path := modfile.ModulePath(gomod)
	if path == "" {
		return "", errors.New("there is no module directive in go.mod")
	}
	return path, nil
}

// Module returns the path of the main module.
func Module() string {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	FatalErr("", err)
	gomod := filepath.Clean(string(bytes.TrimRightFunc(out, unicode.IsSpace)))
	if gomod == "" || gomod == "." || gomod == os.DevNull {
		Fatal("go.mod file not found in current directory or any parent directory")
	}
	data, err := os.ReadFile(gomod)
	FatalErr("", err)
	path, err := ModulePath(data)
	FatalErr(gomod, err)
	return path
}

// InOutFiles infers the name of the input and output files from the name of the
// current working directory if the inName is an empty strings.
func InOutFiles(inName, inSuffix, outName, outSuffix string) (string, string) {
	if inName == "" {
		fs, err := os.Stat("go.mod")
		if err != nil || !fs.Mode().IsRegular() {
			inName = DirName()
		} else {
			inName = filepath.Base(Module())
		}
		inName += inSuffix
	}
	if outName == "" {
		outName = strings.TrimSuffix(inName, filepath.Ext(inName)) + outSuffix
	}
	return inName, outName
}

// Load reads the configuration document, resolves it and generates the
// configuration table. Warnings are logged. Any error is fatal.
func Load(name string, strict bool) *cfgtab.Table {
	doc, err := ecuc.Load(name)
	FatalErr("load", err)
	cfg, err := canconf.Resolve(doc)
	FatalErr(name, err)
	t, err := cfgtab.Options{Strict: strict}.Generate(cfg)
	FatalErr(name, err)
	for _, w := range t.Warnings {
		log.WithField("file", name).Warn(w)
	}
	log.WithField("file", name).Infof(
		"%d controllers, %d mailboxes, %d filter masks",
		t.Constants.ControllerCount, t.Constants.DescriptorCount,
		t.Constants.FilterMaskCount,
	)
	return t
}

// Arg returns args[i] or an empty string if there is no such argument.
func Arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// Create creates the output file. The "-" name means the standard output.
func Create(name string) io.WriteCloser {
	if name == "-" {
		return nopCloser{os.Stdout}
	}
	f, err := os.Create(name)
	FatalErr("", err)
	return f
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
