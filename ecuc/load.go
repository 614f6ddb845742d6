// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ecuc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Format of a configuration document.
type Format int

const (
	YAML Format = iota
	XML
)

// MinVersion is the oldest supported document version.
const MinVersion = "v1.0.0"

// FormatOf infers the document format from the file name extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".xml", ".arxml":
		return XML, nil
	}
	return 0, fmt.Errorf("%s: unsupported file type", name)
}

// Load reads and parses a configuration document.
func Load(name string) (*Document, error) {
	f, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Parse decodes a document and checks its version.
func Parse(data []byte, f Format) (*Document, error) {
	doc := new(Document)
	var err error
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(doc)
	case XML:
		err = xml.Unmarshal(data, doc)
	default:
		err = fmt.Errorf("unknown format %d", f)
	}
	if err != nil {
		return nil, err
	}
	if err = checkVersion(doc.Version); err != nil {
		return nil, err
	}
	return doc, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("missing document version")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("bad document version %q", v)
	}
	if semver.Major(v) != semver.Major(MinVersion) || semver.Compare(v, MinVersion) < 0 {
		return fmt.Errorf(
			"unsupported document version %s (want %s.x.x >= %s)",
			v, semver.Major(MinVersion), MinVersion,
		)
	}
	return nil
}
