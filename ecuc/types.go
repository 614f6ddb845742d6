// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ecuc

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Uint accepts decimal, 0x hexadecimal, 0o octal and 0b binary notation.
type Uint uint

func (u *Uint) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 0)
	*u = Uint(v)
	return err
}

func (u *Uint) UnmarshalYAML(n *yaml.Node) error {
	v, err := scalar(n, 0)
	*u = Uint(v)
	return err
}

// MarshalYAML writes values above 255 in hexadecimal.
func (u Uint) MarshalYAML() (any, error) {
	if u > 0xff {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: fmt.Sprintf("%#x", uint(u)),
		}, nil
	}
	return uint(u), nil
}

type Uint64 uint64

func (u *Uint64) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	*u = Uint64(v)
	return err
}

func (u *Uint64) UnmarshalYAML(n *yaml.Node) error {
	v, err := scalar(n, 64)
	*u = Uint64(v)
	return err
}

func scalar(n *yaml.Node, bits int) (uint64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected an integer", n.Line)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(n.Value), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}
