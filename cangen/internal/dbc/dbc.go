// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbc derives the hardware objects of one ECU node from a DBC
// communication database.
package dbc

import (
	"fmt"
	"io"

	"go.einride.tech/can/pkg/dbc"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/embeddedgo/cantools/ecuc"
)

// Pseudo message that groups signals not assigned to any message.
const independentSignals = "VECTOR__INDEPENDENT_SIG_MSG"

type Options struct {
	Node       string // ECU node name as declared in BU_
	Controller string // controller name used by all objects
	FirstID    int    // ID of the first hardware object
}

func receivedBy(m *dbc.MessageDef, node dbc.Identifier) bool {
	for _, s := range m.Signals {
		if slices.Contains(s.Receivers, node) {
			return true
		}
	}
	return false
}

// Import parses the DBC data and returns a hardware object for every
// message transmitted or received by the node. Objects follow the message
// order of the database.
func Import(name string, data []byte, o Options) ([]*ecuc.HardwareObject, error) {
	p := dbc.NewParser(name, data)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	node := dbc.Identifier(o.Node)
	var (
		objs  []*ecuc.HardwareObject
		known bool
	)
	for _, d := range p.Defs() {
		switch d := d.(type) {
		case *dbc.NodesDef:
			known = known || slices.Contains(d.NodeNames, node)
		case *dbc.MessageDef:
			if d.Name == independentSignals {
				continue
			}
			ho := &ecuc.HardwareObject{
				ID:         ecuc.Uint(o.FirstID + len(objs)),
				Name:       string(d.Name),
				Controller: o.Controller,
				IDType:     "standard",
				MessageID:  ecuc.Uint(d.MessageID.ToCAN()),
			}
			if d.MessageID.IsExtended() {
				ho.IDType = "extended"
			}
			switch {
			case d.Transmitter == node:
				ho.Type = "transmit"
			case receivedBy(d, node):
				ho.Type = "receive"
			default:
				continue
			}
			objs = append(objs, ho)
		}
	}
	if !known {
		return nil, fmt.Errorf("%s: node %s not declared", name, o.Node)
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("%s: node %s neither sends nor receives", name, o.Node)
	}
	return objs, nil
}

// Write writes objs to w as the hardwareObjects section of a configuration
// document.
func Write(w io.Writer, objs []*ecuc.HardwareObject) error {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	err := e.Encode(struct {
		HardwareObjects []*ecuc.HardwareObject `yaml:"hardwareObjects"`
	}{objs})
	if err != nil {
		return err
	}
	return e.Close()
}
