// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbc

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/embeddedgo/cantools/ecuc"
)

const testDBC = `VERSION ""

BU_: ECU1 ECU2 Gateway

BO_ 256 EngineData: 8 ECU1
 SG_ Speed : 0|16@1+ (1,0) [0|65535] "rpm" ECU2

BO_ 2566848513 Diag: 8 ECU2
 SG_ Code : 0|8@1+ (1,0) [0|255] "" ECU1,Gateway

BO_ 512 Other: 8 ECU2
 SG_ X : 0|8@1+ (1,0) [0|255] "" Vector__XXX

BO_ 3221225472 VECTOR__INDEPENDENT_SIG_MSG: 0 Vector__XXX
 SG_ Orphan : 0|8@1+ (1,0) [0|255] "" ECU1
`

func TestImport(t *testing.T) {
	objs, err := Import("test.dbc", []byte(testDBC), Options{
		Node:       "ECU1",
		Controller: "CAN0",
		FirstID:    10,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []ecuc.HardwareObject{
		{ID: 10, Name: "EngineData", Type: "transmit", Controller: "CAN0", IDType: "standard", MessageID: 0x100},
		{ID: 11, Name: "Diag", Type: "receive", Controller: "CAN0", IDType: "extended", MessageID: 0x18ff0001},
	}
	if len(objs) != len(want) {
		t.Fatalf("expected %d objects, got %d", len(want), len(objs))
	}
	for i, w := range want {
		if *objs[i] != w {
			t.Errorf("%d: expected %+v, got %+v", i, w, *objs[i])
		}
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name, data, node string
	}{
		{"undeclared node", testDBC, "ECU3"},
		{"silent node", strings.Replace(testDBC, "ECU1,Gateway", "ECU1", 1), "Gateway"},
		{"syntax", "BO_ x", "ECU1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			objs, err := Import("test.dbc", []byte(tc.data), Options{Node: tc.node})
			if err == nil {
				t.Errorf("expected an error, got %d objects", len(objs))
			}
		})
	}
}

func TestWrite(t *testing.T) {
	objs, err := Import("test.dbc", []byte(testDBC), Options{Node: "Gateway", Controller: "CAN1"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, objs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "messageId: 0x18ff0001") {
		t.Errorf("message ID not written in hex:\n%s", buf.String())
	}
	var doc struct {
		HardwareObjects []*ecuc.HardwareObject `yaml:"hardwareObjects"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.HardwareObjects) != 1 || *doc.HardwareObjects[0] != *objs[0] {
		t.Errorf("round trip mismatch:\n%s", buf.String())
	}
}
