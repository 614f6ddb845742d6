// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gosrc writes the CAN configuration table as Go source. The
// generated package is self-contained: it declares the table types and
// refers to the notification callbacks by name, so they must be defined in
// the same package.
package gosrc

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/cfgtab"
)

const header = "// Code generated by cangen; DO NOT EDIT.\n\n"

var funcs = template.FuncMap{
	"hex": func(v uint32) string { return fmt.Sprintf("%#08x", v) },
	"callback": func(n canconf.Notification) string {
		if !n.Enabled || n.Callback == "" {
			return "nil"
		}
		return n.Callback
	},
	"receive": func(t canconf.ObjectType) bool { return t == canconf.Receive },
}

var tmpl = template.Must(template.New("cfg").Funcs(funcs).Parse(src))

const src = `package {{.Package}}

import "sort"

const (
	MaxMBCount          = {{.T.Constants.MaxMBCount}}
	MaxFilterCount      = {{.T.Constants.MaxFilterCount}}
	MaxBaudrateCount    = {{.T.Constants.MaxBaudrateCount}}
	ControllerCount     = {{.T.Constants.ControllerCount}}
	HardwareObjectCount = {{.T.Constants.HardwareObjectCount}}
	MailboxCount        = {{.T.Constants.DescriptorCount}}
	FilterMaskCount     = {{.T.Constants.FilterMaskCount}}
)

type IDType uint8

const (
	Standard IDType = iota
	Extended
	Mixed
)

type Profile struct {
	ID         uint16
	BaudKbps   uint32
	FDBaudKbps uint32
	BRS        bool
	CTRL1      uint32
	FDCBT      uint32
	CBT        uint32

	// Alternate clock timings, valid if HasAlt.
	HasAlt   bool
	AltCTRL1 uint32
	AltFDCBT uint32
	AltCBT   uint32
}

// Range is a range of indexes in Mailboxes.
type Range struct {
	First, Count uint16
}

type Controller struct {
	ID             uint8
	Activated      bool
	FD             bool
	MaxMBCount     uint8
	FirstUserMB    uint8
	HRH            Range
	HTH            Range
	MCR            uint32
	CTRL1          uint32
	FDCTRL         uint32
	Profiles       []Profile
	DefaultProfile uint8
	RxFifo         [][2]uint32 // ID filter table: value, mask
	BusOff         func()
	Error          func()
	RxFifoOverflow func()
	RxFifoWarning  func()
}

type Mailbox struct {
	Object     uint16
	Instance   uint8
	Controller uint8
	Receive    bool
	IDType     IDType
	MessageID  uint32
	Priority   uint8
	Address    uint16
	Index      uint8
	Payload    uint8
	Fifo       bool
	Trigger    bool
	Padding    uint8
	MaskIndex  int16
}

type Handle struct {
	Object    uint16
	Mailboxes Range
}

var Controllers = [ControllerCount]Controller{
{{- range .T.Controllers}}
	{
		ID:             {{.ID}},
		Activated:      {{.Activated}},
		FD:             {{.FD}},
		MaxMBCount:     {{.MaxMBCount}},
		FirstUserMB:    {{.FirstUserMailbox}},
		HRH:            Range{ {{- .HRH.First}}, {{.HRH.Count -}} },
		HTH:            Range{ {{- .HTH.First}}, {{.HTH.Count -}} },
		MCR:            {{hex .MCR}},
		CTRL1:          {{hex .CTRL1}},
		FDCTRL:         {{hex .FDCTRL}},
		DefaultProfile: {{.DefaultProfile}},
		Profiles: []Profile{
		{{- range .Profiles}}
			{
				ID:         {{printf "%#x" .ID}},
				BaudKbps:   {{.BaudKbps}},
				FDBaudKbps: {{.FDBaudKbps}},
				BRS:        {{.BRS}},
				CTRL1:      {{hex .Main.Nominal.Registers.CTRL1}},
				{{- with .Main.FD}}
				FDCBT:      {{hex .Registers.FDCBT}},
				{{- end}}
				{{- with .Main.CBT}}
				CBT:        {{hex .Registers.CBT}},
				{{- end}}
				{{- with .Alt}}
				HasAlt:     true,
				AltCTRL1:   {{hex .Nominal.Registers.CTRL1}},
				{{- with .FD}}
				AltFDCBT:   {{hex .Registers.FDCBT}},
				{{- end}}
				{{- with .CBT}}
				AltCBT:     {{hex .Registers.CBT}},
				{{- end}}
				{{- end}}
			},
		{{- end}}
		},
		{{- if .RxFifo}}
		RxFifo: [][2]uint32{
		{{- range .RxFifo}}
			{ {{- hex .Value}}, {{hex .Mask -}} },
		{{- end}}
		},
		{{- end}}
		BusOff:         {{callback .Notifications.BusOff}},
		Error:          {{callback .Notifications.Error}},
		RxFifoOverflow: {{callback .Notifications.RxFifoOverflow}},
		RxFifoWarning:  {{callback .Notifications.RxFifoWarning}},
	},
{{- end}}
}

var Mailboxes = [MailboxCount]Mailbox{
{{- range .T.Mailboxes}}
	{Object: {{.Object}}, Instance: {{.Instance}}, Controller: {{.Controller}}, Receive: {{receive .Type}}, IDType: {{printf "%d" .IDType}}, MessageID: {{printf "%#x" .MessageID}}, Priority: {{.Priority}}, Address: {{printf "%#x" .Address}}, Index: {{.Index}}, Payload: {{.Payload}}, Fifo: {{.Fifo}}, Trigger: {{.Trigger}}, Padding: {{printf "%#x" .Padding}}, MaskIndex: {{.MaskIndex}}},
{{- end}}
}

var FilterMasks = [FilterMaskCount]uint32{
{{- range .T.FilterMasks}}
	{{hex .}},
{{- end}}
}

// Handles are sorted by Object.
var Handles = [HardwareObjectCount]Handle{
{{- range .T.Handles}}
	{ {{- .Object}}, Range{ {{- .Descriptors.First}}, {{.Descriptors.Count -}} } },
{{- end}}
}

// HandleOf returns the mailboxes of the hardware object with the given ID.
func HandleOf(object int) []Mailbox {
	i := sort.Search(len(Handles), func(i int) bool {
		return int(Handles[i].Object) >= object
	})
	if i == len(Handles) || int(Handles[i].Object) != object {
		return nil
	}
	r := Handles[i].Mailboxes
	return Mailboxes[r.First : r.First+r.Count]
}
`

// Write writes t to w as the source of the Go package pkg. The name is used
// in formatting error messages only.
func Write(w io.Writer, t *cfgtab.Table, pkg, name string) error {
	if !token.IsIdentifier(pkg) {
		return fmt.Errorf("gosrc: bad package name %q", pkg)
	}
	buf := bytes.NewBufferString(header)
	err := tmpl.Execute(buf, struct {
		Package string
		T       *cfgtab.Table
	}{pkg, t})
	if err != nil {
		return err
	}
	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return fmt.Errorf("gosrc: %w", err)
	}
	_, err = w.Write(out)
	return err
}
