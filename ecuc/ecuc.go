// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ecuc describes the CAN driver configuration document as written by
// the user. The document can be stored in YAML or XML. Cross references are
// kept as names and numbers; they are resolved by the canconf package.
package ecuc

import "encoding/xml"

type Document struct {
	XMLName         xml.Name          `xml:"CanConfig" yaml:"-"`
	Version         string            `xml:"version,attr" yaml:"version"`
	Features        Features          `xml:"Features" yaml:"features"`
	Controllers     []*Controller     `xml:"Controllers>Controller" yaml:"controllers"`
	HardwareObjects []*HardwareObject `xml:"HardwareObjects>HardwareObject" yaml:"hardwareObjects"`
}

type Features struct {
	FD                  bool `xml:"fd" yaml:"fd"`
	CBT                 bool `xml:"cbt" yaml:"cbt"`
	RxFifo              bool `xml:"rxFifo" yaml:"rxFifo"`
	DualClock           bool `xml:"dualClock" yaml:"dualClock"`
	TriggerTransmit     bool `xml:"triggerTransmit" yaml:"triggerTransmit"`
	MultiplexedTransmit bool `xml:"multiplexedTransmit" yaml:"multiplexedTransmit"`
}

type Controller struct {
	ID              Uint          `xml:"id" yaml:"id"`
	Name            string        `xml:"name" yaml:"name"`
	Activated       *bool         `xml:"activated" yaml:"activated"`
	MaxMailboxes    *Uint         `xml:"maxMailboxes" yaml:"maxMailboxes"`
	ClockHz         Uint64        `xml:"clockHz" yaml:"clockHz"`
	AltClockHz      *Uint64       `xml:"altClockHz" yaml:"altClockHz"`
	ClockSource     string        `xml:"clockSource" yaml:"clockSource"`
	FD              bool          `xml:"fd" yaml:"fd"`
	LoopBack        bool          `xml:"loopBack" yaml:"loopBack"`
	ListenOnly      bool          `xml:"listenOnly" yaml:"listenOnly"`
	BusOffRecovery  bool          `xml:"busOffRecovery" yaml:"busOffRecovery"`
	LocalPriority   bool          `xml:"localPriority" yaml:"localPriority"`
	RamBlock        *RamBlock     `xml:"ramBlock" yaml:"ramBlock"`
	RxFifo          *RxFifo       `xml:"rxFifo" yaml:"rxFifo"`
	Baudrates       []*Baudrate   `xml:"baudrates>baudrate" yaml:"baudrates"`
	DefaultBaudrate *Uint         `xml:"defaultBaudrate" yaml:"defaultBaudrate"`
	Notifications   Notifications `xml:"notifications" yaml:"notifications"`
}

type RamBlock struct {
	Mode    string `xml:"mode" yaml:"mode"` // "shared" or "perRegion"
	Payload *Uint  `xml:"payload" yaml:"payload"`
	Regions []Uint `xml:"region" yaml:"regions"`
}

type RxFifo struct {
	Enabled        bool      `xml:"enabled" yaml:"enabled"`
	FiltersNumber  Uint      `xml:"filtersNumber" yaml:"filtersNumber"`
	AcceptanceMode string    `xml:"acceptanceMode" yaml:"acceptanceMode"`
	IDType         string    `xml:"idType" yaml:"idType"`
	Filters        []*Filter `xml:"filter" yaml:"filters"`
}

type Filter struct {
	Value Uint64 `xml:"value" yaml:"value"`
	Mask  Uint64 `xml:"mask" yaml:"mask"`
}

type Notification struct {
	Enabled  bool   `xml:"enabled" yaml:"enabled"`
	Callback string `xml:"callback" yaml:"callback"`
}

type Notifications struct {
	BusOff         Notification `xml:"busOff" yaml:"busOff"`
	Error          Notification `xml:"error" yaml:"error"`
	RxFifoOverflow Notification `xml:"rxFifoOverflow" yaml:"rxFifoOverflow"`
	RxFifoWarning  Notification `xml:"rxFifoWarning" yaml:"rxFifoWarning"`
}

type Baudrate struct {
	ID            Uint       `xml:"id" yaml:"id"`
	BaudKbps      Uint       `xml:"baudKbps" yaml:"baudKbps"`
	Prescaler     Uint       `xml:"prescaler" yaml:"prescaler"`
	PropSeg       Uint       `xml:"propSeg" yaml:"propSeg"`
	Seg1          Uint       `xml:"seg1" yaml:"seg1"`
	Seg2          Uint       `xml:"seg2" yaml:"seg2"`
	SyncJumpWidth Uint       `xml:"syncJumpWidth" yaml:"syncJumpWidth"`
	Auto          *Auto      `xml:"auto" yaml:"auto"`
	FD            *FD        `xml:"fd" yaml:"fd"`
	CBT           *CBT       `xml:"cbt" yaml:"cbt"`
	Alternate     *Alternate `xml:"alternate" yaml:"alternate"`
}

// Auto requests segment derivation from the physical layer parameters.
type Auto struct {
	BusLengthM         Uint `xml:"busLengthM" yaml:"busLengthM"`
	TransceiverDelayNs Uint `xml:"transceiverDelayNs" yaml:"transceiverDelayNs"`
}

type FD struct {
	BaudKbps      Uint  `xml:"baudKbps" yaml:"baudKbps"`
	Prescaler     Uint  `xml:"prescaler" yaml:"prescaler"`
	PropSeg       Uint  `xml:"propSeg" yaml:"propSeg"`
	Seg1          Uint  `xml:"seg1" yaml:"seg1"`
	Seg2          Uint  `xml:"seg2" yaml:"seg2"`
	SyncJumpWidth Uint  `xml:"syncJumpWidth" yaml:"syncJumpWidth"`
	BitRateSwitch bool  `xml:"bitRateSwitch" yaml:"bitRateSwitch"`
	TdcOffset     *Uint `xml:"tdcOffset" yaml:"tdcOffset"`
}

type CBT struct {
	Prescaler     Uint `xml:"prescaler" yaml:"prescaler"`
	PropSeg       Uint `xml:"propSeg" yaml:"propSeg"`
	Seg1          Uint `xml:"seg1" yaml:"seg1"`
	Seg2          Uint `xml:"seg2" yaml:"seg2"`
	SyncJumpWidth Uint `xml:"syncJumpWidth" yaml:"syncJumpWidth"`
}

// Alternate describes the prescalers used when the controller runs from the
// alternate clock.
type Alternate struct {
	Prescaler    Uint  `xml:"prescaler" yaml:"prescaler"`
	FDPrescaler  *Uint `xml:"fdPrescaler" yaml:"fdPrescaler"`
	CBTPrescaler *Uint `xml:"cbtPrescaler" yaml:"cbtPrescaler"`
}

type HardwareObject struct {
	ID              Uint   `xml:"id" yaml:"id"`
	Name            string `xml:"name" yaml:"name"`
	Type            string `xml:"type" yaml:"type"` // "receive" or "transmit"
	Controller      string `xml:"controller" yaml:"controller"`
	IDType          string `xml:"idType" yaml:"idType"`
	MessageID       Uint   `xml:"messageId" yaml:"messageId"`
	FilterMask      *Uint  `xml:"filterMask" yaml:"filterMask,omitempty"`
	Priority        Uint   `xml:"priority" yaml:"priority,omitempty"`
	Multiplex       *Uint  `xml:"multiplex" yaml:"multiplex,omitempty"`
	TriggerTransmit bool   `xml:"triggerTransmit" yaml:"triggerTransmit,omitempty"`
	FDPadding       *Uint  `xml:"fdPadding" yaml:"fdPadding,omitempty"`
	RxFifo          bool   `xml:"rxFifo" yaml:"rxFifo,omitempty"`
}
