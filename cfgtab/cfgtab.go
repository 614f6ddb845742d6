// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfgtab turns a resolved CAN configuration into the static tables
// used by the driver at run time.
//
// Every controller is processed independently: its mailboxes are allocated,
// its baud rate profiles resolved and its RX FIFO filter table encoded. The
// per-controller results are then merged into one table with the mailbox
// descriptors in dispatch order, the filter masks, the hardware object handle
// lookup and the derived constants.
package cfgtab

import (
	"errors"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/embeddedgo/cantools/bittiming"
	"github.com/embeddedgo/cantools/canconf"
	"github.com/embeddedgo/cantools/diag"
	"github.com/embeddedgo/cantools/mailbox"
)

// Range is a slice of the mailbox descriptor table.
type Range struct {
	First, Count int
}

// Controller is the controller descriptor.
type Controller struct {
	ID               int
	Name             string
	Activated        bool
	FD               bool
	MaxMailboxes     int
	MaxMBCount       int
	FirstUserMailbox int
	HRH              Range // receive descriptors
	HTH              Range // transmit descriptors
	MCR              uint32
	CTRL1            uint32 // default profile timing and option bits
	FDCTRL           uint32
	Profiles         []bittiming.Profile
	DefaultProfile   int
	FifoMode         canconf.AcceptanceMode
	RxFifo           []mailbox.Element
	Notifications    canconf.Notifications
	Allocation       *mailbox.Allocation
}

// Handle maps a hardware object handle to its mailbox descriptors.
type Handle struct {
	Object      int
	Descriptors Range
}

// Constants are the derived configuration constants.
type Constants struct {
	MaxMBCount          int // over all controllers
	MaxFilterCount      int // RX FIFO filters over all controllers
	MaxBaudrateCount    int
	ControllerCount     int
	HardwareObjectCount int
	DescriptorCount     int
	FilterMaskCount     int
}

// Table is the complete generated configuration.
type Table struct {
	Features    canconf.FeatureSet
	Controllers []Controller
	Mailboxes   []mailbox.Descriptor
	FilterMasks []uint32
	Handles     []Handle // sorted by object
	Constants   Constants
	Warnings    diag.Warnings
}

// Options control the generation.
type Options struct {
	Strict bool // treat warnings as errors
}

type ctrlResult struct {
	desc     Controller
	descs    []mailbox.Descriptor
	warnings diag.Warnings
	err      error
}

// Generate is Options{}.Generate(cfg).
func Generate(cfg *canconf.Config) (*Table, error) {
	return Options{}.Generate(cfg)
}

// Generate builds the configuration table. Any fatal diagnostic aborts the
// generation and no table is returned. Warnings are collected in
// Table.Warnings or, in strict mode, returned as an error that matches
// diag.ErrWarning.
func (o Options) Generate(cfg *canconf.Config) (*Table, error) {
	results := make([]ctrlResult, len(cfg.Controllers))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range cfg.Controllers {
		i := i
		g.Go(func() error {
			r := &results[i]
			r.desc, r.descs, r.warnings, r.err = controller(cfg, i)
			return r.err
		})
	}
	if g.Wait() != nil {
		var errs []error
		for _, r := range results {
			if r.err != nil {
				errs = append(errs, r.err)
			}
		}
		return nil, errors.Join(errs...)
	}

	t := &Table{Features: cfg.Features}
	for _, r := range results {
		t.Controllers = append(t.Controllers, r.desc)
		t.Mailboxes = append(t.Mailboxes, r.descs...)
		t.Warnings = append(t.Warnings, r.warnings...)
	}
	mailbox.Order(t.Mailboxes)
	if err := mailbox.CheckOrder(t.Mailboxes); err != nil {
		return nil, err
	}
	t.FilterMasks = mailbox.FilterMasks(t.Mailboxes)
	t.ranges()
	t.handles()
	t.constants(cfg)
	if o.Strict && len(t.Warnings) != 0 {
		return nil, fmt.Errorf("strict mode: %w", t.Warnings.Err())
	}
	return t, nil
}

func controller(cfg *canconf.Config, i int) (d Controller, descs []mailbox.Descriptor, ws diag.Warnings, err error) {
	c := &cfg.Controllers[i]
	d = Controller{
		ID:             c.ID,
		Name:           c.Name,
		Activated:      c.Activated,
		FD:             c.FD,
		MaxMailboxes:   c.MaxMailboxes,
		DefaultProfile: c.DefaultBaudrate,
		Notifications:  c.Notifications,
	}
	objs := cfg.ObjectsOf(i)
	a, err := mailbox.Allocate(c, objs)
	if err != nil {
		return
	}
	d.Allocation = a
	d.MaxMBCount = a.MaxMBCount
	d.FirstUserMailbox = a.FirstUser
	if descs, err = mailbox.Describe(objs, a); err != nil {
		return
	}
	for k := range c.Baudrates {
		var p bittiming.Profile
		p, err = bittiming.ResolveProfile(c, &c.Baudrates[k], a.MaxMBCount)
		ws = append(ws, p.Warnings...)
		if err != nil {
			return
		}
		d.Profiles = append(d.Profiles, p)
	}
	if c.RxFifo != nil {
		d.FifoMode = c.RxFifo.Mode
		if d.RxFifo, err = mailbox.BuildRxFifoTable(c); err != nil {
			return
		}
	}
	d.MCR = mcr(c, a.MaxMBCount)
	d.CTRL1 = ctrl1Options(c)
	if len(d.Profiles) != 0 {
		def := &d.Profiles[d.DefaultProfile]
		d.CTRL1 |= def.Main.Nominal.Registers.CTRL1()
		var (
			tdc    bool
			tdcOff uint8
		)
		if fd := def.Main.FD; fd != nil {
			tdc, tdcOff = fd.Registers.TDCEN, fd.Registers.TDCOFF
		}
		d.FDCTRL = fdctrl(c, def.BRS, tdc, tdcOff)
	}
	log.WithField("ctrl", c.Name).Debugf(
		"%d descriptors, %d profiles, %d warnings",
		len(descs), len(d.Profiles), len(ws),
	)
	return
}

func (t *Table) ranges() {
	for i := range t.Controllers {
		c := &t.Controllers[i]
		c.HRH = Range{First: len(t.Mailboxes)}
		c.HTH = Range{First: len(t.Mailboxes)}
		first := [2]bool{}
		for k, m := range t.Mailboxes {
			if m.Controller != c.ID {
				continue
			}
			r := &c.HRH
			if m.Type == canconf.Transmit {
				r = &c.HTH
			}
			if !first[m.Type] {
				first[m.Type] = true
				r.First = k
			}
			r.Count++
		}
	}
}

func (t *Table) handles() {
	idx := make(map[int]int)
	for k, m := range t.Mailboxes {
		i, ok := idx[m.Object]
		if !ok {
			idx[m.Object] = len(t.Handles)
			t.Handles = append(t.Handles, Handle{
				Object:      m.Object,
				Descriptors: Range{First: k, Count: 1},
			})
			continue
		}
		t.Handles[i].Descriptors.Count++
	}
	slices.SortFunc(t.Handles, func(a, b Handle) int {
		return a.Object - b.Object
	})
}

func (t *Table) constants(cfg *canconf.Config) {
	k := &t.Constants
	k.ControllerCount = len(cfg.Controllers)
	k.HardwareObjectCount = len(cfg.HardwareObjects)
	k.DescriptorCount = len(t.Mailboxes)
	k.FilterMaskCount = len(t.FilterMasks)
	for i := range cfg.Controllers {
		c := &cfg.Controllers[i]
		k.MaxMBCount = max(k.MaxMBCount, t.Controllers[i].MaxMBCount)
		k.MaxBaudrateCount = max(k.MaxBaudrateCount, len(c.Baudrates))
		if c.RxFifo != nil {
			k.MaxFilterCount = max(k.MaxFilterCount, c.RxFifo.FiltersNumber)
		}
	}
}

// Handle returns the descriptors of the hardware object with the given ID.
func (t *Table) Handle(object int) ([]mailbox.Descriptor, bool) {
	for _, h := range t.Handles {
		if h.Object == object {
			r := h.Descriptors
			return t.Mailboxes[r.First : r.First+r.Count], true
		}
	}
	return nil, false
}
