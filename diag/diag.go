// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag defines the diagnostics reported while a CAN configuration is
// validated and turned into static tables.
//
// Every diagnostic is either fatal or a warning. Fatal diagnostics abort the
// generation and no table is produced. Warnings (Inconsistent) are collected
// and the declared user values are used.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFatal   = errors.New("fatal configuration error")
	ErrWarning = errors.New("configuration warning")
)

// Bounds is an inclusive range of valid values.
type Bounds struct {
	Min, Max int64
}

func (b Bounds) Contains(v int64) bool { return b.Min <= v && v <= b.Max }

func (b Bounds) String() string {
	if b.Max == b.Min {
		return fmt.Sprintf("[%d]", b.Min)
	}
	return fmt.Sprintf("[%d,%d]", b.Min, b.Max)
}

// OutOfRange reports a computed or declared numeric value that falls outside
// the valid range.
type OutOfRange struct {
	Where     string // owner of the parameter, e.g. "CAN0/500k"
	Parameter string
	Value     int64
	Bounds    Bounds
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf(
		"%s: %s = %d out of range %v", where(e.Where), e.Parameter, e.Value,
		e.Bounds,
	)
}

func (e *OutOfRange) Is(target error) bool { return target == ErrFatal }

// Inconsistent reports two independently derived values that disagree. It is
// a warning: the user declared value wins.
type Inconsistent struct {
	Where       string
	Description string
}

func (e *Inconsistent) Error() string {
	return where(e.Where) + ": " + e.Description
}

func (e *Inconsistent) Is(target error) bool { return target == ErrWarning }

// CapacityExceeded reports hardware objects that do not fit in the mailbox
// memory of a controller.
type CapacityExceeded struct {
	Controller string
	Requested  int
	Available  int
	Detail     string
}

func (e *CapacityExceeded) Error() string {
	s := fmt.Sprintf(
		"%s: capacity exceeded: requested %d, available %d",
		where(e.Controller), e.Requested, e.Available,
	)
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

func (e *CapacityExceeded) Is(target error) bool { return target == ErrFatal }

// OrderingViolation reports a dangling reference, an overlapping ID space or
// a mailbox sequence that breaks the dispatch order.
type OrderingViolation struct {
	Where       string
	Description string
}

func (e *OrderingViolation) Error() string {
	return where(e.Where) + ": ordering violation: " + e.Description
}

func (e *OrderingViolation) Is(target error) bool { return target == ErrFatal }

// Invalid reports a configuration that is structurally wrong: a feature used
// while disabled, a missing callback, a filter table of the wrong length.
type Invalid struct {
	Where       string
	Parameter   string
	Description string
}

func (e *Invalid) Error() string {
	if e.Parameter == "" {
		return where(e.Where) + ": " + e.Description
	}
	return where(e.Where) + ": " + e.Parameter + ": " + e.Description
}

func (e *Invalid) Is(target error) bool { return target == ErrFatal }

func where(w string) string {
	if w == "" {
		return "config"
	}
	return w
}

// Warnings is an ordered list of non-fatal diagnostics.
type Warnings []*Inconsistent

// Add appends a warning built from the format and arguments.
func (ws *Warnings) Add(where, format string, args ...any) {
	*ws = append(*ws, &Inconsistent{where, fmt.Sprintf(format, args...)})
}

// Err returns all warnings joined into one error or nil if there are none.
// The returned error matches ErrWarning.
func (ws Warnings) Err() error {
	if len(ws) == 0 {
		return nil
	}
	errs := make([]error, len(ws))
	for i, w := range ws {
		errs[i] = w
	}
	return errors.Join(errs...)
}

func (ws Warnings) String() string {
	var sb strings.Builder
	for _, w := range ws {
		sb.WriteString(w.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// IsFatal reports whether err contains at least one fatal diagnostic.
func IsFatal(err error) bool { return errors.Is(err, ErrFatal) }
