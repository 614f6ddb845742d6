// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diag

import "golang.org/x/exp/constraints"

// Range returns an *OutOfRange error if v is not within [min, max].
func Range[T constraints.Integer](where, param string, v T, min, max int64) error {
	b := Bounds{min, max}
	if b.Contains(int64(v)) {
		return nil
	}
	return &OutOfRange{Where: where, Parameter: param, Value: int64(v), Bounds: b}
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
