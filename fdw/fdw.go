// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package fdw exposes CFF tables to a host query executor through a
// foreign-data-wrapper style contract: the host pushes down projected
// columns, conjunctive quals and a LIMIT clause, then pulls rows one at
// a time.
package fdw

import (
	"errors"

	"github.com/iamkroot/cff"
)

// ErrNoFilename is returned by BeginScan when the required "filename"
// table option is missing.
var ErrNoFilename = errors.New(`required table option "filename" is missing`)

// Qual is a conjunctive predicate pushed down by the host executor.
// Operator is one of "=", "<", "<=", ">", ">=". Value carries the
// right-hand side: int32 (or int/int64 in range), float32, float64
// (narrowed to float32), string or []byte.
type Qual struct {
	Field    string
	Operator string
	Value    interface{}
	UseOr    bool
}

// Sort is a requested sort order. CFF scans are always in file order,
// so sorts are accepted and ignored.
type Sort struct {
	Field    string
	Reversed bool
}

// Limit mirrors the host's LIMIT clause.
type Limit struct {
	Count  int64
	Offset int64
}

// Row is the host-owned output buffer. Cells is resized to the
// projection arity on the first IterScan and reused across calls.
type Row struct {
	Cols  []string
	Cells []cff.Cell
}

// ForeignDataWrapper is the scan contract a table implementation offers
// to the host executor.
type ForeignDataWrapper interface {

	// BeginScan sets up a scan. options carries table options; CFF
	// tables require "filename". A returned error means the scan will
	// produce no rows.
	BeginScan(quals []Qual, columns []string, sorts []Sort, limit *Limit,
		options map[string]string) error

	// IterScan produces the next row into row. It returns false when
	// the scan is exhausted.
	IterScan(row *Row) (bool, error)

	// EndScan releases the scan's resources. It is idempotent.
	EndScan()
}
