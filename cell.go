// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import "strconv"

// CellKind enumerates the physical value types a Cell can hold.
type CellKind uint8

const (
	KindInt CellKind = iota
	KindFloat
	KindStr
)

// String returns the trailer spelling of the kind.
func (k CellKind) String() string {
	switch k {
	case KindInt:
		return string(TypeInt)
	case KindFloat:
		return string(TypeFloat)
	default:
		return string(TypeStr)
	}
}

// Cell is a tagged value decoded from a single column slot, or supplied
// as the right-hand side of a predicate.
type Cell struct {
	Kind CellKind
	I32  int32
	F32  float32

	// Str holds the meaningful prefix of a string slot, up to but not
	// including the first zero byte. When produced by a scan it aliases
	// the file mapping and is only valid until the file is closed.
	Str []byte
}

// IntCell wraps an int32 value.
func IntCell(v int32) Cell { return Cell{Kind: KindInt, I32: v} }

// FloatCell wraps a float32 value.
func FloatCell(v float32) Cell { return Cell{Kind: KindFloat, F32: v} }

// StrCell wraps a byte string.
func StrCell(v []byte) Cell { return Cell{Kind: KindStr, Str: v} }

// String renders the cell value, mainly for logging and the CLI.
func (c Cell) String() string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(int64(c.I32), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(c.F32), 'g', -1, 32)
	default:
		return string(c.Str)
	}
}
