// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"bytes"
	"cmp"
	"fmt"
)

// Op is a comparison operator of a predicate.
type Op uint8

// Supported operators. Disjunctions, inequality and pattern matches are
// not part of the scan contract.
const (
	OpEq Op = iota
	OpLt
	OpLte
	OpGt
	OpGte
)

// ParseOp converts the host executor's operator spelling.
func ParseOp(s string) (Op, error) {
	switch s {
	case "=":
		return OpEq, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLte, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGte, nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrUnsupportedPredicate, s)
}

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// evalOrdered returns true if `lhs op rhs` holds.
func evalOrdered[T cmp.Ordered](op Op, lhs, rhs T) bool {
	switch op {
	case OpEq:
		return lhs == rhs
	case OpLt:
		return lhs < rhs
	case OpLte:
		return lhs <= rhs
	case OpGt:
		return lhs > rhs
	default:
		return lhs >= rhs
	}
}

// evalBytes is evalOrdered over byte strings.
func evalBytes(op Op, lhs, rhs []byte) bool {
	c := bytes.Compare(lhs, rhs)
	switch op {
	case OpEq:
		return c == 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	default:
		return c >= 0
	}
}

// Qual is a single conjunctive predicate of the form `field op rhs`.
// The RHS kind must match the column's physical type; NewScanner
// enforces this at plan time.
type Qual struct {
	Field string
	Op    Op
	RHS   Cell
}

// eval reports whether lhs satisfies the predicate. The cell kind is
// trusted to match the RHS kind.
func (q *Qual) eval(lhs *Cell) bool {
	switch lhs.Kind {
	case KindInt:
		return evalOrdered(q.Op, lhs.I32, q.RHS.I32)
	case KindFloat:
		return evalOrdered(q.Op, lhs.F32, q.RHS.F32)
	default:
		return evalBytes(q.Op, lhs.Str, q.RHS.Str)
	}
}

// skipsBlock reports whether the block's zone-map statistics prove that
// no value in it can satisfy the predicate. For string equality the
// stored length bounds prune blocks whose strings are all shorter or all
// longer than the RHS.
func (q *Qual) skipsBlock(stats *BlockStats, typ ColumnType) bool {
	switch typ {
	case TypeInt:
		rhs := q.RHS.I32
		switch q.Op {
		case OpEq:
			return stats.MinInt > rhs || stats.MaxInt < rhs
		case OpLt:
			return stats.MinInt >= rhs
		case OpLte:
			return stats.MinInt > rhs
		case OpGt:
			return stats.MaxInt <= rhs
		default:
			return stats.MaxInt < rhs
		}
	case TypeFloat:
		rhs := q.RHS.F32
		switch q.Op {
		case OpEq:
			return stats.MinFloat > rhs || stats.MaxFloat < rhs
		case OpLt:
			return stats.MinFloat >= rhs
		case OpLte:
			return stats.MinFloat > rhs
		case OpGt:
			return stats.MaxFloat <= rhs
		default:
			return stats.MaxFloat < rhs
		}
	default: // TypeStr
		rhs := string(q.RHS.Str)
		rhsLen := uint32(len(q.RHS.Str))
		switch q.Op {
		case OpEq:
			return stats.MaxLen < rhsLen || stats.MinLen > rhsLen ||
				stats.MinStr > rhs || stats.MaxStr < rhs
		case OpLt:
			return stats.MinStr >= rhs
		case OpLte:
			return stats.MinStr > rhs
		case OpGt:
			return stats.MaxStr <= rhs
		default:
			return stats.MaxStr < rhs
		}
	}
}
