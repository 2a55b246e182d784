// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"
)

// testColumn describes one column of a fixture file. Exactly one of the
// value slices must be set, matching typ.
type testColumn struct {
	name   string
	typ    ColumnType
	ints   []int32
	floats []float32
	strs   []string
}

// buildCFF serializes a complete CFF file: column payloads back to back,
// the JSON trailer, and the 4-byte trailer length.
func buildCFF(t *testing.T, table string, maxPerBlock uint32, cols []testColumn) []byte {
	t.Helper()

	md := Metadata{
		Table:             table,
		Columns:           make(map[string]Column, len(cols)),
		MaxValuesPerBlock: maxPerBlock,
	}
	var payload bytes.Buffer

	for _, tc := range cols {
		start := uint32(payload.Len())
		stats := make(map[uint32]BlockStats)
		var numVals uint32

		switch tc.typ {
		case TypeInt:
			numVals = uint32(len(tc.ints))
			for i, v := range tc.ints {
				var buf [NumericFieldSize]byte
				binary.LittleEndian.PutUint32(buf[:], uint32(v))
				payload.Write(buf[:])

				b := uint32(i) / maxPerBlock
				bs, ok := stats[b]
				if !ok {
					bs = BlockStats{MinInt: v, MaxInt: v}
				}
				bs.Count++
				if v < bs.MinInt {
					bs.MinInt = v
				}
				if v > bs.MaxInt {
					bs.MaxInt = v
				}
				stats[b] = bs
			}
		case TypeFloat:
			numVals = uint32(len(tc.floats))
			for i, v := range tc.floats {
				var buf [NumericFieldSize]byte
				binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
				payload.Write(buf[:])

				b := uint32(i) / maxPerBlock
				bs, ok := stats[b]
				if !ok {
					bs = BlockStats{MinFloat: v, MaxFloat: v}
				}
				bs.Count++
				if v < bs.MinFloat {
					bs.MinFloat = v
				}
				if v > bs.MaxFloat {
					bs.MaxFloat = v
				}
				stats[b] = bs
			}
		case TypeStr:
			numVals = uint32(len(tc.strs))
			for i, v := range tc.strs {
				if len(v) >= StringFieldSize {
					t.Fatalf("string %q does not fit a %d byte slot with terminator",
						v, StringFieldSize)
				}
				var slot [StringFieldSize]byte
				copy(slot[:], v)
				payload.Write(slot[:])

				b := uint32(i) / maxPerBlock
				l := uint32(len(v))
				bs, ok := stats[b]
				if !ok {
					bs = BlockStats{MinStr: v, MaxStr: v, MinLen: l, MaxLen: l}
				}
				bs.Count++
				if v < bs.MinStr {
					bs.MinStr = v
				}
				if v > bs.MaxStr {
					bs.MaxStr = v
				}
				if l < bs.MinLen {
					bs.MinLen = l
				}
				if l > bs.MaxLen {
					bs.MaxLen = l
				}
				stats[b] = bs
			}
		}

		md.Columns[tc.name] = Column{
			Type:        tc.typ,
			NumBlocks:   (numVals + maxPerBlock - 1) / maxPerBlock,
			StartOffset: start,
			BlockStats:  stats,
		}
	}

	trailer, err := json.Marshal(md)
	if err != nil {
		t.Fatalf("marshal trailer failed, reason: %v", err)
	}
	payload.Write(trailer)

	var lenBuf [TrailerLenSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(trailer)))
	payload.Write(lenBuf[:])
	return payload.Bytes()
}

// openCFF parses an in-memory fixture and closes it with the test.
func openCFF(t *testing.T, data []byte) *File {
	t.Helper()
	f, err := NewBytes(data, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// seqInts fills [0, n) through f.
func seqInts(n int, f func(i int) int32) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}
