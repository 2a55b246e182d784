// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"encoding/binary"
	"errors"
	"math"
)

// Errors
var (

	// ErrInvalidCFFSize is returned when the file is smaller than the
	// smallest CFF file possible.
	ErrInvalidCFFSize = errors.New("not a CFF file, smaller than tiny CFF")

	// ErrBadTrailer is returned when the file is too small to hold a
	// trailer, the trailer length points outside the file, or the JSON
	// trailer fails to decode or validate.
	ErrBadTrailer = errors.New("corrupt CFF trailer")

	// ErrUnknownColumn is returned when a projected or predicated column
	// is absent from the table metadata.
	ErrUnknownColumn = errors.New("column not found in table metadata")

	// ErrUnsupportedPredicate is returned at plan time for disjunctive
	// predicates, unknown operators, and RHS values whose type does not
	// match the column's physical type.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrCorruptRow is returned during iteration when a value lies outside
	// the file or a string slot carries no zero terminator.
	ErrCorruptRow = errors.New("corrupt row data")

	// ErrOutsideBoundary is reported when attempting to read beyond the
	// file image limits.
	ErrOutsideBoundary = errors.New("reading data outside boundary")

	// ErrNotParsed is returned when a scan is requested before Parse has
	// decoded the trailer metadata.
	ErrNotParsed = errors.New("file metadata not parsed")
)

// ReadUint32 reads a little-endian uint32 from the mapping.
func (f *File) ReadUint32(offset uint32) (uint32, error) {
	if f.size < 4 || offset > f.size-4 {
		return 0, ErrOutsideBoundary
	}

	return binary.LittleEndian.Uint32(f.data[offset:]), nil
}

// ReadInt32 reads a little-endian int32 from the mapping.
func (f *File) ReadInt32(offset uint32) (int32, error) {
	v, err := f.ReadUint32(offset)
	return int32(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 float32 from the mapping.
func (f *File) ReadFloat32(offset uint32) (float32, error) {
	v, err := f.ReadUint32(offset)
	return math.Float32frombits(v), err
}

// ReadBytesAtOffset returns a byte slice aliasing the mapping. The slice
// is only valid until Close.
func (f *File) ReadBytesAtOffset(offset, size uint32) ([]byte, error) {
	// Boundary check
	totalSize := offset + size

	// Integer overflow
	if (totalSize > offset) != (size > 0) {
		return nil, ErrOutsideBoundary
	}

	if offset >= f.size || totalSize > f.size {
		return nil, ErrOutsideBoundary
	}

	return f.data[offset : offset+size], nil
}
