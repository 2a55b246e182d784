// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"bytes"
	"fmt"
	"slices"
)

// Limit caps the number of rows produced by a scan, after Offset
// matching rows have been consumed without being emitted.
type Limit struct {
	Count  int64
	Offset int64
}

// predicatedCol is a compiled qual bound to its column descriptor.
// projIdx is the position of the field within the projection, or -1 when
// the field is filtered on but not projected; its value then lands in a
// scratch cell.
type predicatedCol struct {
	projIdx int
	col     Column
	qual    Qual
}

// plainCol is a projected column with no predicate. It is decoded only
// after every qual on the row has passed.
type plainCol struct {
	projIdx int
	col     Column
}

// ScanStats reports the work a scan has performed so far.
type ScanStats struct {
	BlocksSkipped uint64
	CellsDecoded  uint64
}

// Scanner streams filtered, projected rows out of a parsed CFF file in
// strict file order. It is not safe for concurrent use; independent
// scans over the same file need their own File.
type Scanner struct {
	f     *File
	cols  []string
	limit Limit

	predCols  []predicatedCol
	plainCols []plainCol
	numBlocks uint32
	totalRows int64

	// cursor
	blockNum    uint32
	blockRowNum uint32
	rowCnt      int64
	skipped     int64
	scratch     Cell
	err         error

	blocksSkipped uint64
	cellsDecoded  uint64
}

// NewScanner compiles a scan plan over the parsed file. cols is the
// projection: emitted rows carry one cell per entry, in order. Each qual
// must name a column whose physical type matches its RHS kind; quals are
// conjunctive. A nil limit scans every row.
func (f *File) NewScanner(cols []string, quals []Qual, limit *Limit) (*Scanner, error) {
	if !f.parsed {
		return nil, ErrNotParsed
	}
	md := &f.Metadata
	s := &Scanner{f: f, cols: cols}

	for _, name := range cols {
		if _, ok := md.Columns[name]; !ok {
			return nil, fmt.Errorf("%w: projected column %q", ErrUnknownColumn, name)
		}
	}

	predFields := make(map[string]bool, len(quals))
	for _, q := range quals {
		col, ok := md.Columns[q.Field]
		if !ok {
			return nil, fmt.Errorf("%w: predicated column %q", ErrUnknownColumn, q.Field)
		}
		if !typeMatches(col.Type, q.RHS.Kind) {
			return nil, fmt.Errorf("%w: column %q holds %s values, predicate compares against %s",
				ErrUnsupportedPredicate, q.Field, col.Type, q.RHS.Kind)
		}
		s.predCols = append(s.predCols, predicatedCol{
			projIdx: slices.Index(cols, q.Field),
			col:     col,
			qual:    q,
		})
		predFields[q.Field] = true
	}

	for i, name := range cols {
		if !predFields[name] {
			s.plainCols = append(s.plainCols, plainCol{projIdx: i, col: md.Columns[name]})
		}
	}

	for _, col := range md.Columns {
		s.numBlocks = col.NumBlocks
		break
	}
	s.totalRows = md.NumRows()

	if limit != nil {
		s.limit = *limit
		if s.limit.Offset+s.limit.Count > s.totalRows {
			s.limit.Count = s.totalRows - s.limit.Offset
			if s.limit.Count < 0 {
				s.limit.Count = 0
			}
		}
	} else {
		s.limit = Limit{Count: s.totalRows}
	}

	// Skip any leading run of prunable blocks before the first Next.
	for s.blockNum < s.numBlocks && s.skipBlock(s.blockNum) {
		s.blocksSkipped++
		s.blockNum++
	}
	if s.blockNum >= s.numBlocks && s.numBlocks > 0 {
		f.logger.Debugw("all blocks pruned", "table", md.Table)
	}
	return s, nil
}

func typeMatches(t ColumnType, k CellKind) bool {
	switch t {
	case TypeInt:
		return k == KindInt
	case TypeFloat:
		return k == KindFloat
	default:
		return k == KindStr
	}
}

// skipBlock reports whether some qual proves the block empty of matches.
// Blocks without statistics are never skipped.
func (s *Scanner) skipBlock(blockNum uint32) bool {
	for i := range s.predCols {
		pc := &s.predCols[i]
		stats, ok := pc.col.BlockStats[blockNum]
		if !ok {
			// no block stats, can't skip
			continue
		}
		if pc.qual.skipsBlock(&stats, pc.col.Type) {
			return true
		}
	}
	return false
}

// readCell decodes the value of col at the cursor position into out.
func (s *Scanner) readCell(col *Column, out *Cell) error {
	absRowNum := s.blockNum*s.f.Metadata.MaxValuesPerBlock + s.blockRowNum
	offset := col.StartOffset + absRowNum*col.Type.FieldSize()
	s.cellsDecoded++

	switch col.Type {
	case TypeInt:
		v, err := s.f.ReadInt32(offset)
		if err != nil {
			return fmt.Errorf("%w: int value at offset %d: %v", ErrCorruptRow, offset, err)
		}
		out.Kind, out.I32 = KindInt, v
	case TypeFloat:
		v, err := s.f.ReadFloat32(offset)
		if err != nil {
			return fmt.Errorf("%w: float value at offset %d: %v", ErrCorruptRow, offset, err)
		}
		out.Kind, out.F32 = KindFloat, v
	default:
		buf, err := s.f.ReadBytesAtOffset(offset, StringFieldSize)
		if err != nil {
			return fmt.Errorf("%w: string slot at offset %d: %v", ErrCorruptRow, offset, err)
		}
		nullPos := bytes.IndexByte(buf, 0)
		if nullPos < 0 {
			return fmt.Errorf("%w: string slot at offset %d has no zero terminator",
				ErrCorruptRow, offset)
		}
		out.Kind, out.Str = KindStr, buf[:nullPos]
	}
	return nil
}

// Next produces the next matching row into row, which must have exactly
// one cell per projected column. It returns false when the scan is
// exhausted, or false with an error when the underlying data turned out
// to be corrupt; errors are sticky and end the scan.
func (s *Scanner) Next(row []Cell) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.rowCnt >= s.limit.Count {
		return false, nil
	}
	if len(row) != len(s.cols) {
		return false, fmt.Errorf("row buffer has %d cells, projection has %d columns",
			len(row), len(s.cols))
	}

	for s.blockNum < s.numBlocks {
		numRows := s.f.Metadata.NumRowsInBlock(s.blockNum)
		for s.blockRowNum < numRows {
			allPassed := true
			for i := range s.predCols {
				pc := &s.predCols[i]
				out := &s.scratch
				if pc.projIdx >= 0 {
					out = &row[pc.projIdx]
				}
				if err := s.readCell(&pc.col, out); err != nil {
					s.err = err
					return false, err
				}
				if !pc.qual.eval(out) {
					// row does not satisfy the predicate
					allPassed = false
					break
				}
			}
			if allPassed && s.skipped < s.limit.Offset {
				// consume the match without emitting it
				s.skipped++
				allPassed = false
			}
			if allPassed {
				for i := range s.plainCols {
					pc := &s.plainCols[i]
					if err := s.readCell(&pc.col, &row[pc.projIdx]); err != nil {
						s.err = err
						return false, err
					}
				}
				s.blockRowNum++
				s.rowCnt++
				return true, nil
			}
			s.blockRowNum++
		}
		// end of current block, try the next one
		s.blockRowNum = 0
		s.blockNum++
		for s.blockNum < s.numBlocks && s.skipBlock(s.blockNum) {
			s.blocksSkipped++
			s.blockNum++
		}
	}
	return false, nil
}

// Stats returns counters describing the scan performed so far.
func (s *Scanner) Stats() ScanStats {
	return ScanStats{BlocksSkipped: s.blocksSkipped, CellsDecoded: s.cellsDecoded}
}
