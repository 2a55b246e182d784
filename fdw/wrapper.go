// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package fdw

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/iamkroot/cff"
)

// Wrapper implements ForeignDataWrapper over CFF files. The zero value
// is usable; New wires in a custom logger.
type Wrapper struct {
	file    *cff.File
	scanner *cff.Scanner
	cols    []string
	logger  *zap.SugaredLogger
}

// New returns a Wrapper logging through the given logger, or the
// process-wide default when nil.
func New(logger *zap.SugaredLogger) *Wrapper {
	return &Wrapper{logger: logger}
}

func (w *Wrapper) log() *zap.SugaredLogger {
	if w.logger == nil {
		w.logger = cff.DefaultLogger()
	}
	return w.logger
}

// BeginScan opens and parses the file named by the "filename" option and
// compiles the pushed-down quals and limit into a scan plan. On error
// the scan is left empty: IterScan reports exhaustion immediately.
func (w *Wrapper) BeginScan(quals []Qual, columns []string, sorts []Sort,
	limit *Limit, options map[string]string) error {

	w.EndScan()
	if len(sorts) > 0 {
		w.log().Debugw("ignoring sort clauses, scan is in file order",
			"sorts", len(sorts))
	}

	filename, ok := options["filename"]
	if !ok || filename == "" {
		w.log().Errorw("cannot begin scan", "error", ErrNoFilename)
		return ErrNoFilename
	}

	cquals, err := compileQuals(quals)
	if err != nil {
		w.log().Errorw("cannot begin scan", "file", filename, "error", err)
		return err
	}

	file, err := cff.New(filename, &cff.Options{Logger: w.logger})
	if err != nil {
		w.log().Errorw("cannot open CFF file", "file", filename, "error", err)
		return fmt.Errorf("open CFF file %s: %w", filename, err)
	}
	if err := file.Parse(); err != nil {
		file.Close()
		w.log().Errorw("cannot parse CFF file", "file", filename, "error", err)
		return fmt.Errorf("parse CFF file %s: %w", filename, err)
	}

	var clim *cff.Limit
	if limit != nil {
		clim = &cff.Limit{Count: limit.Count, Offset: limit.Offset}
	}
	scanner, err := file.NewScanner(columns, cquals, clim)
	if err != nil {
		file.Close()
		w.log().Errorw("cannot plan scan", "file", filename, "error", err)
		return fmt.Errorf("plan scan of %s: %w", filename, err)
	}

	w.file = file
	w.scanner = scanner
	w.cols = columns
	return nil
}

// IterScan produces the next row into the caller-supplied buffer. A scan
// that failed to begin reports exhaustion. A scan that hit corrupt data
// returns false with the error, on that call and every later one.
func (w *Wrapper) IterScan(row *Row) (bool, error) {
	if w.scanner == nil {
		return false, nil
	}
	row.Cols = w.cols
	if len(row.Cells) != len(w.cols) {
		row.Cells = make([]cff.Cell, len(w.cols))
	}
	ok, err := w.scanner.Next(row.Cells)
	if err != nil {
		w.log().Errorw("scan aborted", "error", err)
		return false, err
	}
	return ok, nil
}

// EndScan releases the mapping and metadata. Safe to call repeatedly and
// after an abandoned scan.
func (w *Wrapper) EndScan() {
	if w.file != nil {
		w.file.Close()
	}
	w.file = nil
	w.scanner = nil
	w.cols = nil
}

// compileQuals converts host quals into typed scan quals. Disjunctions
// and unknown operators are rejected; RHS values are converted to cells
// by coerceValue, and the scanner checks their kind against the column
// type at plan time.
func compileQuals(quals []Qual) ([]cff.Qual, error) {
	out := make([]cff.Qual, 0, len(quals))
	for _, q := range quals {
		if q.UseOr {
			return nil, fmt.Errorf("%w: disjunctive qual on %q",
				cff.ErrUnsupportedPredicate, q.Field)
		}
		op, err := cff.ParseOp(q.Operator)
		if err != nil {
			return nil, err
		}
		rhs, err := coerceValue(q.Value)
		if err != nil {
			return nil, fmt.Errorf("qual on %q: %w", q.Field, err)
		}
		out = append(out, cff.Qual{Field: q.Field, Op: op, RHS: rhs})
	}
	return out, nil
}

// coerceValue maps a host value onto the cell type it will be compared
// against. float64 narrows to float32 with ordinary rounding; integers
// must fit in 32 bits.
func coerceValue(v interface{}) (cff.Cell, error) {
	switch v := v.(type) {
	case int32:
		return cff.IntCell(v), nil
	case int:
		return intCellChecked(int64(v))
	case int64:
		return intCellChecked(v)
	case float32:
		return cff.FloatCell(v), nil
	case float64:
		return cff.FloatCell(float32(v)), nil
	case string:
		return cff.StrCell([]byte(v)), nil
	case []byte:
		return cff.StrCell(v), nil
	}
	return cff.Cell{}, fmt.Errorf("%w: value type %T", cff.ErrUnsupportedPredicate, v)
}

func intCellChecked(v int64) (cff.Cell, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return cff.Cell{}, fmt.Errorf("%w: integer value %d out of 32-bit range",
			cff.ErrUnsupportedPredicate, v)
	}
	return cff.IntCell(int32(v)), nil
}
