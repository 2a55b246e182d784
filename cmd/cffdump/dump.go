// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iamkroot/cff"
	"github.com/iamkroot/cff/fdw"
)

var (
	scanColumns []string
	scanFilters []string
	scanLimit   int64
	scanOffset  int64
)

func prettyPrint(iface interface{}) string {
	var prettyJSON bytes.Buffer
	buff, _ := json.Marshal(iface)
	err := json.Indent(&prettyJSON, buff, "", "\t")
	if err != nil {
		return string(buff)
	}

	return prettyJSON.String()
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return cff.DefaultLogger()
	}
	return logger.Sugar()
}

func dumpMeta(filename string) error {
	f, err := cff.New(filename, &cff.Options{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return err
	}
	fmt.Println(prettyPrint(f.Metadata))
	return nil
}

// parseMeta opens the file once just to learn the column set, so filter
// values can be typed and a default projection picked.
func parseMeta(filename string, logger *zap.SugaredLogger) (cff.Metadata, error) {
	f, err := cff.New(filename, &cff.Options{Logger: logger})
	if err != nil {
		return cff.Metadata{}, err
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return cff.Metadata{}, err
	}
	return f.Metadata, nil
}

// parseFilter turns `field op value` into a host qual, typing the value
// from the column metadata.
func parseFilter(expr string, md cff.Metadata) (fdw.Qual, error) {
	parts := strings.Fields(expr)
	if len(parts) < 3 {
		return fdw.Qual{}, fmt.Errorf("malformed filter %q, want \"field op value\"", expr)
	}
	field, op := parts[0], parts[1]
	rawVal := strings.Join(parts[2:], " ")

	col, ok := md.Columns[field]
	if !ok {
		return fdw.Qual{}, fmt.Errorf("filter on unknown column %q", field)
	}

	var value interface{}
	switch col.Type {
	case cff.TypeInt:
		v, err := strconv.ParseInt(rawVal, 10, 32)
		if err != nil {
			return fdw.Qual{}, fmt.Errorf("filter value %q for int column %q: %v",
				rawVal, field, err)
		}
		value = v
	case cff.TypeFloat:
		v, err := strconv.ParseFloat(rawVal, 64)
		if err != nil {
			return fdw.Qual{}, fmt.Errorf("filter value %q for float column %q: %v",
				rawVal, field, err)
		}
		value = v
	default:
		value = rawVal
	}
	return fdw.Qual{Field: field, Operator: op, Value: value}, nil
}

func scanTable(filename string) error {
	logger := newLogger()

	md, err := parseMeta(filename, logger)
	if err != nil {
		return err
	}

	cols := scanColumns
	if len(cols) == 0 {
		for name := range md.Columns {
			cols = append(cols, name)
		}
		sort.Strings(cols)
	}

	quals := make([]fdw.Qual, 0, len(scanFilters))
	for _, expr := range scanFilters {
		q, err := parseFilter(expr, md)
		if err != nil {
			return err
		}
		quals = append(quals, q)
	}

	var limit *fdw.Limit
	if scanLimit >= 0 {
		limit = &fdw.Limit{Count: scanLimit, Offset: scanOffset}
	} else if scanOffset > 0 {
		limit = &fdw.Limit{Count: md.NumRows(), Offset: scanOffset}
	}

	wrapper := fdw.New(logger)
	opts := map[string]string{"filename": filename}
	if err := wrapper.BeginScan(quals, cols, nil, limit, opts); err != nil {
		return err
	}
	defer wrapper.EndScan()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	var row fdw.Row
	var numRows int64
	for {
		ok, err := wrapper.IterScan(&row)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		vals := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			vals[i] = cell.String()
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
		numRows++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("(%d rows)\n", numRows)
	return nil
}
