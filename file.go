// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"go.uber.org/zap"
)

// A File represents an open CFF file.
type File struct {
	Metadata Metadata

	data   mmap.MMap
	size   uint32
	f      *os.File
	opts   *Options
	logger *zap.SugaredLogger
	parsed bool
}

// Options for parsing.
type Options struct {

	// A custom logger. When nil, the process-wide default logger is used.
	Logger *zap.SugaredLogger
}

// New instantiates a file instance with options given a file name.
// The file is opened read-only and memory mapped; the mapping lives
// until Close.
func New(name string, opts *Options) (*File, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	if file.opts.Logger != nil {
		file.logger = file.opts.Logger
	} else {
		file.logger = DefaultLogger()
	}

	file.data = data
	file.size = uint32(len(file.data))
	file.f = f

	// A scan walks each column front to back; let the kernel read ahead.
	// This is a hint only, ignore failures.
	if err := adviseSequential(file.data); err != nil {
		file.logger.Debugw("madvise failed", "file", name, "error", err)
	}
	return &file, nil
}

// NewBytes instantiates a file instance with options given a memory buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}

	if file.opts.Logger != nil {
		file.logger = file.opts.Logger
	} else {
		file.logger = DefaultLogger()
	}

	file.data = data
	file.size = uint32(len(file.data))
	return &file, nil
}

// Close closes the File. It is safe to call multiple times.
func (f *File) Close() error {
	if f.f != nil && f.data != nil {
		_ = f.data.Unmap()
	}
	f.data = nil
	f.size = 0

	if f.f != nil {
		err := f.f.Close()
		f.f = nil
		return err
	}
	return nil
}

// Parse locates and decodes the JSON trailer at the tail of the file.
// The last 4 bytes hold the little-endian length of the JSON payload
// that immediately precedes them.
func (f *File) Parse() error {

	// check for the smallest CFF size.
	if len(f.data) < TinyCFFSize {
		return fmt.Errorf("%w: %w", ErrBadTrailer, ErrInvalidCFFSize)
	}

	trailerLenStart := f.size - TrailerLenSize
	trailerLen := binary.LittleEndian.Uint32(f.data[trailerLenStart:])
	if trailerLen > trailerLenStart {
		return fmt.Errorf("%w: declared trailer length %d exceeds file size %d",
			ErrBadTrailer, trailerLen, f.size)
	}

	trailerStart := trailerLenStart - trailerLen
	raw := f.data[trailerStart:trailerLenStart]
	f.logger.Debugw("decoding trailer", "offset", trailerStart, "length", trailerLen)

	if err := json.Unmarshal(raw, &f.Metadata); err != nil {
		return fmt.Errorf("%w: %v", ErrBadTrailer, err)
	}
	if err := f.Metadata.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadTrailer, err)
	}
	f.parsed = true
	return nil
}
