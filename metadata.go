// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"encoding/json"
	"fmt"
)

// BlockStats carries the zone-map statistics of a single block. Only the
// min/max pair matching the column's physical type is meaningful; MinLen
// and MaxLen are populated for string columns only.
type BlockStats struct {
	Count    uint32
	MinInt   int32
	MaxInt   int32
	MinFloat float32
	MaxFloat float32
	MinStr   string
	MaxStr   string
	MinLen   uint32
	MaxLen   uint32
}

// Column describes one fixed-width column of a CFF table.
type Column struct {
	Type        ColumnType
	NumBlocks   uint32
	StartOffset uint32
	BlockStats  map[uint32]BlockStats
}

// Metadata is the decoded JSON trailer of a CFF file.
type Metadata struct {
	Table             string            `json:"Table"`
	Columns           map[string]Column `json:"Columns"`
	MaxValuesPerBlock uint32            `json:"Max Values Per Block"`
}

// Wire shapes of the per-block stat objects. Block indices arrive as
// decimal string keys; encoding/json coerces them to the integer map key.
type intBlockStats struct {
	Num uint32 `json:"num"`
	Min int32  `json:"min"`
	Max int32  `json:"max"`
}

type floatBlockStats struct {
	Num uint32  `json:"num"`
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

type strBlockStats struct {
	Num    uint32 `json:"num"`
	Min    string `json:"min"`
	Max    string `json:"max"`
	MinLen uint32 `json:"min_len"`
	MaxLen uint32 `json:"max_len"`
}

type columnShell struct {
	Type        ColumnType                 `json:"type"`
	BlockStats  map[uint32]json.RawMessage `json:"block_stats"`
	NumBlocks   uint32                     `json:"num_blocks"`
	StartOffset uint32                     `json:"start_offset"`
}

// UnmarshalJSON decodes a column descriptor, picking the stat shape that
// matches the declared column type.
func (c *Column) UnmarshalJSON(b []byte) error {
	var shell columnShell
	if err := json.Unmarshal(b, &shell); err != nil {
		return err
	}
	if !shell.Type.valid() {
		return fmt.Errorf("unknown column type %q", shell.Type)
	}

	c.Type = shell.Type
	c.NumBlocks = shell.NumBlocks
	c.StartOffset = shell.StartOffset
	c.BlockStats = make(map[uint32]BlockStats, len(shell.BlockStats))

	for idx, raw := range shell.BlockStats {
		var bs BlockStats
		switch shell.Type {
		case TypeInt:
			var s intBlockStats
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("stats of block %d: %v", idx, err)
			}
			bs = BlockStats{Count: s.Num, MinInt: s.Min, MaxInt: s.Max}
		case TypeFloat:
			var s floatBlockStats
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("stats of block %d: %v", idx, err)
			}
			bs = BlockStats{Count: s.Num, MinFloat: s.Min, MaxFloat: s.Max}
		case TypeStr:
			var s strBlockStats
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("stats of block %d: %v", idx, err)
			}
			bs = BlockStats{Count: s.Num, MinStr: s.Min, MaxStr: s.Max,
				MinLen: s.MinLen, MaxLen: s.MaxLen}
		}
		c.BlockStats[idx] = bs
	}
	return nil
}

// MarshalJSON re-encodes a column descriptor into its on-disk shape.
func (c Column) MarshalJSON() ([]byte, error) {
	stats := make(map[uint32]interface{}, len(c.BlockStats))
	for idx, bs := range c.BlockStats {
		switch c.Type {
		case TypeInt:
			stats[idx] = intBlockStats{Num: bs.Count, Min: bs.MinInt, Max: bs.MaxInt}
		case TypeFloat:
			stats[idx] = floatBlockStats{Num: bs.Count, Min: bs.MinFloat, Max: bs.MaxFloat}
		case TypeStr:
			stats[idx] = strBlockStats{Num: bs.Count, Min: bs.MinStr, Max: bs.MaxStr,
				MinLen: bs.MinLen, MaxLen: bs.MaxLen}
		}
	}
	return json.Marshal(struct {
		Type        ColumnType             `json:"type"`
		BlockStats  map[uint32]interface{} `json:"block_stats"`
		NumBlocks   uint32                 `json:"num_blocks"`
		StartOffset uint32                 `json:"start_offset"`
	}{c.Type, stats, c.NumBlocks, c.StartOffset})
}

// NumRows returns the total row count of the table, the sum of the block
// counts of any one column.
func (md *Metadata) NumRows() int64 {
	for name := range md.Columns {
		col := md.Columns[name]
		var total int64
		for _, bs := range col.BlockStats {
			total += int64(bs.Count)
		}
		return total
	}
	return 0
}

// NumRowsInBlock returns the number of values stored in the given block.
func (md *Metadata) NumRowsInBlock(blockNum uint32) uint32 {
	for name := range md.Columns {
		if bs, ok := md.Columns[name].BlockStats[blockNum]; ok {
			return bs.Count
		}
		break
	}

	// No stats for this block; derive the count from the row total. Only
	// the final block may hold fewer than MaxValuesPerBlock values.
	remaining := md.NumRows() - int64(blockNum)*int64(md.MaxValuesPerBlock)
	if remaining <= 0 {
		return 0
	}
	if remaining < int64(md.MaxValuesPerBlock) {
		return uint32(remaining)
	}
	return md.MaxValuesPerBlock
}

// validate enforces the cross-column invariants of the trailer: every
// column carries the same number of blocks and the same per-block count
// sequence, and no block holds more than MaxValuesPerBlock values.
func (md *Metadata) validate() error {
	if len(md.Columns) == 0 {
		return nil
	}

	var refName string
	var ref Column
	for name, col := range md.Columns {
		if refName == "" {
			refName, ref = name, col
		}
		if col.NumBlocks > 0 && md.MaxValuesPerBlock == 0 {
			return fmt.Errorf("column %q has %d blocks but max values per block is 0",
				name, col.NumBlocks)
		}
		if col.NumBlocks != ref.NumBlocks {
			return fmt.Errorf("column %q has %d blocks, column %q has %d",
				name, col.NumBlocks, refName, ref.NumBlocks)
		}
		for idx, bs := range col.BlockStats {
			if idx >= col.NumBlocks {
				return fmt.Errorf("column %q has stats for block %d beyond %d blocks",
					name, idx, col.NumBlocks)
			}
			if bs.Count > md.MaxValuesPerBlock {
				return fmt.Errorf("column %q block %d holds %d values, more than %d",
					name, idx, bs.Count, md.MaxValuesPerBlock)
			}
			if refBs, ok := ref.BlockStats[idx]; ok && refBs.Count != bs.Count {
				return fmt.Errorf("column %q block %d holds %d values, column %q holds %d",
					name, idx, bs.Count, refName, refBs.Count)
			}
		}
	}
	return nil
}
