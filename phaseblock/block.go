// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package phaseblock

import (
	"errors"
	"sort"

	"github.com/grailbio/base/log"
)

// ErrEmpty is returned by Build when a source contributes no phased records.
// It is an expected condition, not a failure.
var ErrEmpty = errors.New("no phased records")

// Record is one phased read or variant in the query window.  Start and End
// are 0-based, End exclusive.
type Record struct {
	Start    int64
	End      int64
	PhaseSet uint32
}

// Block is a run of records sharing one phase set, collapsed to the minimum
// start and the maximum end of those records.
type Block struct {
	Start int64
	End   int64
	// Name is the display label of the source the block came from.
	Name string
	// Empty marks the sentinel block of a source without phased records.
	// Start and End are both zero in that case.
	Empty bool
}

// EmptyBlock returns the sentinel block for a source without phased records.
func EmptyBlock(name string) Block {
	return Block{Name: name, Empty: true}
}

// IsEmpty reports whether blocks is the sentinel list of a source without
// phased records.
func IsEmpty(blocks []Block) bool {
	return len(blocks) == 1 && blocks[0].Empty
}

// RecordIterator yields phased records of a single source.  Scan/Record/Err
// follow the bufio.Scanner convention.
type RecordIterator interface {
	Scan() bool
	Record() Record
	Err() error
}

// Collect drains iter into a slice.
func Collect(iter RecordIterator) ([]Record, error) {
	var records []Record
	for iter.Scan() {
		records = append(records, iter.Record())
	}
	return records, iter.Err()
}

// Build groups records into phase blocks named name.  The records are sorted
// by (PhaseSet, Start) first, so the input does not have to be grouped; the
// caller's slice is left untouched.  The returned blocks are in (PhaseSet,
// Start) order, which does not have to be genomic order when phase sets
// interleave.
//
// Build returns ErrEmpty, and no blocks, when records is empty.
func Build(records []Record, name string) ([]Block, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PhaseSet != sorted[j].PhaseSet {
			return sorted[i].PhaseSet < sorted[j].PhaseSet
		}
		return sorted[i].Start < sorted[j].Start
	})

	var blocks []Block
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r.PhaseSet == cur.PhaseSet {
			// A read contained in an earlier, longer read must not pull the end back.
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		blocks = append(blocks, Block{Start: cur.Start, End: cur.End, Name: name})
		cur = r
	}
	return append(blocks, Block{Start: cur.Start, End: cur.End, Name: name}), nil
}

// ForSource is Build for one input source, with the empty case folded into
// the result: a source without phased records yields a one-element list
// holding EmptyBlock(name), and a warning is logged.
func ForSource(records []Record, name string) []Block {
	blocks, err := Build(records, name)
	if err == ErrEmpty {
		log.Error.Printf("phaseblock: not a single phased record found in the interval for %s", name)
		return []Block{EmptyBlock(name)}
	}
	log.Debug.Printf("phaseblock: %s: %d record(s) -> %d block(s)", name, len(records), len(blocks))
	return blocks
}
