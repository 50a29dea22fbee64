// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package phaseblock

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// SummaryHeader is the first line written by WriteSummary.
const SummaryHeader = "sample_name\tnum_blocks\tblock_coordinates"

// Coordinates renders blocks as "start1-end1;start2-end2;...".  The sentinel
// list of an empty source renders as "0".
func Coordinates(blocks []Block) string {
	if IsEmpty(blocks) {
		return "0"
	}
	buf := make([]byte, 0, len(blocks)*16)
	for i, b := range blocks {
		if i != 0 {
			buf = append(buf, ';')
		}
		buf = strconv.AppendInt(buf, b.Start, 10)
		buf = append(buf, '-')
		buf = strconv.AppendInt(buf, b.End, 10)
	}
	return string(buf)
}

// WriteSummary writes one tab-separated line per source:
//
//   sample_name  num_blocks  start1-end1;start2-end2;...
//
// preceded by SummaryHeader.  Sources are written in the order given.  A
// source whose only block is the empty sentinel is reported as "name\t0\t0".
func WriteSummary(w io.Writer, sources [][]Block) (err error) {
	out := tsv.NewWriter(w)
	out.WriteString(SummaryHeader)
	if err = out.EndLine(); err != nil {
		return
	}
	for i, blocks := range sources {
		if len(blocks) == 0 {
			return fmt.Errorf("phaseblock.WriteSummary: source %d has no blocks", i)
		}
		n := len(blocks)
		if IsEmpty(blocks) {
			n = 0
		}
		out.WriteString(blocks[0].Name)
		out.WriteInt64(int64(n))
		out.WriteString(Coordinates(blocks))
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return out.Flush()
}
