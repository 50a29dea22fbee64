// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package phaseblock groups phased reads or variants into phase blocks.

A phase block is a maximal genomic interval over which all contained records
carry the same phase set (PS) identifier.  Build sorts a source's records by
(phase set, start) and folds each run of equal phase sets into one Block.  A
source without any phased record is represented by a single sentinel Block
with Empty set; downstream consumers skip it when plotting and report zero
blocks when summarizing.
*/
package phaseblock
