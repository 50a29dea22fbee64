// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package phasemap builds phase-block maps for a set of BAM or VCF inputs over
// one genomic region, and writes them as an HTML plot plus an optional TSV
// summary.
package phasemap

type Opts struct {
	// Commandline options.
	Region        string
	Output        string
	Summary       string
	Bed           string
	BamIndex      string
	Parallelism   int
	Decompression int
	Width         int
	Title         string
}

var DefaultOpts = Opts{
	Parallelism:   4,
	Decompression: 1,
	Width:         0,
}

func (o *Opts) parallelism() int {
	if o.Parallelism <= 0 {
		return 1
	}
	return o.Parallelism
}
