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
package main

/*
bio-phaseblocks draws a map of the phase blocks of one or more BAM or VCF
files over a genomic region, as an interactive HTML plot.  Optionally it also
writes a tab-separated summary with one line per input.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phaseblocks/phasemap"
)

var (
	region        = flag.String("region", phasemap.DefaultOpts.Region, "Region to plot, formatted as <contig ID>:<start>-<end>; commas are ignored. Required")
	output        = flag.String("output", phasemap.DefaultOpts.Output, "Output HTML path. Required")
	summary       = flag.String("summary", phasemap.DefaultOpts.Summary, "Optional output TSV path for the per-input block summary")
	bedPath       = flag.String("bed", phasemap.DefaultOpts.Bed, "Optional BED file (plain or gzipped) of annotations to draw under the blocks")
	bamIndexPath  = flag.String("index", phasemap.DefaultOpts.BamIndex, "Input BAM index path, only valid with a single BAM input. Defaults to bampath + .bai")
	parallelism   = flag.Int("parallelism", phasemap.DefaultOpts.Parallelism, "Maximum number of inputs read simultaneously")
	decompression = flag.Int("decompression", phasemap.DefaultOpts.Decompression, "Number of BGZF decompression threads per BAM input")
	width         = flag.Int("width", phasemap.DefaultOpts.Width, "Line width of a block; 0 = default")
	title         = flag.String("title", phasemap.DefaultOpts.Title, "Plot title; defaults to 'Phase block map <region>'")
)

func bioPhaseblocksUsage() {
	fmt.Printf("Usage: %s [OPTIONS] -region chr:start-end -output map.html input...\n", os.Args[0])
	fmt.Printf("Inputs are BAM (.bam, indexed) or VCF (.vcf, .vcf.gz, .vcf.bgz) files.\n")
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioPhaseblocksUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() == 0 {
		log.Fatalf("Missing positional arguments (at least one BAM or VCF path required)")
	}
	if *region == "" || *output == "" {
		log.Fatalf("-region and -output are required")
	}
	ctx := vcontext.Background()
	opts := phasemap.Opts{
		Region:        *region,
		Output:        *output,
		Summary:       *summary,
		Bed:           *bedPath,
		BamIndex:      *bamIndexPath,
		Parallelism:   *parallelism,
		Decompression: *decompression,
		Width:         *width,
		Title:         *title,
	}
	if err := phasemap.Run(ctx, flag.Args(), opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
