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

package phasemap

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/phaseblocks/interval"
	"github.com/grailbio/phaseblocks/phaseblock"
	"github.com/grailbio/phaseblocks/render"
)

// GetBlocks reads the input at path and returns its phase blocks over region.
// A source without phased records yields the one-element sentinel list.
func GetBlocks(ctx context.Context, path string, region interval.Region, opts *Opts) ([]phaseblock.Block, error) {
	records, err := Records(ctx, path, region, opts)
	if err != nil {
		return nil, errors.E(err, "reading", path)
	}
	return phaseblock.ForSource(records, SourceName(path)), nil
}

// GetAllBlocks runs GetBlocks for every input, at most opts.Parallelism at a
// time.  The i'th element of the result belongs to paths[i].  The first
// error aborts the whole call.
func GetAllBlocks(ctx context.Context, paths []string, region interval.Region, opts *Opts) ([][]phaseblock.Block, error) {
	sources := make([][]phaseblock.Block, len(paths))
	err := traverse.Limit(opts.parallelism()).Each(len(paths), func(i int) error {
		blocks, err := GetBlocks(ctx, paths[i], region, opts)
		if err != nil {
			return err
		}
		sources[i] = blocks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func validate(ctx context.Context, paths []string, opts *Opts) error {
	if len(paths) == 0 {
		return errors.E(errors.Invalid, "phasemap: no input files")
	}
	if opts.Output == "" {
		return errors.E(errors.Invalid, "phasemap: output path required")
	}
	if opts.BamIndex != "" && len(paths) > 1 {
		return errors.E(errors.Invalid, "phasemap: an explicit BAM index requires a single input")
	}
	for _, path := range paths {
		if _, err := file.Stat(ctx, path); err != nil {
			return errors.E(err, "phasemap: input", path)
		}
	}
	return nil
}

// writeFile creates path and passes its writer to write.  Paths ending in .gz
// are bgzip-compressed.
func writeFile(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if !strings.HasSuffix(path, ".gz") {
		return write(out.Writer(ctx))
	}
	bgzfWriter := bgzf.NewWriter(out.Writer(ctx), 1)
	defer func() {
		if e := bgzfWriter.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return write(bgzfWriter)
}

// Run builds the phase-block map of paths over opts.Region.  It writes the
// HTML plot to opts.Output and, if opts.Summary is set, the TSV summary
// (bgzipped if opts.Summary ends in .gz).
// Nothing is written unless the region and every input could be read.
func Run(ctx context.Context, paths []string, opts Opts) error {
	region, err := interval.ParseRegion(opts.Region)
	if err != nil {
		return errors.E(errors.Invalid, err, "phasemap: region")
	}
	if err = validate(ctx, paths, &opts); err != nil {
		return err
	}
	log.Printf("phasemap: %d input(s), region %v", len(paths), region)
	sources, err := GetAllBlocks(ctx, paths, region, &opts)
	if err != nil {
		return err
	}
	var annots []interval.Annotation
	if opts.Bed != "" {
		if annots, err = interval.LoadAnnotations(ctx, opts.Bed, region); err != nil {
			return errors.E(err, "phasemap: annotations", opts.Bed)
		}
	}
	renderOpts := render.Opts{Title: opts.Title, LineWidth: opts.Width}
	if err = writeFile(ctx, opts.Output, func(w io.Writer) error {
		return render.Write(w, region, sources, annots, renderOpts)
	}); err != nil {
		return errors.E(err, "phasemap: plot", opts.Output)
	}
	log.Printf("phasemap: wrote plot to %s", opts.Output)
	if opts.Summary != "" {
		if err = writeFile(ctx, opts.Summary, func(w io.Writer) error {
			return phaseblock.WriteSummary(w, sources)
		}); err != nil {
			return errors.E(err, "phasemap: summary", opts.Summary)
		}
		log.Printf("phasemap: wrote summary to %s", opts.Summary)
	}
	return nil
}
