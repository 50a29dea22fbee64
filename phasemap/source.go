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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/phaseblocks/encoding/bamprovider"
	"github.com/grailbio/phaseblocks/encoding/vcf"
	"github.com/grailbio/phaseblocks/interval"
	"github.com/grailbio/phaseblocks/phaseblock"
)

type sourceKind int

const (
	unknownSource sourceKind = iota
	alignmentSource
	variantSource
)

// Recognized input suffixes, longest first so that .vcf.gz wins over .gz.
var sourceSuffixes = []struct {
	suffix string
	kind   sourceKind
}{
	{".vcf.bgz", variantSource},
	{".vcf.gz", variantSource},
	{".vcf", variantSource},
	{".cram", alignmentSource},
	{".bam", alignmentSource},
}

func kindOf(path string) (sourceKind, string) {
	for _, s := range sourceSuffixes {
		if strings.HasSuffix(path, s.suffix) {
			return s.kind, s.suffix
		}
	}
	return unknownSource, ""
}

// SourceName returns the display name of the input at path: its base name
// with a recognized suffix stripped.
func SourceName(path string) string {
	base := filepath.Base(path)
	if _, suffix := kindOf(base); suffix != "" && len(base) > len(suffix) {
		return base[:len(base)-len(suffix)]
	}
	return base
}

// readIterator yields the phased, mapped, primary reads of a bamprovider
// iterator.
type readIterator struct {
	iter bamprovider.Iterator
	rec  phaseblock.Record
	err  error
}

const readFlagExclude = sam.Unmapped | sam.Secondary

func (r *readIterator) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.iter.Scan() {
		rec := r.iter.Record()
		if rec.Flags&readFlagExclude != 0 {
			continue
		}
		ps, ok, err := bamprovider.PhaseSet(rec)
		if err != nil {
			r.err = err
			return false
		}
		if !ok {
			continue
		}
		r.rec = phaseblock.Record{Start: int64(rec.Pos), End: int64(rec.End()), PhaseSet: ps}
		return true
	}
	return false
}

func (r *readIterator) Record() phaseblock.Record { return r.rec }

func (r *readIterator) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.iter.Err()
}

// ProviderRecords returns the phased reads of p that overlap region.
func ProviderRecords(p bamprovider.Provider, region interval.Region) ([]phaseblock.Record, error) {
	iter := bamprovider.NewWindowIterator(p, region.RefName, region.Start, region.End)
	records, err := phaseblock.Collect(&readIterator{iter: iter})
	if e := iter.Close(); e != nil && err == nil {
		err = e
	}
	return records, err
}

func readRecords(path string, region interval.Region, opts *Opts) (records []phaseblock.Record, err error) {
	provider := bamprovider.NewProvider(path, bamprovider.ProviderOpts{
		Index:       opts.BamIndex,
		Parallelism: opts.Decompression,
	})
	records, err = ProviderRecords(provider, region)
	if e := provider.Close(); e != nil && err == nil {
		err = e
	}
	return records, err
}

// variantScanner is implemented by vcf.Scanner and vcf.QueryIterator.
type variantScanner interface {
	Scan(v *vcf.Variant) bool
	Err() error
}

// variantIterator yields the phased variants of a VCF that overlap a region.
type variantIterator struct {
	s      variantScanner
	region interval.Region
	v      vcf.Variant
}

func (r *variantIterator) Scan() bool {
	for r.s.Scan(&r.v) {
		if r.v.HasPhaseSet && r.region.Overlaps(r.v.Chrom, r.v.Pos, r.v.End()) {
			return true
		}
	}
	return false
}

func (r *variantIterator) Record() phaseblock.Record {
	return phaseblock.Record{Start: int64(r.v.Pos), End: int64(r.v.End()), PhaseSet: r.v.PhaseSet}
}

func (r *variantIterator) Err() error { return r.s.Err() }

// variantRecords reads a bgzipped VCF through its index when one exists, and
// scans the whole file otherwise.
func variantRecords(ctx context.Context, path string, region interval.Region) ([]phaseblock.Record, error) {
	if _, suffix := kindOf(path); suffix != ".vcf" {
		if vcf.HasIndex(ctx, path) {
			return indexedVariantRecords(path, region)
		}
		log.Error.Printf("phasemap: %s has no .tbi or .csi index, scanning the whole file", path)
	}
	return scannedVariantRecords(ctx, path, region)
}

func indexedVariantRecords(path string, region interval.Region) (records []phaseblock.Record, err error) {
	f, err := vcf.OpenIndexed(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	q, err := f.Query(region.RefName, region.Start, region.End)
	if err != nil {
		return nil, err
	}
	records, err = phaseblock.Collect(&variantIterator{s: q, region: region})
	if e := q.Close(); e != nil && err == nil {
		err = e
	}
	return records, err
}

func scannedVariantRecords(ctx context.Context, path string, region interval.Region) (records []phaseblock.Record, err error) {
	f, err := vcf.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	records, err = phaseblock.Collect(&variantIterator{s: f.Scanner, region: region})
	if e := f.Close(ctx); e != nil && err == nil {
		err = e
	}
	return records, err
}

// Records extracts the phased records of the input at path that overlap
// region.  The reader is chosen by the file suffix.
func Records(ctx context.Context, path string, region interval.Region, opts *Opts) ([]phaseblock.Record, error) {
	kind, suffix := kindOf(path)
	switch {
	case kind == variantSource:
		return variantRecords(ctx, path, region)
	case suffix == ".cram":
		return nil, fmt.Errorf("phasemap.Records: %s: CRAM input is not supported, convert it to BAM first", path)
	case kind == alignmentSource:
		return readRecords(path, region, opts)
	}
	log.Debug.Printf("phasemap: unrecognized input %s", path)
	return nil, fmt.Errorf("phasemap.Records: %s: unknown file type, expecting .bam, .cram, .vcf, .vcf.gz or .vcf.bgz", path)
}
