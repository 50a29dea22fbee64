package vcf

import (
	"context"
	"io"

	"github.com/brentp/bix"
	"github.com/brentp/irelate/interfaces"
	"github.com/brentp/vcfgo"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Index suffixes recognized next to a bgzipped VCF, in lookup order.
var indexSuffixes = []string{".csi", ".tbi"}

// HasIndex reports whether a tabix or CSI index exists next to path.
func HasIndex(ctx context.Context, path string) bool {
	for _, suffix := range indexSuffixes {
		if _, err := file.Stat(ctx, path+suffix); err == nil {
			return true
		}
	}
	return false
}

// IndexedFile is a bgzipped VCF with a tabix or CSI index.  Only local paths
// ending in .vcf.gz or .vcf.bgz are supported.
type IndexedFile struct {
	path string
	tbx  *bix.Bix
}

// OpenIndexed opens the bgzipped VCF at path and its index.  The caller must
// Close the returned file.
func OpenIndexed(path string) (*IndexedFile, error) {
	tbx, err := bix.New(path)
	if err != nil {
		if tbx != nil {
			tbx.Close() // nolint: errcheck
		}
		return nil, errors.Wrapf(err, "vcf.OpenIndexed %s", path)
	}
	if tbx.VReader == nil {
		tbx.Close() // nolint: errcheck
		return nil, errors.Wrapf(ErrNoHeader, "vcf.OpenIndexed %s", path)
	}
	return &IndexedFile{path: path, tbx: tbx}, nil
}

// Samples returns the sample names of the file.
func (f *IndexedFile) Samples() []string {
	return f.tbx.VReader.Header.SampleNames
}

// Close releases the file and its index.
func (f *IndexedFile) Close() error {
	return f.tbx.Close()
}

type position struct {
	chrom      string
	start, end uint32
}

func (p position) Chrom() string { return p.chrom }
func (p position) Start() uint32 { return p.start }
func (p position) End() uint32   { return p.end }

// Query returns the variants on chrom that overlap the 0-based, half-open
// range [start, end).  An unknown chrom yields no variants, and so does a
// file without sample columns since none of its variants can be phased.
func (f *IndexedFile) Query(chrom string, start, end int) (*QueryIterator, error) {
	if len(f.Samples()) == 0 {
		// vcfgo cannot parse sites-only lines coming out of bix.
		return &QueryIterator{path: f.path}, nil
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	it, err := f.tbx.Query(position{chrom: chrom, start: uint32(start), end: uint32(end)})
	if err != nil {
		return nil, errors.Wrapf(err, "vcf.Query %s %s:%d-%d", f.path, chrom, start, end)
	}
	return &QueryIterator{path: f.path, it: it}, nil
}

// QueryIterator iterates over the result of IndexedFile.Query.  Scan, Err and
// Close follow the Scanner conventions.
type QueryIterator struct {
	path string
	it   interfaces.RelatableIterator
	err  error
}

// Scan fills v with the next variant.  It returns false at the end of the
// range or on error.
func (q *QueryIterator) Scan(v *Variant) bool {
	if q.err != nil || q.it == nil {
		return false
	}
	rel, err := q.it.Next()
	if err == io.EOF {
		return false
	}
	if err != nil {
		q.err = err
		return false
	}
	var variant *vcfgo.Variant
	if w, ok := rel.(interfaces.VarWrap); ok {
		variant, _ = w.IVariant.(*vcfgo.Variant)
	}
	if variant == nil {
		q.err = errors.Errorf("vcf.Scan %s: unexpected record type %T", q.path, rel)
		return false
	}
	*v = Variant{
		Chrom: variant.Chromosome,
		Pos:   int(variant.Pos) - 1,
		Ref:   variant.Reference,
	}
	// Per-sample parse errors (say a malformed GT) leave Fields intact; only
	// PS matters here.
	_ = variant.Header.ParseSamples(variant)
	if len(variant.Samples) == 0 || variant.Samples[0] == nil {
		return true
	}
	if v.PhaseSet, v.HasPhaseSet, q.err = parsePhaseSet(variant.Samples[0].Fields["PS"]); q.err != nil {
		q.err = errors.Wrapf(q.err, "%s:%d", v.Chrom, variant.Pos)
		return false
	}
	return true
}

// Err returns the iteration error, if any.
func (q *QueryIterator) Err() error {
	return q.err
}

// Close releases the per-query reader.
func (q *QueryIterator) Close() error {
	if q.it == nil {
		return nil
	}
	return q.it.Close()
}
