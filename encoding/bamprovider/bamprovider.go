package bamprovider

import (
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// BAMProvider reads windows of an indexed BAM file.  Path and Index may name
// any location github.com/grailbio/base/file can open.
type BAMProvider struct {
	// Path of the BAM file.  Must be nonempty.
	Path string
	// Index of the BAM file.  Defaults to Path + ".bai".
	Index string
	// Parallelism is the number of BGZF decompression goroutines per
	// iterator.
	Parallelism int

	// err collects the first error of the provider and of its iterators.
	err errorreporter.T

	mu      sync.Mutex
	nOpen   int
	header  *sam.Header
	indexes *bam.Index
}

// GetHeader implements the Provider interface.  The header is read once and
// cached.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header == nil {
		h, err := b.readHeader()
		if err != nil {
			b.err.Set(err)
			return nil, err
		}
		b.header = h
	}
	return b.header, nil
}

func (b *BAMProvider) readHeader() (h *sam.Header, err error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, b.Path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, fmt.Errorf("bamprovider: %s: %v", b.Path, err)
	}
	defer r.Close() // nolint: errcheck
	return r.Header(), nil
}

// index loads the BAM index on first use.
func (b *BAMProvider) index() (*bam.Index, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexes != nil {
		return b.indexes, nil
	}
	path := b.Index
	if path == "" {
		path = b.Path + ".bai"
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	if b.indexes, err = bam.ReadIndex(in.Reader(ctx)); err != nil {
		return nil, fmt.Errorf("bamprovider: index %s: %v", path, err)
	}
	return b.indexes, nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	n := b.nOpen
	b.mu.Unlock()
	if n != 0 {
		vlog.Fatalf("bamprovider: %s: closed with %d open iterator(s)", b.Path, n)
	}
	return b.err.Err()
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator(ref *sam.Reference, start, end int) Iterator {
	b.mu.Lock()
	b.nOpen++
	b.mu.Unlock()
	w := &windowIterator{provider: b, ref: ref, start: start, end: end}
	w.err = w.open()
	return w
}

// windowIterator yields the reads of one provider that overlap
// [start, end) on ref.
type windowIterator struct {
	provider   *BAMProvider
	ref        *sam.Reference
	start, end int

	in     file.File
	reader *bam.Reader
	iter   *bam.Iterator
	rec    *sam.Record
	// err is io.EOF once the window is exhausted.
	err error
}

func (w *windowIterator) open() error {
	b := w.provider
	switch {
	case w.ref == nil:
		return fmt.Errorf("bamprovider.NewIterator: %s: nil reference", b.Path)
	case w.start >= w.end:
		return fmt.Errorf("bamprovider.NewIterator: %s: empty window %s:%d-%d", b.Path, w.ref.Name(), w.start, w.end)
	}
	idx, err := b.index()
	if err != nil {
		return err
	}
	chunks, err := idx.Chunks(w.ref, w.start, w.end)
	// A reference past the last one holding reads is absent from the index.
	if err == index.ErrInvalid || err == index.ErrNoReference || (err == nil && len(chunks) == 0) {
		vlog.VI(1).Infof("%s: nothing indexed in %s:%d-%d", b.Path, w.ref.Name(), w.start, w.end)
		return io.EOF
	}
	if err != nil {
		return err
	}
	ctx := vcontext.Background()
	if w.in, err = file.Open(ctx, b.Path); err != nil {
		return err
	}
	parallelism := b.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	if w.reader, err = bam.NewReader(w.in.Reader(ctx), parallelism); err != nil {
		return err
	}
	w.iter, err = bam.NewIterator(w.reader, chunks)
	return err
}

// Scan implements the Iterator interface.  Index chunks may hold reads
// outside the window; those are skipped.
func (w *windowIterator) Scan() bool {
	if w.err != nil {
		return false
	}
	for w.iter.Next() {
		r := w.iter.Record()
		if r.Ref.ID() == w.ref.ID() && r.Pos < w.end && r.End() > w.start {
			w.rec = r
			return true
		}
	}
	if w.err = w.iter.Error(); w.err == nil {
		w.err = io.EOF
	}
	return false
}

// Record implements the Iterator interface.
func (w *windowIterator) Record() *sam.Record { return w.rec }

// Err implements the Iterator interface.
func (w *windowIterator) Err() error {
	if w.err == io.EOF {
		return nil
	}
	return w.err
}

func (w *windowIterator) setErr(err error) {
	if err != nil && w.Err() == nil {
		w.err = err
	}
}

// Close implements the Iterator interface.
func (w *windowIterator) Close() error {
	if w.iter != nil {
		w.setErr(w.iter.Close())
		w.iter = nil
	}
	if w.reader != nil {
		w.setErr(w.reader.Close())
		w.reader = nil
	}
	if w.in != nil {
		w.setErr(w.in.Close(vcontext.Background()))
		w.in = nil
	}
	err := w.Err()
	b := w.provider
	b.err.Set(err)
	b.mu.Lock()
	b.nOpen--
	b.mu.Unlock()
	return err
}
