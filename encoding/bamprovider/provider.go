package bamprovider

import (
	"github.com/grailbio/hts/sam"
)

// ProviderOpts configures NewProvider.
type ProviderOpts struct {
	// Index is the path of the BAM index.  "" means the BAM path + ".bai".
	Index string
	// Parallelism is the number of BGZF decompression goroutines used by
	// each iterator.  Values <= 0 mean 1.
	Parallelism int
}

// Provider reads the reads of one alignment file, one window at a time.
// Implementations are thread safe.
type Provider interface {
	// GetHeader returns the file header.  The caller must not modify it.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over the reads on ref whose alignment
	// overlaps the 0-based half-open window [start, end).  Setup errors are
	// reported by the iterator's Err.
	NewIterator(ref *sam.Reference, start, end int) Iterator

	// Close releases the provider.  It must be called once, after every
	// iterator has been closed, and returns the first error seen by the
	// provider or any of its iterators.
	Close() error
}

// Iterator yields reads in coordinate order, bufio.Scanner style.  Not thread
// safe.
type Iterator interface {
	// Scan advances to the next read.  It returns false at the end of the
	// window or on error.
	Scan() bool
	// Record returns the read found by the last successful Scan.
	Record() *sam.Record
	// Err returns the iteration error, or nil at a clean end of window.
	Err() error
	// Close must be called once.  It returns Err().
	Close() error
}

// NewProvider returns a Provider for the indexed BAM file at path.  Later
// options override earlier ones.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	b := &BAMProvider{Path: path, Parallelism: 1}
	for _, o := range optList {
		if o.Index != "" {
			b.Index = o.Index
		}
		if o.Parallelism > 0 {
			b.Parallelism = o.Parallelism
		}
	}
	return b
}
