package bamprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// failedIterator is returned in place of a window iterator that could not be
// set up.  It is empty, and reports err from both Err and Close.
type failedIterator struct{ err error }

func (f failedIterator) Scan() bool          { return false }
func (f failedIterator) Record() *sam.Record { panic("bamprovider: Record called on a failed iterator") }
func (f failedIterator) Err() error          { return f.err }
func (f failedIterator) Close() error        { return f.err }

// NewErrorIterator returns an Iterator without records whose Err and Close
// return err.
func NewErrorIterator(err error) Iterator {
	return failedIterator{err}
}

// RefByName returns the reference of h called name, or nil.
func RefByName(h *sam.Header, name string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == name {
			return ref
		}
	}
	return nil
}

// NewWindowIterator returns an iterator over the reads of p that overlap the
// 0-based half-open window [start, end) of contig refName.  A contig missing
// from the header is an error.
func NewWindowIterator(p Provider, refName string, start, end int) Iterator {
	h, err := p.GetHeader()
	if err != nil {
		return NewErrorIterator(err)
	}
	ref := RefByName(h, refName)
	if ref == nil {
		return NewErrorIterator(fmt.Errorf("bamprovider.NewWindowIterator: contig %q not in the header (%d contigs)", refName, len(h.Refs())))
	}
	return p.NewIterator(ref, start, end)
}
