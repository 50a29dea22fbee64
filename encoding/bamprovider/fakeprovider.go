package bamprovider

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// fakeProvider serves in-memory reads, grouped by reference ID.  For tests.
type fakeProvider struct {
	header *sam.Header
	byRef  map[int][]*sam.Record
}

// NewFakeProvider returns a Provider whose header is header and whose
// iterators yield copies of those recs that overlap the requested window, in
// the order given.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	p := &fakeProvider{header: header, byRef: map[int][]*sam.Record{}}
	for _, r := range recs {
		id := r.Ref.ID()
		p.byRef[id] = append(p.byRef[id], r)
	}
	return p
}

func (p *fakeProvider) GetHeader() (*sam.Header, error) { return p.header, nil }

func (p *fakeProvider) Close() error { return nil }

func (p *fakeProvider) NewIterator(ref *sam.Reference, start, end int) Iterator {
	if ref == nil || start >= end {
		return NewErrorIterator(fmt.Errorf("bamprovider.fakeProvider: bad window %v:%d-%d", ref, start, end))
	}
	var hits []*sam.Record
	for _, r := range p.byRef[ref.ID()] {
		if r.Pos < end && r.End() > start {
			hits = append(hits, r)
		}
	}
	return &sliceIterator{recs: hits, idx: -1}
}

// sliceIterator walks a fixed list of reads.
type sliceIterator struct {
	recs []*sam.Record
	idx  int
}

func (s *sliceIterator) Scan() bool {
	s.idx++
	return s.idx < len(s.recs)
}

// Record returns a copy, so that callers cannot alter the provider's reads.
func (s *sliceIterator) Record() *sam.Record {
	r := sam.GetFromFreePool()
	*r = *s.recs[s.idx]
	return r
}

func (s *sliceIterator) Err() error   { return nil }
func (s *sliceIterator) Close() error { return nil }
