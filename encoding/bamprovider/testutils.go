package bamprovider

import (
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// WriteIndexedBAM writes recs to a BAM file at path, and a matching .bai index
// at path + ".bai".  recs must be coordinate-sorted.  It is meant for tests.
func WriteIndexedBAM(path string, header *sam.Header, recs []*sam.Record) (err error) {
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	w, err := bam.NewWriter(out.Writer(ctx), header, 1)
	if err != nil {
		out.Close(ctx) // nolint: errcheck
		return err
	}
	for _, r := range recs {
		if err = w.Write(r); err != nil {
			w.Close() // nolint: errcheck
			out.Close(ctx) // nolint: errcheck
			return err
		}
	}
	if err = w.Close(); err != nil {
		out.Close(ctx) // nolint: errcheck
		return err
	}
	if err = out.Close(ctx); err != nil {
		return err
	}
	return writeIndex(path, path+".bai")
}

func writeIndex(bamPath, indexPath string) (err error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, bamPath)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return err
	}
	defer r.Close() // nolint: errcheck
	var idx bam.Index
	for {
		rec, e := r.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return e
		}
		if err = idx.Add(rec, r.LastChunk()); err != nil {
			return err
		}
	}
	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return bam.WriteIndex(out.Writer(ctx), &idx)
}
