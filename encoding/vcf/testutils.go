package vcf

import (
	"bytes"
	"os"
	"strconv"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"
	"github.com/pkg/errors"
)

type contigSpan struct {
	name       string
	start, end int
	chunk      bgzf.Chunk
}

func (c *contigSpan) RefName() string { return c.name }
func (c *contigSpan) Start() int      { return c.start }
func (c *contigSpan) End() int        { return c.end }

// WriteIndexedVCF bgzips data to path and writes a tabix index at path +
// ".tbi".  data must be a complete VCF sorted by position with each contig in
// one run, and must fit in a single BGZF block.  It is meant for tests.
func WriteIndexedVCF(path string, data string) error {
	if len(data) >= bgzf.BlockSize {
		return errors.Errorf("vcf.WriteIndexedVCF: %d bytes do not fit in one BGZF block", len(data))
	}
	if data != "" && data[len(data)-1] != '\n' {
		data += "\n"
	}
	spans, err := contigSpans([]byte(data))
	if err != nil {
		return err
	}
	if err := writeBGZF(path, []byte(data)); err != nil {
		return err
	}

	idx := tabix.New()
	idx.Format = 2 // VCF
	idx.NameColumn, idx.BeginColumn, idx.EndColumn = 1, 2, 0
	idx.MetaChar = '#'
	// Index.Add does not remember contig names, so each contig gets a single
	// entry spanning all its lines.
	for _, span := range spans {
		if err := idx.Add(span, span.chunk, true, true); err != nil {
			return errors.Wrapf(err, "vcf.WriteIndexedVCF %s", path)
		}
	}
	out, err := os.Create(path + ".tbi")
	if err != nil {
		return err
	}
	w := bgzf.NewWriter(out, 1)
	if err := tabix.WriteTo(w, idx); err != nil {
		w.Close()   // nolint: errcheck
		out.Close() // nolint: errcheck
		return err
	}
	if err := w.Close(); err != nil {
		out.Close() // nolint: errcheck
		return err
	}
	return out.Close()
}

// contigSpans returns the extent and the single-block chunk of each contig's
// run of lines in data.
func contigSpans(data []byte) ([]*contigSpan, error) {
	var (
		spans []*contigSpan
		seen  = map[string]bool{}
	)
	for off := 0; off < len(data); {
		n := bytes.IndexByte(data[off:], '\n') + 1
		line := data[off : off+n-1]
		begin, end := off, off+n
		off = end
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := bytes.SplitN(line, []byte{'\t'}, colAlt+1)
		if len(fields) <= colRef {
			return nil, errors.Wrapf(ErrInvalid, "%q", line)
		}
		pos1, err := strconv.Atoi(string(fields[colPos]))
		if err != nil || pos1 <= 0 {
			return nil, errors.Wrapf(ErrInvalid, "bad POS %q", fields[colPos])
		}
		chrom := string(fields[colChrom])
		start, stop := pos1-1, pos1-1+len(fields[colRef])
		chunk := bgzf.Chunk{
			Begin: bgzf.Offset{Block: uint16(begin)},
			End:   bgzf.Offset{Block: uint16(end)},
		}
		if len(spans) == 0 || spans[len(spans)-1].name != chrom {
			if seen[chrom] {
				return nil, errors.Errorf("vcf.WriteIndexedVCF: %s is not in one run", chrom)
			}
			seen[chrom] = true
			spans = append(spans, &contigSpan{name: chrom, start: start, end: stop, chunk: chunk})
			continue
		}
		span := spans[len(spans)-1]
		if start < span.start {
			return nil, errors.Errorf("vcf.WriteIndexedVCF: %s:%d is out of order", chrom, pos1)
		}
		if stop > span.end {
			span.end = stop
		}
		span.chunk.End = chunk.End
	}
	return spans, nil
}

func writeBGZF(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bgzf.NewWriter(out, 1)
	if _, err := w.Write(data); err != nil {
		w.Close()   // nolint: errcheck
		out.Close() // nolint: errcheck
		return err
	}
	if err := w.Close(); err != nil {
		out.Close() // nolint: errcheck
		return err
	}
	return out.Close()
}
