package vcf

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

var (
	// ErrNoHeader is returned when the input ends before the #CHROM line.
	ErrNoHeader = errors.New("missing #CHROM header line")
	// ErrInvalid is returned when a data line is malformed.
	ErrInvalid = errors.New("invalid VCF line")
)

// Column indexes of the fixed VCF fields.
const (
	colChrom = iota
	colPos
	colID
	colRef
	colAlt
	colQual
	colFilter
	colInfo
	colFormat
	colFirstSample
)

const maxLineSize = 64 << 20

// Variant is one VCF data line.
type Variant struct {
	Chrom string
	// Pos is the 0-based position of the first reference base.
	Pos int
	Ref string
	// PhaseSet is the FORMAT/PS value of the first sample.  It is only
	// meaningful when HasPhaseSet is true.
	PhaseSet    uint32
	HasPhaseSet bool
}

// End returns the 0-based exclusive end of the reference allele.
func (v *Variant) End() int {
	return v.Pos + len(v.Ref)
}

var errEOF = errors.New("eof")

// Scanner reads variants from VCF data.  It is not thread safe.
type Scanner struct {
	b       *bufio.Scanner
	err     error
	lineIdx int
	samples []string
	fields  [][]byte
}

// NewScanner reads the meta-information and header lines of r, and returns
// a Scanner positioned at the first variant.
func NewScanner(r io.Reader) (*Scanner, error) {
	s := &Scanner{b: bufio.NewScanner(r)}
	s.b.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for s.b.Scan() {
		s.lineIdx++
		line := s.b.Bytes()
		if bytes.HasPrefix(line, []byte("##")) {
			continue
		}
		if !bytes.HasPrefix(line, []byte("#CHROM")) {
			return nil, errors.Wrapf(ErrNoHeader, "line %d", s.lineIdx)
		}
		cols := bytes.Split(line, []byte{'\t'})
		if len(cols) > colFirstSample {
			for _, col := range cols[colFirstSample:] {
				s.samples = append(s.samples, string(col))
			}
		}
		return s, nil
	}
	if err := s.b.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoHeader
}

// Samples returns the sample names listed in the header, in column order.
func (s *Scanner) Samples() []string {
	return s.samples
}

// Scan reads the next variant into v.  It returns false at the end of input
// or on error; Err distinguishes the two.
func (s *Scanner) Scan(v *Variant) bool {
	if s.err != nil {
		return false
	}
	var line []byte
	for {
		if !s.b.Scan() {
			if s.err = s.b.Err(); s.err == nil {
				s.err = errEOF
			}
			return false
		}
		s.lineIdx++
		line = s.b.Bytes()
		if len(line) != 0 {
			break
		}
	}
	s.fields = splitTabs(s.fields[:0], line)
	if len(s.fields) <= colInfo {
		s.err = errors.Wrapf(ErrInvalid, "line %d: %d columns", s.lineIdx, len(s.fields))
		return false
	}
	pos1, err := strconv.Atoi(gunsafe.BytesToString(s.fields[colPos]))
	if err != nil || pos1 <= 0 {
		s.err = errors.Wrapf(ErrInvalid, "line %d: bad POS %q", s.lineIdx, s.fields[colPos])
		return false
	}
	v.Chrom = string(s.fields[colChrom])
	v.Pos = pos1 - 1
	v.Ref = string(s.fields[colRef])
	v.PhaseSet, v.HasPhaseSet = 0, false
	if len(s.fields) > colFirstSample {
		if v.PhaseSet, v.HasPhaseSet, s.err = phaseSet(s.fields[colFormat], s.fields[colFirstSample]); s.err != nil {
			s.err = errors.Wrapf(s.err, "line %d", s.lineIdx)
			return false
		}
	}
	return true
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// phaseSet finds the PS key in format and returns the matching value of
// sample.  A missing key or a "." value yields ok == false.
func phaseSet(format, sample []byte) (ps uint32, ok bool, err error) {
	keyIdx := -1
	for i, key := range bytes.Split(format, []byte{':'}) {
		if string(key) == "PS" {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return 0, false, nil
	}
	values := bytes.Split(sample, []byte{':'})
	if keyIdx >= len(values) {
		// Trailing FORMAT fields may be dropped.
		return 0, false, nil
	}
	return parsePhaseSet(gunsafe.BytesToString(values[keyIdx]))
}

// parsePhaseSet parses one PS sample value.  An empty or "." value yields
// ok == false.
func parsePhaseSet(value string) (ps uint32, ok bool, err error) {
	if value == "" || value == "." {
		return 0, false, nil
	}
	// PS is a signed VCF Integer; negative values keep their bits.
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(ErrInvalid, "bad PS value %q", value)
	}
	return uint32(n), true, nil
}

func splitTabs(fields [][]byte, line []byte) [][]byte {
	for {
		i := bytes.IndexByte(line, '\t')
		if i < 0 {
			return append(fields, line)
		}
		fields = append(fields, line[:i])
		line = line[i+1:]
	}
}
