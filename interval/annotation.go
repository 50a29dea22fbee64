package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// Annotation is a BED interval drawn below the phase blocks.  Name is the
// optional fourth BED column.
type Annotation struct {
	Start int
	End   int
	Name  string
}

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

func isBEDHeader(line []byte) bool {
	return bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("track")) ||
		bytes.HasPrefix(line, []byte("browser"))
}

// ReadAnnotations returns the BED intervals from reader that overlap region,
// in file order.
func ReadAnnotations(reader io.Reader, region Region) (annots []Annotation, err error) {
	scanner := bufio.NewScanner(reader)
	var tokens [4][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if isBEDHeader(curLine) {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken < 3 {
			if nToken == 0 {
				continue
			}
			err = fmt.Errorf("interval.ReadAnnotations: line %d has fewer tokens than expected", lineIdx)
			return
		}
		if gunsafe.BytesToString(tokens[0]) != region.RefName {
			continue
		}
		var start, end int
		if start, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return
		}
		if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return
		}
		if start < 0 || end < start {
			err = fmt.Errorf("interval.ReadAnnotations: invalid coordinate pair on line %d", lineIdx)
			return
		}
		if !region.Overlaps(region.RefName, start, end) {
			continue
		}
		annot := Annotation{Start: start, End: end}
		if nToken == 4 {
			annot.Name = string(tokens[3])
		}
		annots = append(annots, annot)
	}
	err = scanner.Err()
	return
}

// LoadAnnotations is a wrapper for ReadAnnotations that takes a path instead
// of an io.Reader.  Gzip- and bgzip-compressed files are supported.
func LoadAnnotations(ctx context.Context, path string, region Region) (annots []Annotation, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return
		}
		defer gz.Close()
		reader = gz
	}
	if annots, err = ReadAnnotations(reader, region); err != nil {
		return
	}
	log.Printf("%s: %d annotation(s) in %v", path, len(annots), region)
	return
}
