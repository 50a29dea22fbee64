package vcf

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// File is a VCF file opened for scanning.
type File struct {
	*Scanner
	in file.File
	gz *gzip.Reader
}

// Open opens the VCF at path.  Gzip- and bgzip-compressed files (.vcf.gz,
// .vcf.bgz) are decompressed transparently.  The caller must Close the
// returned File.
func Open(ctx context.Context, path string) (*File, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	f := &File{in: in}
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip || strings.HasSuffix(path, ".bgz") {
		if f.gz, err = gzip.NewReader(reader); err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, errors.Wrapf(err, "vcf.Open %s", path)
		}
		reader = f.gz
	}
	if f.Scanner, err = NewScanner(reader); err != nil {
		f.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "vcf.Open %s", path)
	}
	return f, nil
}

// Close releases the file.
func (f *File) Close(ctx context.Context) error {
	var err error
	if f.gz != nil {
		err = f.gz.Close()
	}
	if e := f.in.Close(ctx); e != nil && err == nil {
		err = e
	}
	return err
}
