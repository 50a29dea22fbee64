package vcf_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/phaseblocks/encoding/vcf"
	"github.com/grailbio/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=PS,Number=1,Type=Integer,Description="Phase set">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA12878	NA12891
chr1	101	.	A	G	50	PASS	.	GT:PS	0|1:101	0/1:.
chr1	201	.	AT	A	50	PASS	.	GT:PS	1|0:101	0/1
chr1	301	.	C	T	50	PASS	.	GT	0/1	0/1
chr1	401	.	G	C	50	PASS	.	GT:PS	0/1:.	0/1
chr2	501	rs1	T	TA	50	PASS	.	GT:DP:PS	0|1:30:-5	0/1:3:7
chr2	601	.	T	C	50	PASS	.	GT:PS:DP	0|1
`

func scanAll(t *testing.T, s *vcf.Scanner) []vcf.Variant {
	var variants []vcf.Variant
	var v vcf.Variant
	for s.Scan(&v) {
		variants = append(variants, v)
	}
	require.NoError(t, s.Err())
	return variants
}

var wantVariants = []vcf.Variant{
	{Chrom: "chr1", Pos: 100, Ref: "A", PhaseSet: 101, HasPhaseSet: true},
	{Chrom: "chr1", Pos: 200, Ref: "AT", PhaseSet: 101, HasPhaseSet: true},
	{Chrom: "chr1", Pos: 300, Ref: "C"},
	{Chrom: "chr1", Pos: 400, Ref: "G"},
	{Chrom: "chr2", Pos: 500, Ref: "T", PhaseSet: 0xfffffffb, HasPhaseSet: true},
	{Chrom: "chr2", Pos: 600, Ref: "T"},
}

func TestScanner(t *testing.T) {
	s, err := vcf.NewScanner(strings.NewReader(testVCF))
	require.NoError(t, err)
	assert.Equal(t, []string{"NA12878", "NA12891"}, s.Samples())
	variants := scanAll(t, s)
	assert.Equal(t, wantVariants, variants)
	assert.Equal(t, 202, variants[1].End())
}

func TestScannerErrors(t *testing.T) {
	_, err := vcf.NewScanner(strings.NewReader("##fileformat=VCFv4.2\n"))
	assert.Equal(t, vcf.ErrNoHeader, errors.Cause(err))

	_, err = vcf.NewScanner(strings.NewReader("chr1\t1\t.\tA\tG\n"))
	assert.Equal(t, vcf.ErrNoHeader, errors.Cause(err))

	for _, body := range []string{
		"chr1\t101\t.\tA\n",
		"chr1\tx\t.\tA\tG\t.\t.\t.\n",
		"chr1\t101\t.\tA\tG\t.\t.\t.\tGT:PS\t0|1:abc\n",
	} {
		s, err := vcf.NewScanner(strings.NewReader("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" + body))
		require.NoError(t, err)
		var v vcf.Variant
		assert.False(t, s.Scan(&v), body)
		assert.Equal(t, vcf.ErrInvalid, errors.Cause(s.Err()), body)
	}
}

func TestOpenGzip(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)
	ctx := vcontext.Background()

	for _, name := range []string{"test.vcf", "test.vcf.gz", "test.vcf.bgz"} {
		path := filepath.Join(tmpDir, name)
		out, err := file.Create(ctx, path)
		require.NoError(t, err)
		if strings.HasSuffix(name, "z") {
			gz := gzip.NewWriter(out.Writer(ctx))
			_, err = gz.Write([]byte(testVCF))
			require.NoError(t, err)
			require.NoError(t, gz.Close())
		} else {
			_, err = out.Writer(ctx).Write([]byte(testVCF))
			require.NoError(t, err)
		}
		require.NoError(t, out.Close(ctx))

		f, err := vcf.Open(ctx, path)
		require.NoError(t, err, name)
		assert.Equal(t, wantVariants, scanAll(t, f.Scanner), name)
		require.NoError(t, f.Close(ctx))
	}
}

func queryAll(t *testing.T, f *vcf.IndexedFile, chrom string, start, end int) []vcf.Variant {
	q, err := f.Query(chrom, start, end)
	require.NoError(t, err)
	var variants []vcf.Variant
	var v vcf.Variant
	for q.Scan(&v) {
		variants = append(variants, v)
	}
	require.NoError(t, q.Err())
	require.NoError(t, q.Close())
	return variants
}

func TestIndexedFile(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpDir, "test.vcf.gz")
	assert.False(t, vcf.HasIndex(ctx, path))
	require.NoError(t, vcf.WriteIndexedVCF(path, testVCF))
	assert.True(t, vcf.HasIndex(ctx, path))

	f, err := vcf.OpenIndexed(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"NA12878", "NA12891"}, f.Samples())

	tests := []struct {
		chrom      string
		start, end int
		want       []vcf.Variant
	}{
		{"chr1", 0, 100000, wantVariants[:4]},
		{"chr2", 0, 100000, wantVariants[4:]},
		// AT at 0-based 200 covers [200, 202).
		{"chr1", 150, 250, wantVariants[1:2]},
		{"chr1", 201, 202, wantVariants[1:2]},
		{"chr1", 202, 300, nil},
		{"chr3", 0, 100000, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, queryAll(t, f, tt.chrom, tt.start, tt.end), "%s:%d-%d", tt.chrom, tt.start, tt.end)
	}
	require.NoError(t, f.Close())
}

func TestIndexedFileErrors(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpDir)

	_, err := vcf.OpenIndexed(filepath.Join(tmpDir, "missing.vcf.gz"))
	assert.Error(t, err)

	path := filepath.Join(tmpDir, "bad.vcf.gz")
	require.NoError(t, vcf.WriteIndexedVCF(path, "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n"+
		"chr1\t101\t.\tA\tG\t.\t.\t.\tGT:PS\t0|1:abc\n"))
	f, err := vcf.OpenIndexed(path)
	require.NoError(t, err)
	q, err := f.Query("chr1", 0, 1000)
	require.NoError(t, err)
	var v vcf.Variant
	assert.False(t, q.Scan(&v))
	assert.Equal(t, vcf.ErrInvalid, errors.Cause(q.Err()))
	require.NoError(t, q.Close())
	require.NoError(t, f.Close())

	// Data lines out of order cannot be indexed.
	assert.Error(t, vcf.WriteIndexedVCF(filepath.Join(tmpDir, "unsorted.vcf.gz"), testVCF+"chr1\t5\t.\tA\tG\t.\t.\t.\n"))
}
