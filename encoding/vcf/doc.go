// Package vcf contains a minimal reader for VCF files, exposing the fields
// needed to place phased variants: contig, position, reference allele and the
// FORMAT/PS phase set of the first sample.
//
// Lines are tab-separated.  Meta-information lines start with "##", followed
// by one "#CHROM" header line naming the columns, followed by one line per
// variant:
//
//   #CHROM POS ID REF ALT QUAL FILTER INFO FORMAT sample1 ...
//   chr1   101 .  A   G   50   PASS   .    GT:PS  0|1:100
//
// POS is 1-based in the file; Variant.Pos is 0-based.
package vcf
