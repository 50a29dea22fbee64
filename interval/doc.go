/*Package interval handles the genomic windows bio-phaseblocks works on: the
  chrom:start-end query region given on the command line, and BED annotation
  intervals overlapping it.
  Coordinates are 0-based and half-open throughout; a region string's bounds
  are taken as given.
*/
package interval
