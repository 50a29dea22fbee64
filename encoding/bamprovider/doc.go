// Package bamprovider provides utilities for scanning the reads of an indexed
// BAM file that overlap one genomic window.
//
// The Provider is an interface for reading BAM data; BAMProvider reads a file
// through its .bai index, and NewFakeProvider serves in-memory records for
// unittests.  PhaseSet extracts the PS (phase set) aux tag from a read.
package bamprovider
