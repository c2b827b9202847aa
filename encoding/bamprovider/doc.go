// Package bamprovider provides utilities for querying an indexed BAM file one
// genomic range at a time.
//
// The Provider is an interface for reading the records overlapping a
// reference range. NewRefIterator resolves a contig name before querying.
package bamprovider
