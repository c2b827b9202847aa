// Package locus reads lists of genomic positions to be examined, one per
// line, in the tab-separated layout "chrom <ignored> pos id ...".  Positions
// are 1-based.
package locus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/aei/interval"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Locus is one position to examine.
type Locus struct {
	Chrom string
	// Pos is 1-based.
	Pos int
	ID  string
}

// Pos0 returns the 0-based coordinate of the locus.
func (l Locus) Pos0() interval.PosType {
	return interval.PosType(l.Pos - 1)
}

func (l Locus) String() string {
	return fmt.Sprintf("%s:%d(%s)", l.Chrom, l.Pos, l.ID)
}

const (
	colChrom = 0
	colPos   = 2
	colID    = 3
	nCols    = 4
)

// Scanner yields the loci of a list in file order.  Blank lines and lines
// starting with '#' are skipped; columns beyond the fourth are ignored.
type Scanner struct {
	path   string
	sc     *bufio.Scanner
	lineNo int
	cur    Locus
	err    error

	in file.File
	gz *gzip.Reader
}

// NewScanner creates a Scanner that reads from r.  path is used only in error
// messages.
func NewScanner(r io.Reader, path string) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	return &Scanner{path: path, sc: sc}
}

// Open opens the locus list at path.  Files whose name ends in ".gz" are
// decompressed.  The caller must call Close.
func Open(ctx context.Context, path string) (*Scanner, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	reader := io.Reader(in.Reader(ctx))
	var gz *gzip.Reader
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if gz, err = gzip.NewReader(reader); err != nil {
			in.Close(ctx)
			return nil, errors.Wrapf(err, "%s", path)
		}
		reader = gz
	}
	s := NewScanner(reader, path)
	s.in = in
	s.gz = gz
	return s, nil
}

// splitTabs saves up to len(tokens) tab-separated fields of line in tokens,
// returning the number of fields saved.
func splitTabs(tokens [][]byte, line []byte) int {
	n := 0
	for n < len(tokens) {
		i := bytes.IndexByte(line, '\t')
		if i < 0 {
			tokens[n] = line
			return n + 1
		}
		tokens[n] = line[:i]
		line = line[i+1:]
		n++
	}
	return n
}

// Scan advances to the next locus.  It returns false at the end of the input
// or on the first malformed line; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var tokens [nCols][]byte
	for s.sc.Scan() {
		s.lineNo++
		line := bytes.TrimRight(s.sc.Bytes(), "\r")
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}
		if n := splitTabs(tokens[:], line); n < nCols {
			s.err = errors.Errorf("%s:%d: expected at least %d tab-separated columns, found %d", s.path, s.lineNo, nCols, n)
			return false
		}
		pos, err := strconv.ParseInt(gunsafe.BytesToString(tokens[colPos]), 10, 32)
		if err != nil {
			s.err = errors.Wrapf(err, "%s:%d: bad position", s.path, s.lineNo)
			return false
		}
		if pos <= 0 {
			s.err = errors.Errorf("%s:%d: position %d is not positive", s.path, s.lineNo, pos)
			return false
		}
		if len(tokens[colChrom]) == 0 {
			s.err = errors.Errorf("%s:%d: empty chromosome name", s.path, s.lineNo)
			return false
		}
		s.cur = Locus{
			Chrom: string(tokens[colChrom]),
			Pos:   int(pos),
			ID:    string(tokens[colID]),
		}
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = errors.Wrapf(err, "%s:%d", s.path, s.lineNo)
	}
	return false
}

// Locus returns the locus read by the last successful Scan.
func (s *Scanner) Locus() Locus {
	return s.cur
}

// Err returns the first error encountered, or nil at a clean end of input.
func (s *Scanner) Err() error {
	return s.err
}

// Close releases the file opened by Open.  It is a no-op for scanners created
// with NewScanner.
func (s *Scanner) Close(ctx context.Context) error {
	var err error
	if s.gz != nil {
		err = s.gz.Close()
		s.gz = nil
	}
	if s.in != nil {
		if cerr := s.in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
		s.in = nil
	}
	return err
}

// ReadAll returns every locus in the list at path.
func ReadAll(ctx context.Context, path string) (loci []Locus, err error) {
	s, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for s.Scan() {
		loci = append(loci, s.Locus())
	}
	return loci, s.Err()
}
