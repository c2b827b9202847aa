// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pileup

import (
	"github.com/grailbio/aei/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
)

// Read is one alignment's view of a single reference position.
type Read struct {
	Rec *sam.Record
	// QPos is the 0-based offset in Rec.Seq of the base aligned to the
	// column's position, or -1 if Rec spans the position with a deletion or a
	// reference skip.
	QPos int
}

// Column is the set of reads overlapping one reference position.
type Column struct {
	// Pos is 0-based.
	Pos   PosType
	Reads []Read
}

// Scanner turns a coordinate-sorted record iterator into a sequence of
// columns, one per covered position in [start, end).  Positions that no read
// overlaps are skipped.  A Scanner is not restartable; it does not close the
// underlying iterator.
type Scanner struct {
	iter     bamprovider.Iterator
	pos, end PosType
	pending  *sam.Record
	iterDone bool
	active   []activeRead
	col      Column
	err      error
}

type activeRead struct {
	rec    *sam.Record
	mapEnd PosType
}

// NewScanner creates a Scanner over the 0-based half-open range [start, end).
func NewScanner(iter bamprovider.Iterator, start, end PosType) *Scanner {
	return &Scanner{iter: iter, pos: start, end: end}
}

// fill moves the next record from the iterator into s.pending, if there is
// one.
func (s *Scanner) fill() {
	for s.pending == nil && !s.iterDone {
		if !s.iter.Scan() {
			s.iterDone = true
			s.err = s.iter.Err()
			return
		}
		rec := s.iter.Record()
		if (rec.Flags&sam.Unmapped != 0) || (len(rec.Cigar) == 0) {
			continue
		}
		s.pending = rec
	}
}

// Scan advances to the next covered position.  It returns false once the
// range is exhausted or an error occurs.
func (s *Scanner) Scan() bool {
	for s.err == nil && s.pos < s.end {
		// Admit every record starting at or before pos.
		for {
			s.fill()
			if s.pending == nil || PosType(s.pending.Pos) > s.pos {
				break
			}
			span, _ := s.pending.Cigar.Lengths()
			s.active = append(s.active, activeRead{
				rec:    s.pending,
				mapEnd: PosType(s.pending.Pos + span),
			})
			s.pending = nil
		}
		// Retire records ending at or before pos.
		n := 0
		for _, a := range s.active {
			if a.mapEnd > s.pos {
				s.active[n] = a
				n++
			}
		}
		s.active = s.active[:n]

		if len(s.active) == 0 {
			if s.pending == nil {
				// Nothing left to cover the rest of the range.
				s.pos = s.end
				return false
			}
			s.pos = PosType(s.pending.Pos)
			continue
		}

		s.col.Pos = s.pos
		s.col.Reads = s.col.Reads[:0]
		for _, a := range s.active {
			s.col.Reads = append(s.col.Reads, Read{Rec: a.rec, QPos: QueryPos(a.rec, s.pos)})
		}
		s.pos++
		return true
	}
	return false
}

// Column returns the current column.  It is valid until the next call to
// Scan.
func (s *Scanner) Column() *Column {
	return &s.col
}

// Err returns the error reported by the underlying iterator, if any.
func (s *Scanner) Err() error {
	return s.err
}

// QueryPos returns the 0-based offset in rec.Seq of the base aligned to the
// reference position pos, or -1 if rec has no base aligned there (pos falls
// in a deletion or a reference skip, or outside the alignment).
func QueryPos(rec *sam.Record, pos PosType) int {
	posInRef := PosType(rec.Pos)
	posInRead := 0
	if pos < posInRef {
		return -1
	}
	for _, co := range rec.Cigar {
		cLen := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if pos < posInRef+PosType(cLen) {
				return posInRead + int(pos-posInRef)
			}
			posInRef += PosType(cLen)
			posInRead += cLen
		case sam.CigarInsertion, sam.CigarSoftClipped:
			posInRead += cLen
		case sam.CigarDeletion, sam.CigarSkipped:
			if pos < posInRef+PosType(cLen) {
				return -1
			}
			posInRef += PosType(cLen)
		}
		// Hard clips and padding consume neither the read nor the reference.
	}
	return -1
}
