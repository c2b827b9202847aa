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
package aei

import (
	"github.com/grailbio/aei/pileup"
	"github.com/grailbio/hts/sam"
)

// DiscardReason is the outcome of offering one read to an Accumulator.
type DiscardReason int

const (
	// Kept means the read's base was counted.
	Kept DiscardReason = iota
	// DiscardGap means the read spans the locus with a deletion or reference
	// skip, so no base is aligned to it.
	DiscardGap
	// DiscardDuplicate means the read is flagged as a duplicate.
	DiscardDuplicate
	// DiscardMapq means the read's mapping quality is below the cutoff.
	DiscardMapq
	// DiscardBaseQual means the base quality is at or below the cutoff, or
	// unavailable.
	DiscardBaseQual
	// DiscardUnknownReadGroup means the read's RG tag names a read group
	// that is not in the header.
	DiscardUnknownReadGroup
	// DiscardBase means the base is not one of A/C/G/T.
	DiscardBase
	nDiscardReasons
)

var discardReasonNames = [...]string{
	Kept:                    "kept",
	DiscardGap:              "gap",
	DiscardDuplicate:        "duplicate",
	DiscardMapq:             "mapq",
	DiscardBaseQual:         "basequal",
	DiscardUnknownReadGroup: "unknown-rg",
	DiscardBase:             "base",
}

func (r DiscardReason) String() string {
	if r < 0 || r >= nDiscardReasons {
		return "invalid"
	}
	return discardReasonNames[r]
}

// DiscardCounts tallies read outcomes, indexed by DiscardReason.
type DiscardCounts [nDiscardReasons]int

// AccumulatorOpts configures the read filters of an Accumulator.
type AccumulatorOpts struct {
	MinBaseQual int
	MinMapq     int
	// BaseIndex maps base symbols to allele indexes.  If nil,
	// pileup.ASCIIToBaseIndex is used.
	BaseIndex *pileup.BaseIndexTable
}

var rgTag = sam.NewTag("RG")

// Accumulator collects the allele counts of every sample of one alignment
// source at one locus.
type Accumulator struct {
	chrom   string
	target0 pileup.PosType
	samples *SampleSet
	opts    AccumulatorOpts

	counts   []AlleleCounts
	discards DiscardCounts
}

// NewAccumulator creates an Accumulator for the locus at 1-based position
// pos1 of chrom.
func NewAccumulator(chrom string, pos1 int, samples *SampleSet, opts AccumulatorOpts) *Accumulator {
	if opts.BaseIndex == nil {
		opts.BaseIndex = &pileup.ASCIIToBaseIndex
	}
	return &Accumulator{
		chrom:   chrom,
		target0: pileup.PosType(pos1 - 1),
		samples: samples,
		opts:    opts,
		counts:  make([]AlleleCounts, samples.Len()),
	}
}

// Target0 returns the 0-based position of the locus.
func (a *Accumulator) Target0() pileup.PosType {
	return a.target0
}

// Add folds one pileup column into the counts.  Columns at any position
// other than the locus are ignored.
func (a *Accumulator) Add(col *pileup.Column) {
	if col.Pos != a.target0 {
		return
	}
	for _, read := range col.Reads {
		a.discards[a.AddRead(read)]++
	}
}

// AddRead offers one read covering the locus and reports whether it was
// counted.
func (a *Accumulator) AddRead(read pileup.Read) DiscardReason {
	rec := read.Rec
	if read.QPos < 0 || read.QPos >= rec.Seq.Length {
		return DiscardGap
	}
	if rec.Flags&sam.Duplicate != 0 {
		return DiscardDuplicate
	}
	if int(rec.MapQ) < a.opts.MinMapq {
		return DiscardMapq
	}
	// A missing quality string is stored as all 0xff.
	if read.QPos >= len(rec.Qual) || rec.Qual[read.QPos] == 0xff || int(rec.Qual[read.QPos]) <= a.opts.MinBaseQual {
		return DiscardBaseQual
	}
	sampleIdx := 0
	if aux := rec.AuxFields.Get(rgTag); aux != nil {
		id, ok := aux.Value().(string)
		if !ok {
			return DiscardUnknownReadGroup
		}
		if sampleIdx, ok = a.samples.Index(id); !ok {
			return DiscardUnknownReadGroup
		}
	}
	baseIdx := a.opts.BaseIndex.Index(rec.Seq.BaseChar(read.QPos))
	if baseIdx < 0 {
		return DiscardBase
	}
	a.counts[sampleIdx][baseIdx]++
	return Kept
}

// Counts returns the counts of the i'th sample.
func (a *Accumulator) Counts(i int) AlleleCounts {
	return a.counts[i]
}

// Discards returns the tally of read outcomes seen by Add.
func (a *Accumulator) Discards() DiscardCounts {
	return a.discards
}
