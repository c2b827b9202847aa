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
package aei_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/aei/encoding/bamprovider"
	"github.com/grailbio/aei/pileup/aei"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
)

// newHeader creates a header with contigs chr1 and chr2, and one read group
// per entry of rgs, given as "ID:SM" or just "ID".
func newHeader(t *testing.T, rgs ...string) (*sam.Header, *sam.Reference, *sam.Reference) {
	text := "@HD\tVN:1.4\tSO:coordinate\n"
	for _, rg := range rgs {
		parts := strings.SplitN(rg, ":", 2)
		text += "@RG\tID:" + parts[0]
		if len(parts) == 2 {
			text += "\tSM:" + parts[1]
		}
		text += "\n"
	}
	chr1, err := sam.NewReference("chr1", "", "", 100000, nil, nil)
	assert.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 100000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader([]byte(text), []*sam.Reference{chr1, chr2})
	assert.NoError(t, err)
	return header, chr1, chr2
}

type readOpts struct {
	cigar string
	qual  byte
	mapq  byte
	flags sam.Flags
	rg    string
}

var defaultReadOpts = readOpts{qual: 30, mapq: 60}

func withFlags(flags sam.Flags) readOpts {
	o := defaultReadOpts
	o.flags = flags
	return o
}

// newRead creates a record at 0-based position pos0.  seq is the full read
// sequence; the CIGAR defaults to all-match.
func newRead(t *testing.T, name string, ref *sam.Reference, pos0 int, seq string, o readOpts) *sam.Record {
	cigar := o.cigar
	if cigar == "" {
		cigar = fmt.Sprintf("%dM", len(seq))
	}
	c, err := sam.ParseCigar([]byte(cigar))
	assert.NoError(t, err)
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = o.qual
	}
	r := &sam.Record{
		Name:  name,
		Ref:   ref,
		Pos:   pos0,
		MapQ:  o.mapq,
		Cigar: c,
		Flags: o.flags,
		Seq:   sam.NewSeq([]byte(seq)),
		Qual:  qual,
	}
	if o.rg != "" {
		aux, err := sam.NewAux(sam.NewTag("RG"), o.rg)
		assert.NoError(t, err)
		r.AuxFields = append(r.AuxFields, aux)
	}
	return r
}

// pileupReads returns n reads whose base at 0-based position pos0 is base.
// The reads are 10 bases long and start at pos0-5.
func pileupReads(t *testing.T, prefix string, ref *sam.Reference, pos0 int, base byte, n int, o readOpts) []*sam.Record {
	var recs []*sam.Record
	for i := 0; i < n; i++ {
		seq := []byte("GGGGGGGGGG")
		seq[5] = base
		recs = append(recs, newRead(t, fmt.Sprintf("%s%d", prefix, i), ref, pos0-5, string(seq), o))
	}
	return recs
}

// fakeSource wraps recs in a Source backed by a fake provider.
func fakeSource(path string, header *sam.Header, recs []*sam.Record) *aei.Source {
	return &aei.Source{
		Path:     path,
		Provider: bamprovider.NewFakeProvider(header, recs),
		Header:   header,
		Samples:  aei.SamplesFromHeader(header, path),
	}
}
