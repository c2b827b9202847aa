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
	"github.com/grailbio/hts/sam"
)

// Sample is one accounting bucket of an alignment source.  Each read group
// is its own Sample, even when several read groups share a sample name.
type Sample struct {
	// ID is the read-group ID.
	ID string
	// Name is the display name: the read group's SM value, or ID if it has
	// none.
	Name string
}

// SampleSet is the ordered list of samples of one alignment source.  It is
// immutable after construction.
type SampleSet struct {
	samples []Sample
	byID    map[string]int
	// untagged is set for a source whose header lists no read groups.  All
	// reads then belong to its only sample, whatever their RG tag says.
	untagged bool
}

var smTag = sam.NewTag("SM")

// NewSampleSet creates a SampleSet from samples, in the given order.  If
// several samples share an ID, the first one wins lookups.
func NewSampleSet(samples []Sample) *SampleSet {
	s := &SampleSet{
		samples: append([]Sample(nil), samples...),
		byID:    make(map[string]int, len(samples)),
	}
	for i, sample := range s.samples {
		if _, ok := s.byID[sample.ID]; !ok {
			s.byID[sample.ID] = i
		}
	}
	return s
}

// SamplesFromHeader extracts the read groups of header, in header order.  A
// header with no @RG lines yields a single sample with ID and Name set to
// fallbackName.
func SamplesFromHeader(header *sam.Header, fallbackName string) *SampleSet {
	var samples []Sample
	for _, rg := range header.RGs() {
		sample := Sample{ID: rg.Name(), Name: rg.Name()}
		if sm := rg.Get(smTag); sm != "" {
			sample.Name = sm
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		s := NewSampleSet([]Sample{{ID: fallbackName, Name: fallbackName}})
		s.untagged = true
		return s
	}
	return NewSampleSet(samples)
}

// Len returns the number of samples.
func (s *SampleSet) Len() int { return len(s.samples) }

// At returns the i'th sample.
func (s *SampleSet) At(i int) Sample { return s.samples[i] }

// Index returns the position of the sample with the given read-group ID.
func (s *SampleSet) Index(id string) (int, bool) {
	if s.untagged {
		return 0, true
	}
	i, ok := s.byID[id]
	return i, ok
}
