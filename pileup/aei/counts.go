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
	"fmt"

	"github.com/grailbio/aei/pileup"
)

// AlleleCounts holds the number of kept reads showing each base at one locus
// for one sample, indexed by pileup.BaseA..pileup.BaseT.
type AlleleCounts [pileup.NBase]uint32

// Total returns the sum of the counts.
func (c AlleleCounts) Total() uint32 {
	return c[pileup.BaseA] + c[pileup.BaseC] + c[pileup.BaseG] + c[pileup.BaseT]
}

func (c AlleleCounts) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", c[pileup.BaseA], c[pileup.BaseC], c[pileup.BaseG], c[pileup.BaseT])
}
