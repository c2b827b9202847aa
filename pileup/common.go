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
	"github.com/grailbio/aei/interval"
)

// Common pileup components.

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// These constants are the natural values for A/C/G/T in a packed 2-bit
// representation, and double as allele indexes.

const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseX is a catch-all.
	BaseX
)

// NBase is the number of regular base types.
const NBase = 4

// EnumToASCIITable is the A/C/G/T/X -> ASCII mapping, with X rendered as 'N'.
var EnumToASCIITable = [...]byte{'A', 'C', 'G', 'T', 'N'}

// BaseIndexTable maps an ASCII base symbol to its allele index.
type BaseIndexTable [256]int8

// Index returns the allele index (BaseA..BaseT) of symbol c, or -1 if c is
// not one of A/C/G/T.
func (t *BaseIndexTable) Index(c byte) int {
	return int(t[c])
}

// ASCIIToBaseIndex maps A/C/G/T, in either case, to BaseA..BaseT.  Every
// other byte, including N and IUPAC ambiguity codes, maps to -1.
var ASCIIToBaseIndex = newBaseIndexTable()

func newBaseIndexTable() BaseIndexTable {
	var t BaseIndexTable
	for i := range t {
		t[i] = -1
	}
	for e, c := range EnumToASCIITable[:NBase] {
		t[c] = int8(e)
		t[c|0x20] = int8(e)
	}
	return t
}
