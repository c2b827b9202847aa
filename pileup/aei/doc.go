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

// Package aei estimates allelic expression imbalance at a list of loci.
//
// For each locus, every alignment source is queried for the reads covering
// the position.  Filtered base calls are counted per read group, giving one
// A/C/G/T count vector per sample.  A locus proceeds to genotyping only if
// enough samples have enough coverage.  Each sufficiently covered sample is
// then called heterozygous or homozygous from its full count vector, and
// heterozygous samples get an imbalance statistic computed from their two
// most frequent alleles.  Loci with no heterozygous sample are dropped from
// the report.
//
// Processing is single-threaded per locus.  Count vectors never outlive the
// locus they were collected for.
package aei
