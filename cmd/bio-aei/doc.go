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

/*
Given a list of loci and one or more indexed BAMs, bio-aei reports, for every
read group of every BAM, whether the sample is heterozygous at each locus and,
if so, how unequally its two alleles are represented in the reads (allelic
expression imbalance).

The locus list is tab-separated; column 1 is the contig, column 3 the 1-based
position and column 4 an identifier.  Lines starting with '#' are ignored.

Reads are skipped if they are duplicates, have MAPQ below -mapq, or have base
quality <= -min-base-qual at the locus.  A locus is reported only if at least
-min-samples samples have -min-coverage or more reads, and at least one
sufficiently covered sample is heterozygous.

Output columns are chr, pos, rsID, then three per sample: the imbalance
statistic ("HOMO" for homozygous samples, "NA" for samples below
-min-coverage), the major(:minor) allele, and the major:minor read counts.

Sample usage:
bio-aei \
    -out aei.tsv \
    snps.txt \
    sample1.bam sample2.bam
*/
package main
