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
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/aei/pileup"
	"gonum.org/v1/gonum/floats"
)

// Zygosity is the outcome of genotyping one sample at one locus.
type Zygosity int

const (
	// InsufficientData means the sample has fewer reads than the coverage
	// threshold.
	InsufficientData Zygosity = iota
	// Homozygous means a single allele explains the reads.
	Homozygous
	// Heterozygous means two distinct alleles are present.
	Heterozygous
)

func (z Zygosity) String() string {
	switch z {
	case InsufficientData:
		return "NA"
	case Homozygous:
		return "HOMO"
	case Heterozygous:
		return "HET"
	}
	return "Zygosity(" + strconv.Itoa(int(z)) + ")"
}

// GenotypeCall is the genotype of one sample at one locus.
type GenotypeCall struct {
	Zygosity Zygosity
	// Alleles are the indexes (pileup.BaseA..BaseT) of the most and second
	// most frequent alleles.  Ties go to the lower index.
	Alleles [2]int
	// Counts are the raw counts of Alleles.  Counts[1] is reported even for
	// homozygous calls.
	Counts [2]uint32
	// HetPosterior is P(heterozygous | counts).  It is zero for
	// InsufficientData calls.
	HetPosterior float64
}

// Major returns the most frequent allele as a letter.
func (g GenotypeCall) Major() byte {
	return pileup.EnumToASCIITable[g.Alleles[0]]
}

// Minor returns the second most frequent allele as a letter.
func (g GenotypeCall) Minor() byte {
	return pileup.EnumToASCIITable[g.Alleles[1]]
}

// Classifier genotypes count vectors.
type Classifier struct {
	// Threshold is the minimum total count for a sample to be genotyped.
	Threshold int
	// ErrorRate is the per-base probability of a sequencing error.  An error
	// turns the true base into each of the other three with equal
	// probability.
	ErrorRate float64
	// HetPrior is the prior probability of a heterozygous genotype, spread
	// evenly over the six heterozygous genotypes.  The remaining mass is
	// spread evenly over the four homozygous genotypes.
	HetPrior float64
}

// NewClassifier creates a Classifier from opts.
func NewClassifier(opts Opts) Classifier {
	return Classifier{
		Threshold: opts.MinCoverage,
		ErrorRate: opts.ErrorRate,
		HetPrior:  opts.HetPrior,
	}
}

// rankAlleles returns the allele indexes sorted by descending count, ties in
// index order.
func rankAlleles(counts AlleleCounts) [pileup.NBase]int {
	ranked := [pileup.NBase]int{0, 1, 2, 3}
	sort.SliceStable(ranked[:], func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}

// Classify genotypes one sample.
func (c Classifier) Classify(counts AlleleCounts) GenotypeCall {
	ranked := rankAlleles(counts)
	call := GenotypeCall{
		Alleles: [2]int{ranked[0], ranked[1]},
		Counts:  [2]uint32{counts[ranked[0]], counts[ranked[1]]},
	}
	if int(counts.Total()) < c.Threshold {
		call.Zygosity = InsufficientData
		return call
	}
	call.HetPosterior = c.HetPosterior(counts)
	if call.HetPosterior > 0.5 {
		call.Zygosity = Heterozygous
	} else {
		call.Zygosity = Homozygous
	}
	return call
}

// HetPosterior returns the posterior probability that the sample is
// heterozygous given its counts, over all ten diploid genotypes.
func (c Classifier) HetPosterior(counts AlleleCounts) float64 {
	// logMatch and logMismatch are the log-probabilities of reading base b
	// from an allele that is, or is not, b.
	logMatch := math.Log(1 - c.ErrorRate)
	logMismatch := math.Log(c.ErrorRate / 3)
	// Reading b from a heterozygote x/y with b in {x, y} and x != y.
	logHetOne := math.Log(0.5*(1-c.ErrorRate) + 0.5*c.ErrorRate/3)

	logHetPrior := math.Log(c.HetPrior / 6)
	logHomPrior := math.Log((1 - c.HetPrior) / 4)

	var het, all []float64
	for x := 0; x < pileup.NBase; x++ {
		for y := x; y < pileup.NBase; y++ {
			logLik := 0.0
			for b := 0; b < pileup.NBase; b++ {
				if counts[b] == 0 {
					continue
				}
				var l float64
				switch {
				case x == y && b == x:
					l = logMatch
				case x == y:
					l = logMismatch
				case b == x || b == y:
					l = logHetOne
				default:
					l = logMismatch
				}
				logLik += float64(counts[b]) * l
			}
			if x == y {
				all = append(all, logHomPrior+logLik)
			} else {
				het = append(het, logHetPrior+logLik)
				all = append(all, logHetPrior+logLik)
			}
		}
	}
	return math.Exp(floats.LogSumExp(het) - floats.LogSumExp(all))
}
