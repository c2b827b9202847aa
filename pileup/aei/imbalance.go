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

	"gonum.org/v1/gonum/stat/distuv"
)

// ImbalanceResult measures how far a heterozygous sample's two allele counts
// depart from 1:1.
type ImbalanceResult struct {
	// Ratio is the Kullback-Leibler divergence, in nats, of the observed
	// allele fraction from 1/2.  It is 0 for equal counts and ln(2) when only
	// one allele is seen.  It depends only on the fraction, not the depth.
	Ratio float64
	// G is the likelihood-ratio statistic 2*n*Ratio, where n is the depth.
	G float64
	// PValue is the chi-square (1 d.f.) survival probability of G.
	PValue float64
}

var chiSquared1 = distuv.ChiSquared{K: 1}

// xlogx2x returns x*ln(2x), extended to 0 at x=0.
func xlogx2x(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log(2*x)
}

// EstimateImbalance computes the imbalance statistics of an allele count
// pair.  The order of the arguments does not matter.  A pair with zero sum
// yields the neutral result.
func EstimateImbalance(major, minor uint32) ImbalanceResult {
	n := float64(major) + float64(minor)
	if n == 0 {
		return ImbalanceResult{PValue: 1}
	}
	p := float64(major) / n
	q := float64(minor) / n
	ratio := xlogx2x(p) + xlogx2x(q)
	if ratio < 0 {
		// Rounding near p=0.5.
		ratio = 0
	}
	g := 2 * n * ratio
	return ImbalanceResult{
		Ratio:  ratio,
		G:      g,
		PValue: chiSquared1.Survival(g),
	}
}
