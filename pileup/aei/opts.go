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
)

// Opts holds the options for Run.
type Opts struct {
	// Commandline options.

	// MinBaseQual is the base-quality cutoff.  Bases with Phred quality <=
	// MinBaseQual are not counted.
	MinBaseQual int
	// MinMapq is the mapping-quality cutoff.  Reads with MAPQ < MinMapq are
	// not counted.
	MinMapq int
	// MinCoverage is the per-sample read-count threshold, used both by the
	// locus-level coverage gate and to decide whether a sample is genotyped.
	MinCoverage int
	// MinSamples is the number of samples that must reach MinCoverage for a
	// locus to be genotyped at all.
	MinSamples int
	// ErrorRate is the per-base sequencing error probability used by the
	// heterozygosity test.
	ErrorRate float64
	// HetPrior is the prior probability that a site is heterozygous.
	HetPrior float64
	// Stat selects the statistic printed for heterozygous samples: "ratio" or
	// "pvalue".
	Stat string
	// Debug enables the run limit below.
	Debug bool
	// DebugLimit is the number of loci processed before stopping, when Debug
	// is set.
	DebugLimit int
	// Region, if nonempty, restricts the run to loci inside it.  Format is
	// "chr", "chr:pos" or "chr:start-end", 1-based.
	Region string
	// IndexPaths optionally names the index of each alignment source, in the
	// same order as the sources.  Empty entries mean path + ".bai".
	IndexPaths []string
}

// DefaultOpts sets the default values for Opts.
var DefaultOpts = Opts{
	MinBaseQual: 20,
	MinMapq:     51,
	MinCoverage: 30,
	MinSamples:  1,
	ErrorRate:   0.01,
	HetPrior:    0.5,
	Stat:        StatRatio,
	DebugLimit:  2000,
}

const (
	// StatRatio prints ImbalanceResult.Ratio.
	StatRatio = "ratio"
	// StatPValue prints ImbalanceResult.PValue.
	StatPValue = "pvalue"
)

func (o *Opts) validate(nSources int) error {
	if o.MinBaseQual < 0 {
		return fmt.Errorf("aei: min-base-qual must be nonnegative, got %d", o.MinBaseQual)
	}
	if o.MinMapq < 0 {
		return fmt.Errorf("aei: mapq must be nonnegative, got %d", o.MinMapq)
	}
	if o.MinCoverage < 1 {
		return fmt.Errorf("aei: min-coverage must be positive, got %d", o.MinCoverage)
	}
	if o.MinSamples < 1 {
		return fmt.Errorf("aei: min-samples must be positive, got %d", o.MinSamples)
	}
	if !(o.ErrorRate > 0 && o.ErrorRate < 0.75) {
		return fmt.Errorf("aei: error-rate must be in (0, 0.75), got %v", o.ErrorRate)
	}
	if !(o.HetPrior > 0 && o.HetPrior < 1) {
		return fmt.Errorf("aei: het-prior must be in (0, 1), got %v", o.HetPrior)
	}
	if o.Stat != StatRatio && o.Stat != StatPValue {
		return fmt.Errorf("aei: stat must be %q or %q, got %q", StatRatio, StatPValue, o.Stat)
	}
	if o.Debug && o.DebugLimit < 1 {
		return fmt.Errorf("aei: debug-limit must be positive, got %d", o.DebugLimit)
	}
	if len(o.IndexPaths) > nSources {
		return fmt.Errorf("aei: %d index paths given for %d alignment sources", len(o.IndexPaths), nSources)
	}
	return nil
}
