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
package main

/*
bio-aei estimates allelic expression imbalance at a list of loci.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/aei/pileup/aei"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	outPath     = flag.String("out", "", "Output path. Defaults to stdout. A .gz suffix selects BGZF compression")
	region      = flag.String("region", aei.DefaultOpts.Region, "Only examine loci in the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	indexPaths  = flag.String("index", "", "Comma-separated BAM index paths, one per BAM in argument order. Empty entries default to bampath + .bai")
	minBaseQual = flag.Int("min-base-qual", aei.DefaultOpts.MinBaseQual, "Bases with quality at or below this level are skipped")
	mapq        = flag.Int("mapq", aei.DefaultOpts.MinMapq, "Reads with MAPQ below this level are skipped")
	minCoverage = flag.Int("min-coverage", aei.DefaultOpts.MinCoverage, "Minimum number of counted reads for a sample to be genotyped")
	minSamples  = flag.Int("min-samples", aei.DefaultOpts.MinSamples, "Minimum number of samples reaching -min-coverage for a locus to be examined")
	errorRate   = flag.Float64("error-rate", aei.DefaultOpts.ErrorRate, "Per-base sequencing error rate assumed by the heterozygosity test")
	hetPrior    = flag.Float64("het-prior", aei.DefaultOpts.HetPrior, "Prior probability that a locus is heterozygous")
	stat        = flag.String("stat", aei.DefaultOpts.Stat, "Statistic reported for heterozygous samples; 'ratio' and 'pvalue' supported")
	debug       = flag.Bool("debug", aei.DefaultOpts.Debug, "Stop after -debug-limit loci")
	debugLimit  = flag.Int("debug-limit", aei.DefaultOpts.DebugLimit, "Number of loci examined in -debug mode")
)

func init() {
	flag.StringVar(outPath, "o", "", "Alias for -out")
	flag.IntVar(minBaseQual, "q", aei.DefaultOpts.MinBaseQual, "Alias for -min-base-qual")
	flag.BoolVar(debug, "D", aei.DefaultOpts.Debug, "Alias for -debug")
}

func bioAEIUsage() {
	fmt.Printf("Usage: %s [OPTIONS] locipath bampath [bampath ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// splitIndexPaths parses the -index flag value.
func splitIndexPaths(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	flag.Usage = bioAEIUsage
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("Missing positional arguments (locipath and at least one bampath required); please check flag syntax: '%s'", strings.Join(args, " "))
	}
	ctx := vcontext.Background()
	opts := aei.Opts{
		MinBaseQual: *minBaseQual,
		MinMapq:     *mapq,
		MinCoverage: *minCoverage,
		MinSamples:  *minSamples,
		ErrorRate:   *errorRate,
		HetPrior:    *hetPrior,
		Stat:        *stat,
		Debug:       *debug,
		DebugLimit:  *debugLimit,
		Region:      *region,
		IndexPaths:  splitIndexPaths(*indexPaths),
	}
	if _, err := aei.Run(ctx, args[0], args[1:], *outPath, opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
