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
	"context"
	"path/filepath"
	"strings"

	"github.com/grailbio/aei/encoding/bamprovider"
	"github.com/grailbio/aei/encoding/locus"
	"github.com/grailbio/aei/interval"
	"github.com/grailbio/aei/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// Source is one opened alignment source.
type Source struct {
	Path     string
	Provider bamprovider.Provider
	Header   *sam.Header
	Samples  *SampleSet
}

// sourceName returns the base name of path without its .bam extension.
func sourceName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".bam")
}

// OpenSources opens the alignment sources at paths and loads their headers
// and indexes.  indexPaths, if nonempty, gives the index of each source;
// missing or empty entries default to path + ".bai".  On error, every source
// opened so far is closed.
func OpenSources(ctx context.Context, paths, indexPaths []string) ([]*Source, error) {
	sources := make([]*Source, len(paths))
	for i, path := range paths {
		var index string
		if i < len(indexPaths) {
			index = indexPaths[i]
		}
		sources[i] = &Source{
			Path:     path,
			Provider: bamprovider.NewProvider(path, bamprovider.ProviderOpts{Index: index}),
		}
	}
	err := traverse.Each(len(sources), func(i int) error {
		src := sources[i]
		header, err := src.Provider.GetHeader()
		if err != nil {
			return errors.E(err, "opening alignment source", src.Path)
		}
		src.Header = header
		src.Samples = SamplesFromHeader(header, sourceName(src.Path))
		return nil
	})
	if err != nil {
		CloseSources(sources)
		return nil, err
	}
	for _, src := range sources {
		log.Printf("%s: %d sample(s)", src.Path, src.Samples.Len())
	}
	return sources, nil
}

// CloseSources closes the providers of sources and returns the first error.
func CloseSources(sources []*Source) error {
	var err error
	for _, src := range sources {
		if e := src.Provider.Close(); e != nil && err == nil {
			err = errors.E(e, "closing alignment source", src.Path)
		}
	}
	return err
}

// State is the terminal state of a locus.
type State int

const (
	// Suppressed loci are left out of the report.
	Suppressed State = iota
	// Retained loci are reported.
	Retained
)

// SampleResult is the outcome for one sample at one locus.
type SampleResult struct {
	Sample Sample
	Counts AlleleCounts
	// Call is the zero value if the locus failed the coverage gate.
	Call GenotypeCall
	// Imbalance is set only for heterozygous calls.
	Imbalance *ImbalanceResult
}

// LocusResult is the outcome for one locus.
type LocusResult struct {
	Locus locus.Locus
	// Samples holds one entry per sample, in source order, then header order
	// within a source.
	Samples    []SampleResult
	GatePassed bool
	State      State
	Discards   DiscardCounts
}

// Builder runs the per-locus pipeline over a fixed set of sources.  It is
// not thread safe.
type Builder struct {
	sources     []*Source
	classifier  Classifier
	accOpts     AccumulatorOpts
	minCoverage int
	minSamples  int
}

// NewBuilder creates a Builder.  opts must be valid.
func NewBuilder(sources []*Source, opts Opts) *Builder {
	return &Builder{
		sources:    sources,
		classifier: NewClassifier(opts),
		accOpts: AccumulatorOpts{
			MinBaseQual: opts.MinBaseQual,
			MinMapq:     opts.MinMapq,
			BaseIndex:   &pileup.ASCIIToBaseIndex,
		},
		minCoverage: opts.MinCoverage,
		minSamples:  opts.MinSamples,
	}
}

// scan feeds the pileup column at the accumulator's locus to acc.  A contig
// missing from the source, or a locus past the contig end, leaves acc empty.
func (b *Builder) scan(src *Source, chrom string, acc *Accumulator) error {
	ref := bamprovider.RefByName(src.Header, chrom)
	target0 := acc.Target0()
	if ref == nil || int(target0) >= ref.Len() {
		vlog.VI(1).Infof("%s: %s:%d not in header, treating as uncovered", src.Path, chrom, target0+1)
		return nil
	}
	iter := src.Provider.NewIterator(ref, int(target0), int(target0)+1)
	scanner := pileup.NewScanner(iter, target0, target0+1)
	for scanner.Scan() {
		acc.Add(scanner.Column())
	}
	err := scanner.Err()
	if e := iter.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return errors.E(err, src.Path, chrom)
	}
	return nil
}

// Process runs one locus through scanning, the coverage gate, genotyping and
// the retain/suppress decision.
func (b *Builder) Process(ctx context.Context, l locus.Locus) (LocusResult, error) {
	res := LocusResult{Locus: l}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	var counts []AlleleCounts
	for _, src := range b.sources {
		acc := NewAccumulator(l.Chrom, l.Pos, src.Samples, b.accOpts)
		if err := b.scan(src, l.Chrom, acc); err != nil {
			return res, err
		}
		discards := acc.Discards()
		for i := range discards {
			res.Discards[i] += discards[i]
		}
		for i := 0; i < src.Samples.Len(); i++ {
			c := acc.Counts(i)
			counts = append(counts, c)
			res.Samples = append(res.Samples, SampleResult{Sample: src.Samples.At(i), Counts: c})
		}
	}

	if res.GatePassed = PassesCoverageGate(counts, b.minCoverage, b.minSamples); !res.GatePassed {
		vlog.VI(1).Infof("%v: below coverage gate, counts %v", l, counts)
		return res, nil
	}
	anyHet := false
	for i := range res.Samples {
		s := &res.Samples[i]
		s.Call = b.classifier.Classify(s.Counts)
		if s.Call.Zygosity == Heterozygous {
			anyHet = true
			imbalance := EstimateImbalance(s.Call.Counts[0], s.Call.Counts[1])
			s.Imbalance = &imbalance
		}
	}
	if !anyHet {
		vlog.VI(1).Infof("%v: no heterozygous sample, counts %v", l, counts)
		return res, nil
	}
	res.State = Retained
	return res, nil
}

// RunStats summarizes a run.
type RunStats struct {
	// Processed is the number of loci scanned.
	Processed int
	// OutOfRegion is the number of loci skipped by Opts.Region.
	OutOfRegion      int
	Retained         int
	SuppressedByGate int
	SuppressedNoHet  int
	Discards         DiscardCounts
}

func (s *RunStats) add(res LocusResult) {
	s.Processed++
	switch {
	case res.State == Retained:
		s.Retained++
	case !res.GatePassed:
		s.SuppressedByGate++
	default:
		s.SuppressedNoHet++
	}
	for i := range res.Discards {
		s.Discards[i] += res.Discards[i]
	}
}

// Run reads the loci at lociPath, evaluates each against the alignment
// sources at xamPaths, and writes the report of retained loci to outPath.
func Run(ctx context.Context, lociPath string, xamPaths []string, outPath string, opts Opts) (stats RunStats, err error) {
	if len(xamPaths) == 0 {
		return stats, errors.E("aei.Run: no alignment sources")
	}
	if err = opts.validate(len(xamPaths)); err != nil {
		return stats, err
	}
	var region interval.Entry
	if opts.Region != "" {
		if region, err = interval.ParseRegionString(opts.Region); err != nil {
			return stats, err
		}
	}

	sources, err := OpenSources(ctx, xamPaths, opts.IndexPaths)
	if err != nil {
		return stats, err
	}
	defer func() {
		if e := CloseSources(sources); e != nil && err == nil {
			err = e
		}
	}()

	loci, err := locus.Open(ctx, lociPath)
	if err != nil {
		return stats, errors.E(err, "opening locus list", lociPath)
	}
	defer func() {
		if e := loci.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	w, err := NewReportWriter(ctx, outPath, opts.Stat)
	if err != nil {
		return stats, errors.E(err, "creating report", outPath)
	}
	defer func() {
		if e := w.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if err = w.WriteHeader(sources); err != nil {
		return stats, err
	}

	b := NewBuilder(sources, opts)
	for loci.Scan() {
		if opts.Debug && stats.Processed >= opts.DebugLimit {
			log.Printf("debug limit of %d loci reached", opts.DebugLimit)
			break
		}
		l := loci.Locus()
		if opts.Region != "" && !region.Contains(l.Chrom, l.Pos0()) {
			stats.OutOfRegion++
			continue
		}
		res, err := b.Process(ctx, l)
		if err != nil {
			return stats, err
		}
		stats.add(res)
		if res.State == Retained {
			if err = w.WriteLocus(res); err != nil {
				return stats, err
			}
		}
	}
	if err = loci.Err(); err != nil {
		return stats, err
	}
	log.Printf("%d loci processed: %d retained, %d below coverage, %d without a heterozygous sample, %d outside region",
		stats.Processed, stats.Retained, stats.SuppressedByGate, stats.SuppressedNoHet, stats.OutOfRegion)
	log.Debug.Printf("read outcomes: %v", stats.Discards)
	return stats, nil
}
