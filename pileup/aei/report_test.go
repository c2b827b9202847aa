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
package aei_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/aei/encoding/bamprovider"
	"github.com/grailbio/aei/encoding/locus"
	"github.com/grailbio/aei/pileup/aei"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func TestProcessTwoHomozygousSources(t *testing.T) {
	header1, chr1, _ := newHeader(t, "rg1:s1")
	header2, chr1b, _ := newHeader(t, "rg2:s2")
	src1 := fakeSource("a.bam", header1, pileupReads(t, "a", chr1, 99, 'A', 40, defaultReadOpts))
	src2 := fakeSource("b.bam", header2, pileupReads(t, "b", chr1b, 99, 'C', 38, defaultReadOpts))
	b := aei.NewBuilder([]*aei.Source{src1, src2}, aei.DefaultOpts)

	res, err := b.Process(vcontext.Background(), locus.Locus{Chrom: "chr1", Pos: 100, ID: "rs1"})
	assert.NoError(t, err)
	expect.True(t, res.GatePassed)
	expect.EQ(t, res.State, aei.Suppressed)
	assert.EQ(t, len(res.Samples), 2)
	expect.EQ(t, res.Samples[0].Sample.Name, "s1")
	expect.EQ(t, res.Samples[0].Counts, aei.AlleleCounts{40, 0, 0, 0})
	expect.EQ(t, res.Samples[0].Call.Zygosity, aei.Homozygous)
	expect.EQ(t, res.Samples[0].Call.Major(), byte('A'))
	expect.EQ(t, res.Samples[1].Sample.Name, "s2")
	expect.EQ(t, res.Samples[1].Counts, aei.AlleleCounts{0, 38, 0, 0})
	expect.EQ(t, res.Samples[1].Call.Zygosity, aei.Homozygous)
	expect.EQ(t, res.Samples[1].Call.Major(), byte('C'))
	expect.True(t, res.Samples[0].Imbalance == nil)
	expect.True(t, res.Samples[1].Imbalance == nil)
}

func TestProcessHeterozygous(t *testing.T) {
	header, chr1, _ := newHeader(t, "rg1:s1", "rg2:s2")
	rg1 := defaultReadOpts
	rg1.rg = "rg1"
	rg2 := defaultReadOpts
	rg2.rg = "rg2"
	var recs []*sam.Record
	recs = append(recs, pileupReads(t, "a", chr1, 99, 'A', 25, rg1)...)
	recs = append(recs, pileupReads(t, "c", chr1, 99, 'C', 20, rg1)...)
	recs = append(recs, pileupReads(t, "t", chr1, 99, 'T', 1, rg1)...)
	// Low coverage in the second sample: reported, but not genotyped.
	recs = append(recs, pileupReads(t, "g", chr1, 99, 'G', 12, rg2)...)
	src := fakeSource("a.bam", header, recs)
	b := aei.NewBuilder([]*aei.Source{src}, aei.DefaultOpts)

	res, err := b.Process(vcontext.Background(), locus.Locus{Chrom: "chr1", Pos: 100, ID: "rs1"})
	assert.NoError(t, err)
	expect.EQ(t, res.State, aei.Retained)
	s1, s2 := res.Samples[0], res.Samples[1]
	expect.EQ(t, s1.Counts, aei.AlleleCounts{25, 20, 0, 1})
	expect.EQ(t, s1.Call.Zygosity, aei.Heterozygous)
	expect.EQ(t, s1.Call.Counts, [2]uint32{25, 20})
	assert.True(t, s1.Imbalance != nil)
	expect.EQ(t, *s1.Imbalance, aei.EstimateImbalance(25, 20))
	expect.EQ(t, s2.Counts, aei.AlleleCounts{0, 0, 12, 0})
	expect.EQ(t, s2.Call.Zygosity, aei.InsufficientData)
	expect.True(t, s2.Imbalance == nil)
	expect.EQ(t, res.Discards[aei.Kept], 58)

	// Below the gate everywhere.
	res, err = b.Process(vcontext.Background(), locus.Locus{Chrom: "chr2", Pos: 100, ID: "rs2"})
	assert.NoError(t, err)
	expect.False(t, res.GatePassed)
	expect.EQ(t, res.State, aei.Suppressed)
	expect.EQ(t, res.Samples[0].Counts, aei.AlleleCounts{})

	// Contig missing from the header.
	res, err = b.Process(vcontext.Background(), locus.Locus{Chrom: "chrUn", Pos: 100, ID: "rs3"})
	assert.NoError(t, err)
	expect.EQ(t, res.State, aei.Suppressed)
	expect.EQ(t, len(res.Samples), 2)
}

// runFixture holds two indexed BAMs and a locus list.
type runFixture struct {
	tmpdir   string
	lociPath string
	xamPaths []string
}

func newRunFixture(t *testing.T, tmpdir string) runFixture {
	header1, chr1, chr2 := newHeader(t, "rg1:sampleA", "rg2:sampleB")
	rg1 := defaultReadOpts
	rg1.rg = "rg1"
	rg2 := defaultReadOpts
	rg2.rg = "rg2"
	dupRG1 := rg1
	dupRG1.flags = sam.Duplicate
	lowMapqRG1 := rg1
	lowMapqRG1.mapq = 50

	var recs1 []*sam.Record
	// chr1:1000, het in sampleA, hom in sampleB.
	recs1 = append(recs1, pileupReads(t, "a", chr1, 999, 'A', 25, rg1)...)
	recs1 = append(recs1, pileupReads(t, "c", chr1, 999, 'C', 20, rg1)...)
	recs1 = append(recs1, pileupReads(t, "dup", chr1, 999, 'T', 10, dupRG1)...)
	recs1 = append(recs1, pileupReads(t, "lowmapq", chr1, 999, 'G', 10, lowMapqRG1)...)
	recs1 = append(recs1, pileupReads(t, "b", chr1, 999, 'A', 40, rg2)...)
	// chr1:2000, homozygous everywhere.
	recs1 = append(recs1, pileupReads(t, "hom", chr1, 1999, 'A', 40, rg1)...)
	// chr2:500, low coverage.
	recs1 = append(recs1, pileupReads(t, "low", chr2, 499, 'A', 5, rg1)...)

	header2, chr1b, chr2b := newHeader(t)
	var recs2 []*sam.Record
	recs2 = append(recs2, pileupReads(t, "g", chr1b, 999, 'G', 10, defaultReadOpts)...)
	// chr2:800, het in the second source.
	recs2 = append(recs2, pileupReads(t, "g", chr2b, 799, 'G', 20, defaultReadOpts)...)
	recs2 = append(recs2, pileupReads(t, "t", chr2b, 799, 'T', 20, defaultReadOpts)...)

	f := runFixture{
		tmpdir:   tmpdir,
		lociPath: filepath.Join(tmpdir, "loci.txt"),
		xamPaths: []string{filepath.Join(tmpdir, "first.bam"), filepath.Join(tmpdir, "second.bam")},
	}
	assert.NoError(t, bamprovider.WriteIndexedBAM(f.xamPaths[0], header1, recs1))
	assert.NoError(t, bamprovider.WriteIndexedBAM(f.xamPaths[1], header2, recs2))
	loci := "chr1\t999\t1000\trs1\n" +
		"chr1\t1999\t2000\trs2\n" +
		"chr2\t499\t500\trs3\n" +
		"chrX\t9\t10\trs4\n" +
		"chr2\t799\t800\trs5\n"
	assert.NoError(t, ioutil.WriteFile(f.lociPath, []byte(loci), 0644))
	return f
}

const wantHeader = "chr\tpos\trsID\t" +
	"sampleA\tGenotype(Maj/Min)\tRatio\t" +
	"sampleB\tGenotype(Maj/Min)\tRatio\t" +
	"second\tGenotype(Maj/Min)\tRatio\n"

func wantRows(stat func(major, minor uint32) float64) string {
	f := func(major, minor uint32) string {
		return strconv.FormatFloat(stat(major, minor), 'g', 6, 64)
	}
	return "chr1\t1000\trs1\t" + f(25, 20) + "\tA:C\t25:20\tHOMO\tA\t40:0\tNA\tG\t10:0\n" +
		"chr2\t800\trs5\tNA\tA\t0:0\tNA\tA\t0:0\t" + f(20, 20) + "\tG:T\t20:20\n"
}

func ratioStat(major, minor uint32) float64  { return aei.EstimateImbalance(major, minor).Ratio }
func pvalueStat(major, minor uint32) float64 { return aei.EstimateImbalance(major, minor).PValue }

func TestRun(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	f := newRunFixture(t, tmpdir)
	ctx := vcontext.Background()

	outPath := filepath.Join(tmpdir, "out.tsv")
	stats, err := aei.Run(ctx, f.lociPath, f.xamPaths, outPath, aei.DefaultOpts)
	assert.NoError(t, err)
	got, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	expect.EQ(t, string(got), wantHeader+wantRows(ratioStat))
	expect.EQ(t, stats.Processed, 5)
	expect.EQ(t, stats.Retained, 2)
	expect.EQ(t, stats.SuppressedByGate, 2)
	expect.EQ(t, stats.SuppressedNoHet, 1)
	expect.EQ(t, stats.Discards[aei.DiscardDuplicate], 10)
	expect.EQ(t, stats.Discards[aei.DiscardMapq], 10)

	// A second run produces identical output.
	outPath2 := filepath.Join(tmpdir, "out2.tsv")
	_, err = aei.Run(ctx, f.lociPath, f.xamPaths, outPath2, aei.DefaultOpts)
	assert.NoError(t, err)
	got2, err := ioutil.ReadFile(outPath2)
	assert.NoError(t, err)
	expect.True(t, bytes.Equal(got, got2))
}

func TestRunOptions(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	f := newRunFixture(t, tmpdir)
	ctx := vcontext.Background()
	rows := strings.SplitAfter(wantRows(ratioStat), "\n")

	tests := []struct {
		name      string
		opts      func(o *aei.Opts)
		want      string
		processed int
	}{
		{"pvalue", func(o *aei.Opts) { o.Stat = aei.StatPValue }, wantHeader + wantRows(pvalueStat), 5},
		{"debug", func(o *aei.Opts) { o.Debug = true; o.DebugLimit = 2 }, wantHeader + rows[0], 2},
		{"region_chr2", func(o *aei.Opts) { o.Region = "chr2" }, wantHeader + rows[1], 2},
		{"region_pos", func(o *aei.Opts) { o.Region = "chr1:1000" }, wantHeader + rows[0], 1},
		{"region_range", func(o *aei.Opts) { o.Region = "chr1:1001-3000" }, wantHeader, 1},
		// A high coverage threshold suppresses everything.
		{"min_coverage", func(o *aei.Opts) { o.MinCoverage = 100 }, wantHeader, 5},
		{"min_samples", func(o *aei.Opts) { o.MinSamples = 2 }, wantHeader + rows[0], 5},
		{"index_paths", func(o *aei.Opts) { o.IndexPaths = []string{"", f.xamPaths[1] + ".bai"} }, wantHeader + wantRows(ratioStat), 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := aei.DefaultOpts
			test.opts(&opts)
			outPath := filepath.Join(tmpdir, test.name+".tsv")
			stats, err := aei.Run(ctx, f.lociPath, f.xamPaths, outPath, opts)
			assert.NoError(t, err)
			got, err := ioutil.ReadFile(outPath)
			assert.NoError(t, err)
			expect.EQ(t, string(got), test.want)
			expect.EQ(t, stats.Processed, test.processed)
		})
	}
}

func TestRunGzipOutput(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	f := newRunFixture(t, tmpdir)

	outPath := filepath.Join(tmpdir, "out.tsv.gz")
	_, err := aei.Run(vcontext.Background(), f.lociPath, f.xamPaths, outPath, aei.DefaultOpts)
	assert.NoError(t, err)
	compressed, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	assert.NoError(t, err)
	got, err := ioutil.ReadAll(r)
	assert.NoError(t, err)
	expect.EQ(t, string(got), wantHeader+wantRows(ratioStat))
}

func TestRunErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	f := newRunFixture(t, tmpdir)
	ctx := vcontext.Background()
	outPath := filepath.Join(tmpdir, "out.tsv")

	badLoci := filepath.Join(tmpdir, "bad.txt")
	assert.NoError(t, ioutil.WriteFile(badLoci, []byte("chr1\t999\t1000\trs1\nchr1\t999\n"), 0644))

	badOpts := aei.DefaultOpts
	badOpts.Stat = "zscore"

	tests := []struct {
		name     string
		lociPath string
		xamPaths []string
		opts     aei.Opts
		want     string
	}{
		{"no_sources", f.lociPath, nil, aei.DefaultOpts, "no alignment sources"},
		{"missing_bam", f.lociPath, []string{filepath.Join(tmpdir, "missing.bam")}, aei.DefaultOpts, "missing.bam"},
		{"missing_loci", filepath.Join(tmpdir, "missing.txt"), f.xamPaths, aei.DefaultOpts, "missing.txt"},
		{"malformed_locus", badLoci, f.xamPaths, aei.DefaultOpts, "bad.txt:2"},
		{"bad_stat", f.lociPath, f.xamPaths, badOpts, "zscore"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := aei.Run(ctx, test.lociPath, test.xamPaths, outPath, test.opts)
			assert.True(t, err != nil)
			expect.True(t, strings.Contains(err.Error(), test.want), "got %v, want %s", err, test.want)
		})
	}
}
