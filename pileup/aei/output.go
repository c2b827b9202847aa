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
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// ReportWriter writes the tab-separated report.
type ReportWriter struct {
	ctx   context.Context
	out   file.File
	bgzfw *bgzf.Writer
	tsvw  *tsv.Writer
	stat  string
}

// NewReportWriter creates a ReportWriter.  path "" or "-" means stdout; a
// path ending in ".gz" is BGZF-compressed.  stat is StatRatio or StatPValue.
func NewReportWriter(ctx context.Context, path, stat string) (*ReportWriter, error) {
	w := &ReportWriter{ctx: ctx, stat: stat}
	if path == "" || path == "-" {
		w.tsvw = tsv.NewWriter(os.Stdout)
		return w, nil
	}
	var err error
	if w.out, err = file.Create(ctx, path); err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		w.bgzfw = bgzf.NewWriter(w.out.Writer(ctx), 1)
		w.tsvw = tsv.NewWriter(w.bgzfw)
	} else {
		w.tsvw = tsv.NewWriter(w.out.Writer(ctx))
	}
	return w, nil
}

// WriteHeader writes the column names: chr, pos, rsID, then three columns
// per sample of every source.
func (w *ReportWriter) WriteHeader(sources []*Source) error {
	w.tsvw.WriteString("chr")
	w.tsvw.WriteString("pos")
	w.tsvw.WriteString("rsID")
	for _, src := range sources {
		for i := 0; i < src.Samples.Len(); i++ {
			w.tsvw.WriteString(src.Samples.At(i).Name)
			w.tsvw.WriteString("Genotype(Maj/Min)")
			w.tsvw.WriteString("Ratio")
		}
	}
	return w.tsvw.EndLine()
}

func countPair(c [2]uint32) string {
	return strconv.FormatUint(uint64(c[0]), 10) + ":" + strconv.FormatUint(uint64(c[1]), 10)
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteLocus writes one report row.
func (w *ReportWriter) WriteLocus(res LocusResult) error {
	w.tsvw.WriteString(res.Locus.Chrom)
	w.tsvw.WriteUint32(uint32(res.Locus.Pos))
	w.tsvw.WriteString(res.Locus.ID)
	for _, s := range res.Samples {
		call := s.Call
		switch call.Zygosity {
		case Heterozygous:
			if w.stat == StatPValue {
				w.tsvw.WriteString(formatStat(s.Imbalance.PValue))
			} else {
				w.tsvw.WriteString(formatStat(s.Imbalance.Ratio))
			}
			w.tsvw.WriteString(string([]byte{call.Major(), ':', call.Minor()}))
		case Homozygous:
			w.tsvw.WriteString("HOMO")
			w.tsvw.WriteByte(call.Major())
		default:
			w.tsvw.WriteString("NA")
			w.tsvw.WriteByte(call.Major())
		}
		w.tsvw.WriteString(countPair(call.Counts))
	}
	return w.tsvw.EndLine()
}

// Close flushes the report and closes the output file, if any.
func (w *ReportWriter) Close() (err error) {
	err = w.tsvw.Flush()
	if w.bgzfw != nil {
		if e := w.bgzfw.Close(); e != nil && err == nil {
			err = e
		}
	}
	if w.out != nil {
		file.CloseAndReport(w.ctx, w.out, &err)
	}
	return err
}
