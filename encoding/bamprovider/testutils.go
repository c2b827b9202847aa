package bamprovider

import (
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// WriteIndexedBAM writes recs to a BAM file at path, then indexes it and
// writes the index to path + ".bai". recs must be coordinate-sorted. Used by
// tests that need a real indexed BAM.
func WriteIndexedBAM(path string, header *sam.Header, recs []*sam.Record) (err error) {
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	bw, err := bam.NewWriter(out.Writer(ctx), header, 1)
	if err != nil {
		file.CloseAndReport(ctx, out, &err)
		return err
	}
	for _, r := range recs {
		if err = bw.Write(r); err != nil {
			bw.Close()
			file.CloseAndReport(ctx, out, &err)
			return err
		}
	}
	if err = bw.Close(); err != nil {
		file.CloseAndReport(ctx, out, &err)
		return err
	}
	if err = out.Close(ctx); err != nil {
		return err
	}

	// The index chunks are only known after the records have been compressed,
	// so read the file back to build them.
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return err
	}
	defer br.Close()
	var idx bam.Index
	for {
		r, rerr := br.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
		if err = idx.Add(r, br.LastChunk()); err != nil {
			return err
		}
	}
	idxOut, err := file.Create(ctx, path+".bai")
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, idxOut, &err)
	return bam.WriteIndex(idxOut.Writer(ctx), &idx)
}
