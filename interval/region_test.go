package interval

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		chrName string
		start0  PosType
		end     PosType
	}{
		{
			"chr1:1-1000",
			"chr1",
			0,
			1000,
		},
		{
			"chr1:1000",
			"chr1",
			999,
			1000,
		},
		{
			"chr1:1000-1000",
			"chr1",
			999,
			1000,
		},
		{
			"chr1",
			"chr1",
			0,
			math.MaxInt32 - 1,
		},
	}

	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		expect.NoError(t, err)
		expect.EQ(t, result.ChrName, tt.chrName)
		expect.EQ(t, result.Start0, tt.start0)
		expect.EQ(t, result.End, tt.end)
	}
}

func TestParseRegionStringErrors(t *testing.T) {
	for _, region := range []string{
		"",
		":100",
		"chr1:0",
		"chr1:-5",
		"chr1:abc",
		"chr1:100-99",
		"chr1:0-10",
		"chr1:10-x",
	} {
		_, err := ParseRegionString(region)
		expect.True(t, err != nil, "region %q", region)
	}
}

func TestEntryContains(t *testing.T) {
	e, err := ParseRegionString("chr2:101-200")
	expect.NoError(t, err)
	expect.EQ(t, e.String(), "chr2:101-200")
	tests := []struct {
		chr  string
		pos0 PosType
		want bool
	}{
		{"chr2", 99, false},
		{"chr2", 100, true},
		{"chr2", 199, true},
		{"chr2", 200, false},
		{"chr1", 150, false},
	}
	for _, tt := range tests {
		expect.EQ(t, e.Contains(tt.chr, tt.pos0), tt.want, "%s:%d", tt.chr, tt.pos0)
	}
}
