package universe

import (
	"fmt"
	"strings"
	"sync"
)

// Segment is a half-open numeric code range [Start, End) on one exchange.
type Segment struct {
	Market string
	Board  string
	Start  int
	End    int
}

// Size is the number of candidate codes in the segment.
func (s Segment) Size() int {
	return s.End - s.Start
}

// segments lists candidate ranges in generation order. Unlisted codes are
// dropped silently by the upstream.
var segments = []Segment{
	{Market: "sh", Board: "main", Start: 600000, End: 610000},
	{Market: "sh", Board: "star", Start: 688000, End: 690000},
	{Market: "sz", Board: "main", Start: 1, End: 4000},
	{Market: "sz", Board: "chinext", Start: 300000, End: 310000},
	{Market: "bj", Board: "bse", Start: 430000, End: 440000},
	{Market: "bj", Board: "bse", Start: 830000, End: 840000},
	{Market: "bj", Board: "bse", Start: 870000, End: 880000},
}

// -----------------------------------------------------------------------------

// Segments returns a copy of the range table.
func Segments() []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

// -----------------------------------------------------------------------------

// Generate builds the full symbol list, e.g. "sh600000", "sz000001".
func Generate() []string {
	total := 0
	for _, seg := range segments {
		total += seg.Size()
	}

	symbols := make([]string, 0, total)
	for _, seg := range segments {
		for code := seg.Start; code < seg.End; code++ {
			symbols = append(symbols, fmt.Sprintf("%s%06d", seg.Market, code))
		}
	}
	return symbols
}

// -----------------------------------------------------------------------------

// All returns the memoized universe. The slice is shared; callers must not
// modify it.
var All = sync.OnceValue(Generate)

// -----------------------------------------------------------------------------

// Market returns the two-letter exchange prefix of symbol, or "".
func Market(symbol string) string {
	if len(symbol) < 2 {
		return ""
	}
	switch p := strings.ToLower(symbol[:2]); p {
	case "sh", "sz", "bj":
		return p
	}
	return ""
}
