package quote

import (
	"math"
	"strconv"

	"market-breadth/src/models"
)

// DefaultThresholds are the 3%, 5% and 9.9% bucket bounds.
var DefaultThresholds = models.MThresholds{SmallMove: 3, LargeMove: 5, Limit: 9.9}

// -----------------------------------------------------------------------------

// ParseFloat parses a decimal quote field; empty, hex, non-numeric and
// non-finite values are rejected.
func ParseFloat(s string) (float64, bool) {
	if s == "" || isHex(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isHex(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// -----------------------------------------------------------------------------

// ChangePercent returns the record's percentage change when the record is
// long enough and the field is numeric.
func ChangePercent(r Record) (float64, bool) {
	if len(r.Fields) < MinBreadthFields {
		return 0, false
	}
	return ParseFloat(r.Field(FieldChangePercent))
}

// -----------------------------------------------------------------------------

// Classify returns the contribution of one stock with change pct. Buckets are
// independent: a 12% mover counts as up, >=3%, >=5% and limit-up at once.
func Classify(pct float64, th models.MThresholds) models.MBatchStats {
	s := models.MBatchStats{Total: 1}

	switch {
	case pct > 0:
		s.UpCount = 1
	case pct < 0:
		s.DownCount = 1
	default:
		s.FlatCount = 1
	}

	if pct >= th.SmallMove {
		s.Up3Pct = 1
	} else if pct <= -th.SmallMove {
		s.Down3Pct = 1
	}
	if pct >= th.LargeMove {
		s.Up5Pct = 1
	} else if pct <= -th.LargeMove {
		s.Down5Pct = 1
	}
	if pct >= th.Limit {
		s.LimitUp = 1
	} else if pct <= -th.Limit {
		s.LimitDown = 1
	}
	return s
}

// -----------------------------------------------------------------------------

// ParseBatch folds every valid record of a batch response into counts.
// Malformed records are skipped.
func ParseBatch(text string, th models.MThresholds) models.MBatchStats {
	var stats models.MBatchStats
	for _, r := range ExtractRecords(text) {
		pct, ok := ChangePercent(r)
		if !ok {
			continue
		}
		stats = stats.Add(Classify(pct, th))
	}
	return stats
}
