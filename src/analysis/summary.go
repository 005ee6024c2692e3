package analysis

import (
	"market-breadth/src/analysis/core"
	"market-breadth/src/models"
)

// SummaryColumns are the count columns reported by Summarize.
var SummaryColumns = []string{
	"up_count", "down_count",
	"up_3pct", "down_3pct",
	"up_5pct", "down_5pct",
	"limit_up", "limit_down",
}

// -----------------------------------------------------------------------------

func column(c models.MBatchStats, name string) int {
	switch name {
	case "up_count":
		return c.UpCount
	case "down_count":
		return c.DownCount
	case "up_3pct":
		return c.Up3Pct
	case "down_3pct":
		return c.Down3Pct
	case "up_5pct":
		return c.Up5Pct
	case "down_5pct":
		return c.Down5Pct
	case "limit_up":
		return c.LimitUp
	case "limit_down":
		return c.LimitDown
	}
	return 0
}

// -----------------------------------------------------------------------------

// Summarize reports the record count, first and last date and per-column
// avg/max/min of records. Records are expected oldest first.
func Summarize(records []models.MBreadthSnapshot) models.MSnapshotSummary {
	if len(records) == 0 {
		return models.MSnapshotSummary{}
	}

	summary := models.MSnapshotSummary{
		RecordCount: len(records),
		DateRange:   []string{records[0].Date(), records[len(records)-1].Date()},
		Columns:     make(map[string]models.MColumnSummary, len(SummaryColumns)),
	}

	ints := make([]int, len(records))
	floats := make([]float64, len(records))
	for _, name := range SummaryColumns {
		for i, r := range records {
			v := column(r.Counts, name)
			ints[i] = v
			floats[i] = float64(v)
		}
		mean, _ := core.CalculateMeanStd(floats)
		lo, hi := core.MinMax(ints)
		summary.Columns[name] = models.MColumnSummary{Avg: core.Round1(mean), Max: hi, Min: lo}
	}
	return summary
}
