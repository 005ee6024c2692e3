package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"market-breadth/src/models"
)

// CSVSaver writes a header of models.SnapshotColumns and one line per snapshot.
type CSVSaver struct{}

func (CSVSaver) Extension() string   { return "csv" }
func (CSVSaver) ContentType() string { return "text/csv" }

func (CSVSaver) Save(snaps []models.MBreadthSnapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.SnapshotColumns); err != nil {
		return err
	}
	for _, r := range Rows(snaps) {
		rec := []string{
			r.Datetime, r.Date, r.Time,
			itoa(r.Total), itoa(r.UpCount), itoa(r.DownCount), itoa(r.FlatCount),
			itoa(r.Up3Pct), itoa(r.Down3Pct), itoa(r.Up5Pct), itoa(r.Down5Pct),
			itoa(r.LimitUp), itoa(r.LimitDown),
			ftoa(r.IndexPrice), ftoa(r.IndexPreClose), ftoa(r.IndexChange), ftoa(r.IndexPct), ftoa(r.IndexAmount),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func itoa(v int64) string   { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
