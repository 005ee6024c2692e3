package export

import (
	"fmt"
	"strings"

	"market-breadth/src/models"
)

// Saver writes a set of snapshots to one file.
type Saver interface {
	Save(snaps []models.MBreadthSnapshot, path string) error
	Extension() string
	ContentType() string
}

// NewSaver returns the saver for format (csv, json, parquet).
func NewSaver(format string) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	}
	return nil, fmt.Errorf("export: unsupported format %q (use csv, json or parquet)", format)
}
