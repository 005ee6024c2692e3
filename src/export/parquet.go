package export

import (
	"market-breadth/src/models"

	"github.com/parquet-go/parquet-go"
)

// ParquetSaver writes rows as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string   { return "parquet" }
func (ParquetSaver) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetSaver) Save(snaps []models.MBreadthSnapshot, path string) error {
	return parquet.WriteFile(path, Rows(snaps))
}
