package export

import (
	"encoding/json"
	"os"

	"market-breadth/src/models"
)

// JSONSaver writes an indented JSON array of rows.
type JSONSaver struct{}

func (JSONSaver) Extension() string   { return "json" }
func (JSONSaver) ContentType() string { return "application/json" }

func (JSONSaver) Save(snaps []models.MBreadthSnapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Rows(snaps)); err != nil {
		return err
	}
	return f.Close()
}
