package quote

import (
	"fmt"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------

// ParseIndex extracts the index quote for symbol from text. Every field must
// be present and numeric.
func ParseIndex(text, symbol string) (models.MIndexQuote, error) {
	for _, r := range ExtractRecords(text) {
		if r.Key != symbol {
			continue
		}
		if len(r.Fields) < MinIndexFields {
			return models.MIndexQuote{}, fmt.Errorf("index %s: %d fields, need %d", symbol, len(r.Fields), MinIndexFields)
		}

		q := models.MIndexQuote{Symbol: symbol}
		for _, f := range []struct {
			idx int
			dst *float64
		}{
			{FieldPrice, &q.Price},
			{FieldPreviousClose, &q.PreviousClose},
			{FieldChange, &q.Change},
			{FieldChangePercent, &q.ChangePercent},
			{FieldIndexTurnover, &q.Turnover},
		} {
			v, ok := ParseFloat(r.Field(f.idx))
			if !ok {
				return models.MIndexQuote{}, fmt.Errorf("index %s: field %d is not numeric: %q", symbol, f.idx, r.Field(f.idx))
			}
			*f.dst = v
		}
		return q, nil
	}
	return models.MIndexQuote{}, fmt.Errorf("index %s: no record in response", symbol)
}
