package quote

import (
	"strings"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------

// FormatCode adds the exchange prefix to a bare code: 6 -> sh, 0/3 -> sz,
// 4/8 -> bj. Prefixed codes pass through lower-cased; unknown codes are
// returned unchanged.
func FormatCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if strings.HasPrefix(code, "sh") || strings.HasPrefix(code, "sz") || strings.HasPrefix(code, "bj") {
		return code
	}

	switch code[0] {
	case '6':
		return "sh" + code
	case '0', '3':
		return "sz" + code
	case '4', '8':
		return "bj" + code
	}
	return code
}

// -----------------------------------------------------------------------------

// ParseQuote maps a record onto the full quote model. Missing or
// non-numeric fields stay zero.
func ParseQuote(r Record) models.MQuoteRecord {
	num := func(idx int) float64 {
		v, _ := ParseFloat(r.Field(idx))
		return v
	}

	return models.MQuoteRecord{
		Symbol:           r.Key,
		Name:             r.Field(FieldName),
		Code:             r.Field(FieldCode),
		Price:            num(FieldPrice),
		PreviousClose:    num(FieldPreviousClose),
		Open:             num(FieldOpen),
		Volume:           num(FieldVolume),
		Time:             r.Field(FieldTime),
		Change:           num(FieldChange),
		ChangePercent:    num(FieldChangePercent),
		High:             num(FieldHigh),
		Low:              num(FieldLow),
		TurnoverRate:     num(FieldTurnoverRate),
		PE:               num(FieldPE),
		Amplitude:        num(FieldAmplitude),
		CirculatingValue: num(FieldCirculating),
		TotalValue:       num(FieldTotalValue),
		PB:               num(FieldPB),
	}
}

// -----------------------------------------------------------------------------

// ParseQuotes returns a quote per record of text, keyed order preserved.
func ParseQuotes(text string) []models.MQuoteRecord {
	records := ExtractRecords(text)
	out := make([]models.MQuoteRecord, 0, len(records))
	for _, r := range records {
		if len(r.Fields) <= FieldPrice {
			continue
		}
		out = append(out, ParseQuote(r))
	}
	return out
}
