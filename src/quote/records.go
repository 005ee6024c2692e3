// Package quote parses the tilde-delimited quote text returned by the
// Tencent quote endpoint and classifies records into breadth buckets.
package quote

import (
	"regexp"
	"strings"
)

// Field positions in a "~" separated quote record.
const (
	FieldName          = 1
	FieldCode          = 2
	FieldPrice         = 3
	FieldPreviousClose = 4
	FieldOpen          = 5
	FieldVolume        = 6
	FieldTime          = 30
	FieldChange        = 31
	FieldChangePercent = 32
	FieldHigh          = 33
	FieldLow           = 34
	FieldIndexTurnover = 37
	FieldTurnoverRate  = 38
	FieldPE            = 43
	FieldAmplitude     = 44
	FieldCirculating   = 45
	FieldTotalValue    = 46
	FieldPB            = 47

	// MinBreadthFields is the minimum field count for a record to count.
	MinBreadthFields = FieldChangePercent + 1
	// MinIndexFields is the minimum field count for the index record.
	MinIndexFields = FieldIndexTurnover + 1
)

const (
	noMatchMarker = "pv_none_match"
	emptySentinel = "1"
)

var recordPattern = regexp.MustCompile(`v_([^=]+)="([^"]*)"`)

// Record is one symbol's raw fields from a response body.
type Record struct {
	Key    string
	Fields []string
}

// -----------------------------------------------------------------------------

// Field returns the trimmed field at idx, or "" when absent.
func (r Record) Field(idx int) string {
	if idx < 0 || idx >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[idx])
}

// -----------------------------------------------------------------------------

// ExtractRecords returns every usable assignment in text, in order. Empty
// values, the "1" placeholder and no-match markers are dropped.
func ExtractRecords(text string) []Record {
	matches := recordPattern.FindAllStringSubmatch(text, -1)
	records := make([]Record, 0, len(matches))

	for _, m := range matches {
		key, value := m[1], m[2]
		if value == "" || value == emptySentinel || strings.Contains(key, noMatchMarker) {
			continue
		}
		records = append(records, Record{Key: key, Fields: strings.Split(value, "~")})
	}
	return records
}
