package quote

import (
	"fmt"
	"strings"
	"testing"

	"market-breadth/src/models"
)

// record renders v_<symbol>="..." with n fields, setting the given positions.
func record(symbol string, n int, set map[int]string) string {
	fields := make([]string, n)
	for i := range fields {
		fields[i] = "0"
	}
	for idx, v := range set {
		fields[idx] = v
	}
	return fmt.Sprintf(`v_%s="%s";`, symbol, strings.Join(fields, "~"))
}

func stock(symbol, pct string) string {
	return record(symbol, 50, map[int]string{FieldName: "NAME", FieldChangePercent: pct})
}

func TestExtractRecordsSkipsPlaceholders(t *testing.T) {
	text := strings.Join([]string{
		`v_sh600000="";`,
		`v_sh600001="1";`,
		`v_pv_none_match="1";`,
		`v_sh600002="a~b~c";`,
	}, "\n")

	recs := ExtractRecords(text)
	if len(recs) != 1 || recs[0].Key != "sh600002" || len(recs[0].Fields) != 3 {
		t.Fatalf("records = %+v", recs)
	}
	if recs[0].Field(99) != "" {
		t.Error("out-of-range field should be empty")
	}
}

func TestParseBatchEndToEnd(t *testing.T) {
	text := strings.Join([]string{
		stock("sh600000", "12.0"),
		stock("sz000001", "-10.0"),
		stock("sz300001", "0.0"),
		record("bj830001", 20, map[int]string{}),
	}, "\n")

	got := ParseBatch(text, DefaultThresholds)
	want := models.MBatchStats{
		Total: 3, UpCount: 1, DownCount: 1, FlatCount: 1,
		Up3Pct: 1, Up5Pct: 1, LimitUp: 1,
		Down3Pct: 1, Down5Pct: 1, LimitDown: 1,
	}
	if got != want {
		t.Errorf("ParseBatch = %+v\nwant %+v", got, want)
	}
}

func TestParseBatchSkipsMalformedRecords(t *testing.T) {
	text := strings.Join([]string{
		stock("sh600000", ""),
		stock("sh600001", "abc"),
		stock("sh600002", "NaN"),
		stock("sh600005", "0x1p3"),
		stock("sh600006", "-0X1.8p1"),
		record("sh600003", 32, map[int]string{31: "1"}),
		`v_sh600004="1";`,
	}, "\n")

	if got := ParseBatch(text, DefaultThresholds); got != (models.MBatchStats{}) {
		t.Errorf("expected no counts, got %+v", got)
	}
}

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.25", 1.25, true},
		{"+3", 3, true},
		{"-0.0", 0, true},
		{"1e2", 100, true},
		{"0.5", 0.5, true},
		{"", 0, false},
		{"+", 0, false},
		{"0x10", 0, false},
		{"-0x1p3", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseFloat(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestExactly33FieldsCounts(t *testing.T) {
	text := record("sh600000", 33, map[int]string{FieldChangePercent: "1.5"})
	if got := ParseBatch(text, DefaultThresholds); got.Total != 1 || got.UpCount != 1 {
		t.Errorf("33-field record should count, got %+v", got)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want models.MBatchStats
	}{
		{3.0, models.MBatchStats{Total: 1, UpCount: 1, Up3Pct: 1}},
		{2.999, models.MBatchStats{Total: 1, UpCount: 1}},
		{9.9, models.MBatchStats{Total: 1, UpCount: 1, Up3Pct: 1, Up5Pct: 1, LimitUp: 1}},
		{9.89, models.MBatchStats{Total: 1, UpCount: 1, Up3Pct: 1, Up5Pct: 1}},
		{0, models.MBatchStats{Total: 1, FlatCount: 1}},
		{-3.0, models.MBatchStats{Total: 1, DownCount: 1, Down3Pct: 1}},
		{-5.0, models.MBatchStats{Total: 1, DownCount: 1, Down3Pct: 1, Down5Pct: 1}},
		{-9.9, models.MBatchStats{Total: 1, DownCount: 1, Down3Pct: 1, Down5Pct: 1, LimitDown: 1}},
		{12.0, models.MBatchStats{Total: 1, UpCount: 1, Up3Pct: 1, Up5Pct: 1, LimitUp: 1}},
	}
	for _, c := range cases {
		if got := Classify(c.pct, DefaultThresholds); got != c.want {
			t.Errorf("Classify(%v) = %+v, want %+v", c.pct, got, c.want)
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := models.MThresholds{SmallMove: 2, LargeMove: 4, Limit: 19.9}
	got := Classify(10, th)
	if got.Up3Pct != 1 || got.Up5Pct != 1 || got.LimitUp != 0 {
		t.Errorf("Classify(10) with 20%% limit = %+v", got)
	}
}

func TestParseBatchPartitionIndependent(t *testing.T) {
	pcts := []string{"1", "-2", "0", "3", "-3.5", "5.1", "-7", "9.95", "-10.02", "0.0", "20"}
	var all []string
	for i, p := range pcts {
		all = append(all, stock(fmt.Sprintf("sh%06d", 600000+i), p))
	}

	whole := ParseBatch(strings.Join(all, "\n"), DefaultThresholds)
	for split := 0; split <= len(all); split++ {
		left := ParseBatch(strings.Join(all[:split], "\n"), DefaultThresholds)
		right := ParseBatch(strings.Join(all[split:], "\n"), DefaultThresholds)
		if left.Add(right) != whole || right.Add(left) != whole {
			t.Fatalf("split at %d: %+v + %+v != %+v", split, left, right, whole)
		}
	}
	if whole.Total != len(pcts) {
		t.Errorf("total = %d, want %d", whole.Total, len(pcts))
	}
}

func TestParseIndex(t *testing.T) {
	text := stock("sh600000", "1") + "\n" + record("sh000001", 50, map[int]string{
		FieldPrice:         "3300.50",
		FieldPreviousClose: "3280.00",
		FieldChange:        "20.50",
		FieldChangePercent: "0.62",
		FieldIndexTurnover: "452311.2",
	})

	q, err := ParseIndex(text, "sh000001")
	if err != nil {
		t.Fatalf("ParseIndex: %v", err)
	}
	want := models.MIndexQuote{Symbol: "sh000001", Price: 3300.5, PreviousClose: 3280, Change: 20.5, ChangePercent: 0.62, Turnover: 452311.2}
	if q != want {
		t.Errorf("ParseIndex = %+v, want %+v", q, want)
	}
}

func TestParseIndexFailures(t *testing.T) {
	cases := map[string]string{
		"missing":     stock("sh600000", "1"),
		"short":       record("sh000001", 37, map[int]string{FieldPrice: "1"}),
		"non-numeric": record("sh000001", 50, map[int]string{FieldPrice: "-"}),
		"placeholder": `v_sh000001="1";`,
	}
	for name, text := range cases {
		if _, err := ParseIndex(text, "sh000001"); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFormatCode(t *testing.T) {
	cases := map[string]string{
		"600519":   "sh600519",
		"000858":   "sz000858",
		"300750":   "sz300750",
		"430047":   "bj430047",
		"830799":   "bj830799",
		"SH600000": "sh600000",
		"sz000001": "sz000001",
		" 601318 ": "sh601318",
		"900901":   "900901",
		"":         "",
	}
	for in, want := range cases {
		if got := FormatCode(in); got != want {
			t.Errorf("FormatCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseQuotes(t *testing.T) {
	text := record("sh600519", 50, map[int]string{
		FieldName:          "MOUTAI",
		FieldCode:          "600519",
		FieldPrice:         "1500.00",
		FieldChangePercent: "1.20",
		FieldTime:          "20261019150000",
		FieldPE:            "25.3",
		FieldPB:            "8.1",
	}) + `v_pv_none_match="1";`

	quotes := ParseQuotes(text)
	if len(quotes) != 1 {
		t.Fatalf("quotes = %+v", quotes)
	}
	q := quotes[0]
	if q.Symbol != "sh600519" || q.Name != "MOUTAI" || q.Price != 1500 || q.ChangePercent != 1.2 || q.PE != 25.3 || q.PB != 8.1 {
		t.Errorf("quote = %+v", q)
	}
	if q.Time != "20261019150000" {
		t.Errorf("time = %q", q.Time)
	}
}
