package utils

import (
	"fmt"
	"testing"
	"time"

	"market-breadth/src/logger"
	"market-breadth/src/models"
)

func snap(i int) models.MBreadthSnapshot {
	return models.MBreadthSnapshot{
		CycleID:    fmt.Sprintf("c%d", i),
		CapturedAt: time.Unix(int64(1_700_000_000+i), 0),
		Counts:     models.MBatchStats{Total: i},
	}
}

func TestRingBufferWrapsAndOrders(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 1; i <= 5; i++ {
		rb.Append(snap(i))
	}
	if !rb.IsFull() || rb.Size() != 3 {
		t.Fatalf("size = %d, full = %v", rb.Size(), rb.IsFull())
	}

	all := rb.GetAll()
	for i, want := range []int{3, 4, 5} {
		if all[i].Counts.Total != want {
			t.Errorf("all[%d] = %d, want %d", i, all[i].Counts.Total, want)
		}
	}

	latest := rb.GetLatest(2)
	if len(latest) != 2 || latest[0].Counts.Total != 4 || latest[1].Counts.Total != 5 {
		t.Errorf("latest = %+v", latest)
	}
	if len(rb.GetLatest(0)) != 0 {
		t.Error("GetLatest(0) should be empty")
	}
}

func TestRingBufferResize(t *testing.T) {
	rb := NewRingBuffer(5)
	for i := 1; i <= 5; i++ {
		rb.Append(snap(i))
	}
	rb.Resize(2)
	all := rb.GetAll()
	if rb.Capacity() != 2 || len(all) != 2 || all[0].Counts.Total != 4 || all[1].Counts.Total != 5 {
		t.Fatalf("after shrink: cap=%d all=%+v", rb.Capacity(), all)
	}

	rb.Resize(4)
	rb.Append(snap(6))
	all = rb.GetAll()
	if len(all) != 3 || all[2].Counts.Total != 6 {
		t.Errorf("after grow: %+v", all)
	}

	rb.Clear()
	if rb.Size() != 0 || len(rb.GetAll()) != 0 {
		t.Error("clear failed")
	}
}

func TestLiveSeriesLoadKeepsNewest(t *testing.T) {
	ls := NewLiveSeries(100)
	var history []models.MBreadthSnapshot
	for i := 1; i <= 150; i++ {
		history = append(history, snap(i))
	}
	ls.Load(history)

	if ls.Len() != 100 {
		t.Fatalf("len = %d, want 100", ls.Len())
	}
	all := ls.All()
	if all[0].Counts.Total != 51 || all[99].Counts.Total != 150 {
		t.Errorf("first/last = %d/%d", all[0].Counts.Total, all[99].Counts.Total)
	}

	ls.Add(snap(151))
	latest, ok := ls.Latest()
	if !ok || latest.Counts.Total != 151 {
		t.Errorf("latest = %+v", latest)
	}

	ls.Resize(3)
	all = ls.All()
	if len(all) != 3 || all[0].Counts.Total != 149 || all[2].Counts.Total != 151 {
		t.Errorf("after resize = %v", all)
	}
}

func TestLiveSeriesLatestEmpty(t *testing.T) {
	if _, ok := NewLiveSeries(5).Latest(); ok {
		t.Error("expected empty series")
	}
}

func TestNextWait(t *testing.T) {
	cases := []struct {
		interval, elapsed, want time.Duration
	}{
		{10 * time.Second, 3 * time.Second, 7 * time.Second},
		{10 * time.Second, 9500 * time.Millisecond, time.Second},
		{5 * time.Second, 20 * time.Second, time.Second},
	}
	for _, c := range cases {
		if got := NextWait(c.interval, c.elapsed); got != c.want {
			t.Errorf("NextWait(%v, %v) = %v, want %v", c.interval, c.elapsed, got, c.want)
		}
	}
}

func TestFallbackCalendarSessions(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: models.MarketLocation}
	at := func(day, hour, minute int) time.Time {
		// 2026-10-19 is a Monday.
		return time.Date(2026, 10, day, hour, minute, 0, 0, models.MarketLocation)
	}

	cases := []struct {
		t    time.Time
		open bool
	}{
		{at(19, 9, 29), false},
		{at(19, 9, 30), true},
		{at(19, 11, 29), true},
		{at(19, 12, 0), false},
		{at(19, 13, 0), true},
		{at(19, 14, 59), true},
		{at(19, 15, 0), false},
		{at(24, 10, 0), false}, // Saturday
	}
	for _, c := range cases {
		if got := tc.IsOpenOnMinute(c.t); got != c.open {
			t.Errorf("IsOpenOnMinute(%v) = %v, want %v", c.t, got, c.open)
		}
	}
}

func TestMarketSchedulerLunchBreakClosed(t *testing.T) {
	ms := NewMarketScheduler([]string{"sh", "sz", "bj", "sh"}, logger.NewNopLogger("sched"))
	if len(ms.Calendars) != 3 {
		t.Errorf("calendars = %d, want 3", len(ms.Calendars))
	}
	lunch := time.Date(2026, 10, 19, 12, 0, 0, 0, models.MarketLocation)
	if ms.AnyMarketOpenAt(lunch) {
		t.Error("market should be closed over lunch")
	}
	night := time.Date(2026, 10, 19, 22, 0, 0, 0, models.MarketLocation)
	if ms.AnyMarketOpenAt(night) {
		t.Error("market should be closed at night")
	}
}

func TestMarketMIC(t *testing.T) {
	if MarketMIC("sh") != "xshg" || MarketMIC("sz") != "xshe" || MarketMIC("bj") != "xshg" {
		t.Error("unexpected MIC mapping")
	}
}
