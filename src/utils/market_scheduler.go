package utils

import (
	"sync"
	"time"

	"market-breadth/src/logger"
)

// MarketScheduler reports whether any tracked exchange is trading.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(markets []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	ms.UpdateMarkets(markets)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateMarkets maps exchange prefixes (sh, sz, bj) to calendars, replacing
// the previous mapping.
func (ms *MarketScheduler) UpdateMarkets(markets []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.Calendars = make(map[string]*TradingCalendar)
	for _, m := range markets {
		if _, ok := ms.Calendars[m]; ok {
			continue
		}
		ms.Calendars[m] = GetCalendar(m)
	}

	ms.Logger.Info("MarketScheduler: tracking %d exchange calendars", len(ms.Calendars))
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if any tracked market is currently open.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	return ms.AnyMarketOpenAt(time.Now())
}

// -----------------------------------------------------------------------------

func (ms *MarketScheduler) AnyMarketOpenAt(t time.Time) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(t) {
			return true
		}
	}
	return false
}
