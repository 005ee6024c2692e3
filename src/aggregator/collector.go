package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-breadth/src/data_source/tencent"
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/quote"
	"market-breadth/src/universe"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoBreadthData means every batch of the cycle failed.
	ErrNoBreadthData = errors.New("no breadth data: every batch failed")
	// ErrNoIndexData means the reference index could not be fetched.
	ErrNoIndexData = errors.New("no index data")
)

// Collector produces one breadth snapshot per call. Calls are expected to be
// serialized by the caller.
type Collector struct {
	Config *models.MConfig
	Source interfaces.IQuoteSource
	Logger *logger.Logger

	// Universe and Now are replaceable for tests.
	Universe func() []string
	Now      func() time.Time
}

// batchResult is one batch's contribution; a failed batch adds nothing.
type batchResult struct {
	stats models.MBatchStats
	ok    bool
}

// -----------------------------------------------------------------------------

func NewCollector(cfg *models.MConfig, src interfaces.IQuoteSource, log *logger.Logger) *Collector {
	return &Collector{
		Config:   cfg,
		Source:   src,
		Logger:   log,
		Universe: universe.All,
		Now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// MarketCounts tallies the universe by exchange prefix.
func (c *Collector) MarketCounts() map[string]int {
	counts := make(map[string]int)
	for _, sym := range c.Universe() {
		if m := universe.Market(sym); m != "" {
			counts[m]++
		}
	}
	return counts
}

// -----------------------------------------------------------------------------

// LogUniverse writes the code range table and per-market sizes at startup.
func (c *Collector) LogUniverse() {
	for _, seg := range universe.Segments() {
		c.Logger.Debug("Universe segment %s/%s: [%06d, %06d) %d codes", seg.Market, seg.Board, seg.Start, seg.End, seg.Size())
	}
	counts := c.MarketCounts()
	c.Logger.Info("Universe: %d symbols (sh %d / sz %d / bj %d), batch size %d, %d workers",
		len(c.Universe()), counts["sh"], counts["sz"], counts["bj"], c.Config.DataSource.BatchSize, c.Config.DataSource.Workers)
}

// -----------------------------------------------------------------------------

// CollectSnapshot runs the index fetch and the batch pipeline concurrently and
// merges them. It returns ErrNoBreadthData when no batch succeeded and
// ErrNoIndexData when the index is missing and required.
func (c *Collector) CollectSnapshot(ctx context.Context) (models.MBreadthSnapshot, error) {
	started := c.Now()
	symbols := c.Universe()

	var (
		index    models.MIndexQuote
		indexErr error
		counts   models.MBatchStats
		total    int
		failed   int
	)

	var g errgroup.Group
	g.Go(func() error {
		index, indexErr = c.Source.FetchIndex(ctx)
		return nil
	})
	g.Go(func() error {
		counts, total, failed = c.runBatches(ctx, symbols)
		return nil
	})
	_ = g.Wait()

	var errs []error
	if total == 0 || failed == total {
		if ctx.Err() != nil {
			return models.MBreadthSnapshot{}, ctx.Err()
		}
		errs = append(errs, ErrNoBreadthData)
	}
	if indexErr != nil {
		if c.Config.DataSource.IndexRequired() {
			errs = append(errs, fmt.Errorf("%w: %v", ErrNoIndexData, indexErr))
		} else {
			c.Logger.Warning("Index fetch failed, emitting snapshot without index: %v", indexErr)
			index = models.MIndexQuote{Symbol: c.Config.DataSource.IndexSymbol}
		}
	}
	if len(errs) > 0 {
		return models.MBreadthSnapshot{}, errors.Join(errs...)
	}

	finished := c.Now()
	elapsed := finished.Sub(started)
	snap := models.MBreadthSnapshot{
		CycleID:    uuid.NewString(),
		CapturedAt: finished,
		Counts:     counts,
		Index:      index,
		Metrics: models.MProcessingMetrics{
			ElapsedSeconds: elapsed.Seconds(),
			UniverseSize:   len(symbols),
			BatchesTotal:   total,
			BatchesFailed:  failed,
			IndexOK:        indexErr == nil,
		},
	}

	c.Logger.Info("Cycle %s: %d stocks (up %d / down %d / flat %d), %d/%d batches ok in %.2fs",
		snap.CycleID[:8], counts.Total, counts.UpCount, counts.DownCount, counts.FlatCount,
		total-failed, total, elapsed.Seconds())
	return snap, nil
}

// -----------------------------------------------------------------------------

// runBatches fetches and parses every batch on a fixed-width pool and folds
// the results once all workers are done. Batches not launched because ctx was
// cancelled count as failed.
func (c *Collector) runBatches(ctx context.Context, symbols []string) (models.MBatchStats, int, int) {
	ds := c.Config.DataSource
	batches := tencent.Partition(symbols, ds.BatchSize)
	results := make(chan batchResult, len(batches))

	var pool errgroup.Group
	pool.SetLimit(ds.Workers)

	launched := 0
	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		launched++
		pool.Go(func() error {
			results <- c.fetchAndParse(ctx, batch)
			return nil
		})
	}
	_ = pool.Wait()
	close(results)

	var stats models.MBatchStats
	failed := len(batches) - launched
	for r := range results {
		if !r.ok {
			failed++
			continue
		}
		stats = stats.Add(r.stats)
	}
	return stats, len(batches), failed
}

// -----------------------------------------------------------------------------

func (c *Collector) fetchAndParse(ctx context.Context, batch []string) batchResult {
	text, err := c.Source.FetchBatch(ctx, batch)
	if err != nil {
		c.Logger.Warning("Batch %s failed: %v", tencent.Describe(batch), err)
		return batchResult{}
	}
	return batchResult{
		stats: quote.ParseBatch(text, c.Config.DataSource.Thresholds),
		ok:    true,
	}
}
