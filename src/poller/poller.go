package poller

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/utils"
)

// -----------------------------------------------------------------------------
// Poller runs the collector on a fixed cadence and pushes every snapshot to
// an output channel. It can be stopped, restarted and re-timed at runtime.
// -----------------------------------------------------------------------------

type Poller struct {
	Config    *models.MConfig
	Collector interfaces.ICollector
	Scheduler *utils.MarketScheduler // nil disables the trading-hours gate
	Errors    *helpers.ErrorHandler
	Logger    *logger.Logger
	Now       func() time.Time

	mu       sync.Mutex // guards lifecycle fields below
	parent   context.Context
	cancel   context.CancelFunc
	out      chan<- models.MBreadthSnapshot
	wg       *sync.WaitGroup
	running  atomic.Bool
	interval atomic.Int64 // seconds
	wake     chan struct{}

	collectMu sync.Mutex

	statsMu     sync.Mutex
	cycles      int64
	failures    int64
	lastSuccess time.Time
	marketOpen  bool
}

// -----------------------------------------------------------------------------

func NewPoller(cfg *models.MConfig, collector interfaces.ICollector, log *logger.Logger) *Poller {
	p := &Poller{
		Config:     cfg,
		Collector:  collector,
		Errors:     helpers.NewErrorHandler(log),
		Logger:     log,
		Now:        time.Now,
		wake:       make(chan struct{}, 1),
		marketOpen: true,
	}
	if cfg.Poller.MarketHoursOnly {
		p.Scheduler = utils.NewMarketScheduler([]string{"sh", "sz"}, log)
	}
	p.interval.Store(int64(cfg.Poller.IntervalSeconds))
	return p
}

// -----------------------------------------------------------------------------

// Start launches the polling loop. out receives every snapshot; wg is
// released when the loop exits.
func (p *Poller) Start(ctx context.Context, out chan<- models.MBreadthSnapshot, wg *sync.WaitGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return fmt.Errorf("poller is already running")
	}

	p.parent, p.out, p.wg = ctx, out, wg
	p.start()
	return nil
}

// start assumes p.mu is held.
func (p *Poller) start() {
	ctx, cancel := context.WithCancel(p.parent)
	p.cancel = cancel
	p.running.Store(true)

	p.wg.Add(1)
	go p.runLoop(ctx)
	p.Logger.Info("Poller started (every %ds)", p.interval.Load())
}

// -----------------------------------------------------------------------------

// Stop cancels the loop. An in-flight cycle is abandoned.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return fmt.Errorf("poller is not running")
	}
	p.cancel()
	p.running.Store(false)
	p.Logger.Info("Poller stopped")
	return nil
}

// -----------------------------------------------------------------------------

// Restart stops a running loop and starts a fresh one on the same channel.
func (p *Poller) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parent == nil {
		return fmt.Errorf("poller was never started")
	}
	if p.running.Load() {
		p.cancel()
	}
	p.start()
	return nil
}

// -----------------------------------------------------------------------------

func (p *Poller) IsRunning() bool {
	return p.running.Load()
}

// -----------------------------------------------------------------------------

func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load()) * time.Second
}

// -----------------------------------------------------------------------------

// SetInterval changes the cadence; the running loop picks it up immediately.
func (p *Poller) SetInterval(seconds int) error {
	if !slices.Contains(p.Config.Poller.AllowedIntervals, seconds) {
		return helpers.NewValidationError(
			fmt.Sprintf("interval %ds is not one of %v", seconds, p.Config.Poller.AllowedIntervals), nil)
	}
	p.interval.Store(int64(seconds))
	p.Logger.Info("Poll interval set to %ds", seconds)

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// -----------------------------------------------------------------------------

// CollectNow runs one cycle outside the schedule and forwards the snapshot
// to the output channel when the poller has one.
func (p *Poller) CollectNow(ctx context.Context) (models.MBreadthSnapshot, error) {
	snap, err := p.collect(ctx)
	if err != nil {
		return snap, err
	}

	p.mu.Lock()
	out := p.out
	p.mu.Unlock()

	if out != nil {
		select {
		case out <- snap:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
	return snap, nil
}

// -----------------------------------------------------------------------------

func (p *Poller) collect(ctx context.Context) (models.MBreadthSnapshot, error) {
	p.collectMu.Lock()
	defer p.collectMu.Unlock()

	snap, err := p.Collector.CollectSnapshot(ctx)

	p.statsMu.Lock()
	p.cycles++
	if err != nil {
		p.failures++
	} else {
		p.lastSuccess = snap.CapturedAt
	}
	p.statsMu.Unlock()

	if err != nil {
		p.Errors.Handle(err, "collect snapshot")
		return snap, err
	}
	p.Errors.ResetErrorCount()
	return snap, nil
}

// -----------------------------------------------------------------------------

func (p *Poller) Stats() models.MPollerStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	st := models.MPollerStats{
		Running:             p.running.Load(),
		IntervalSeconds:     int(p.interval.Load()),
		Cycles:              p.cycles,
		Failures:            p.failures,
		ConsecutiveFailures: p.Errors.ErrorCount(),
		LastSuccess:         p.lastSuccess,
		MarketOpen:          p.marketOpen,
	}
	if err := p.Errors.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

// -----------------------------------------------------------------------------

func (p *Poller) setMarketOpen(open bool) (changed bool) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	changed = p.marketOpen != open
	p.marketOpen = open
	return changed
}

// -----------------------------------------------------------------------------

func (p *Poller) runLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		if p.Scheduler != nil && !p.Scheduler.AnyMarketOpenAt(p.Now()) {
			if p.setMarketOpen(false) {
				p.Logger.Info("Market closed. Re-checking every %ds...", p.Config.Poller.ClosedRecheckSeconds)
			}
			select {
			case <-time.After(time.Duration(p.Config.Poller.ClosedRecheckSeconds) * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		if p.setMarketOpen(true) && p.Scheduler != nil {
			p.Logger.Info("Market open. Resuming collection.")
		}

		started := time.Now()
		snap, err := p.collect(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			select {
			case p.out <- snap:
			case <-ctx.Done():
				return
			}
		}

		if !p.sleepUntilNext(ctx, started) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

// sleepUntilNext waits for the next cycle start, re-arming when the interval
// changes. It returns false once ctx is done.
func (p *Poller) sleepUntilNext(ctx context.Context, started time.Time) bool {
	timer := time.NewTimer(utils.NextWait(p.Interval(), time.Since(started)))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return true
		case <-p.wake:
			timer.Reset(utils.NextWait(p.Interval(), time.Since(started)))
		case <-ctx.Done():
			return false
		}
	}
}
