package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/utils"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeStore struct {
	rec     *recorder
	saveErr error
}

func (s *fakeStore) Initialize() error { return nil }
func (s *fakeStore) SaveSnapshot(models.MBreadthSnapshot) error {
	s.rec.add("save")
	return s.saveErr
}
func (s *fakeStore) QueryRange(time.Time, time.Time) ([]models.MBreadthSnapshot, error) {
	return nil, nil
}
func (s *fakeStore) Latest() (*models.MBreadthSnapshot, error) { return nil, nil }
func (s *fakeStore) CleanupOldData() error {
	s.rec.add("cleanup")
	return nil
}
func (s *fakeStore) Close() error { return nil }

type fakeExchanger struct{ rec *recorder }

func (e *fakeExchanger) Broadcast(models.MBreadthSnapshot) { e.rec.add("broadcast") }
func (e *fakeExchanger) Start() error                      { return nil }
func (e *fakeExchanger) Stop() error                       { return nil }

type fakeSink struct {
	name string
	rec  *recorder
	err  error
}

func (s *fakeSink) Name() string { return s.name }
func (s *fakeSink) Publish(context.Context, models.MBreadthSnapshot) error {
	s.rec.add("sink:" + s.name)
	return s.err
}
func (s *fakeSink) Close() error { return nil }

func newDispatcher(rec *recorder, saveErr error) *Dispatcher {
	return &Dispatcher{
		Store:     &fakeStore{rec: rec, saveErr: saveErr},
		Live:      utils.NewLiveSeries(10),
		Exchanger: &fakeExchanger{rec: rec},
		Sinks: []interfaces.ISnapshotSink{
			&fakeSink{name: "redis", rec: rec, err: errors.New("connection refused")},
			&fakeSink{name: "kafka", rec: rec},
		},
		Logger: logger.NewNopLogger("pipeline"),
	}
}

func snapshot(up int) models.MBreadthSnapshot {
	return models.MBreadthSnapshot{
		CapturedAt: time.Date(2026, 10, 19, 9, 35, 0, 0, models.MarketLocation),
		Counts:     models.MBatchStats{Total: 5000, UpCount: up},
	}
}

// -----------------------------------------------------------------------------

func TestHandleOrder(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(rec, nil)

	d.Handle(context.Background(), snapshot(3100))

	want := []string{"save", "broadcast", "sink:redis", "sink:kafka", "cleanup"}
	got := rec.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if latest, ok := d.Live.Latest(); !ok || latest.Counts.UpCount != 3100 {
		t.Errorf("live latest = %+v, %v", latest, ok)
	}
}

// -----------------------------------------------------------------------------

func TestHandleContinuesAfterSaveError(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(rec, errors.New("disk full"))

	d.Handle(context.Background(), snapshot(1))

	if d.Live.Len() != 1 {
		t.Errorf("live len = %d", d.Live.Len())
	}
	if got := rec.list(); got[len(got)-1] != "cleanup" {
		t.Errorf("chain stopped early: %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestRunStopsOnClose(t *testing.T) {
	rec := &recorder{}
	d := newDispatcher(rec, nil)
	d.Exchanger = nil

	in := make(chan models.MBreadthSnapshot, 3)
	in <- snapshot(1)
	in <- snapshot(2)
	in <- snapshot(3)
	close(in)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), in)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after channel close")
	}
	if d.Live.Len() != 3 {
		t.Errorf("live len = %d, want 3", d.Live.Len())
	}
}

// -----------------------------------------------------------------------------

func TestRunStopsOnCancel(t *testing.T) {
	d := newDispatcher(&recorder{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx, make(chan models.MBreadthSnapshot))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
