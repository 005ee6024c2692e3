package grpc_control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"market-breadth/src/config"
	"market-breadth/src/helpers"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/utils"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakePoller struct {
	mu       sync.Mutex
	running  bool
	interval int
	cycles   int64
	fail     bool
}

func (f *fakePoller) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakePoller) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return errors.New("poller is not running")
	}
	f.running = false
	return nil
}

func (f *fakePoller) Restart() error {
	f.mu.Lock()
	f.running = true
	f.mu.Unlock()
	return nil
}

func (f *fakePoller) SetInterval(seconds int) error {
	if seconds != 5 && seconds != 10 && seconds != 30 {
		return helpers.NewValidationError("interval not allowed", nil)
	}
	f.mu.Lock()
	f.interval = seconds
	f.mu.Unlock()
	return nil
}

func (f *fakePoller) CollectNow(ctx context.Context) (models.MBreadthSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return models.MBreadthSnapshot{}, errors.New("no breadth data")
	}
	f.cycles++
	return models.MBreadthSnapshot{
		CycleID:    "abc",
		CapturedAt: time.Date(2026, 10, 19, 9, 35, 0, 0, models.MarketLocation),
		Counts:     models.MBatchStats{Total: 5000, UpCount: 3100, LimitUp: 21},
	}, nil
}

func (f *fakePoller) Stats() models.MPollerStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.MPollerStats{Running: f.running, IntervalSeconds: f.interval, Cycles: f.cycles}
}

// -----------------------------------------------------------------------------

func dial(t *testing.T, svc *ControlService) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := NewServer(svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newService(t *testing.T) (*ControlService, *fakePoller, string) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	fp := &fakePoller{running: true, interval: 10}
	svc := NewControlService(config.Default(), cfgPath, fp, utils.NewLiveSeries(100), logger.NewNopLogger("grpc"))
	return svc, fp, cfgPath
}

// -----------------------------------------------------------------------------

func TestControlLifecycle(t *testing.T) {
	svc, fp, _ := newService(t)
	client := NewControlClient(dial(t, svc))
	ctx := context.Background()

	st, err := client.GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Fields["running"].GetBoolValue() || st.Fields["interval_seconds"].GetNumberValue() != 10 {
		t.Errorf("status = %v", st)
	}

	if _, err := client.StartPolling(ctx); status.Code(err) != codes.FailedPrecondition {
		t.Errorf("StartPolling while running = %v", err)
	}

	st, err = client.StopPolling(ctx)
	if err != nil || st.Fields["running"].GetBoolValue() {
		t.Fatalf("StopPolling = %v, %v", st, err)
	}
	if _, err := client.StopPolling(ctx); status.Code(err) != codes.FailedPrecondition {
		t.Errorf("second StopPolling = %v", err)
	}

	st, err = client.StartPolling(ctx)
	if err != nil || !fp.IsRunning() {
		t.Fatalf("StartPolling = %v, %v", st, err)
	}
	if st.Fields["message"].GetStringValue() != "polling started" {
		t.Errorf("message = %v", st.Fields["message"])
	}
}

// -----------------------------------------------------------------------------

func TestSetIntervalPersists(t *testing.T) {
	svc, _, cfgPath := newService(t)
	client := NewControlClient(dial(t, svc))
	ctx := context.Background()

	if _, err := client.SetInterval(ctx, 7); status.Code(err) != codes.InvalidArgument {
		t.Errorf("SetInterval(7) = %v", err)
	}

	st, err := client.SetInterval(ctx, 30)
	if err != nil {
		t.Fatal(err)
	}
	if st.Fields["interval_seconds"].GetNumberValue() != 30 {
		t.Errorf("status = %v", st)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "interval_seconds: 30") {
		t.Errorf("config not persisted:\n%s", data)
	}
}

// -----------------------------------------------------------------------------

func TestSetLivePointsResizesLiveView(t *testing.T) {
	svc, _, cfgPath := newService(t)
	live := svc.Live.(*utils.LiveSeries)
	base := time.Date(2026, 10, 19, 9, 30, 0, 0, models.MarketLocation)
	for i := 0; i < 10; i++ {
		live.Add(models.MBreadthSnapshot{CycleID: fmt.Sprint(i), CapturedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	client := NewControlClient(dial(t, svc))
	ctx := context.Background()

	if _, err := client.SetLivePoints(ctx, 0); status.Code(err) != codes.InvalidArgument {
		t.Errorf("SetLivePoints(0) = %v", err)
	}

	st, err := client.SetLivePoints(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if st.Fields["live_points"].GetNumberValue() != 4 || st.Fields["live_len"].GetNumberValue() != 4 {
		t.Errorf("status = %v", st)
	}
	all := live.All()
	if len(all) != 4 || all[0].CycleID != "6" || all[3].CycleID != "9" {
		t.Errorf("live view kept %v", all)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "live_points: 4") {
		t.Errorf("config not persisted:\n%s", data)
	}
}

// -----------------------------------------------------------------------------

func TestCollectNow(t *testing.T) {
	svc, fp, _ := newService(t)
	client := NewControlClient(dial(t, svc))
	ctx := context.Background()

	out, err := client.CollectNow(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Fields["up_count"].GetNumberValue() != 3100 || out.Fields["captured_at"].GetStringValue() != "2026-10-19 09:35:00" {
		t.Errorf("snapshot = %v", out)
	}

	fp.mu.Lock()
	fp.fail = true
	fp.mu.Unlock()
	if _, err := client.CollectNow(ctx); status.Code(err) != codes.Unavailable {
		t.Errorf("failed collect = %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestHealthRegistered(t *testing.T) {
	svc, _, _ := newService(t)
	hc := healthpb.NewHealthClient(dial(t, svc))

	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %v", resp.GetStatus())
	}
}
