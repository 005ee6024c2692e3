package grpc_control

import (
	"context"
	"errors"
	"time"

	"market-breadth/src/config"
	"market-breadth/src/helpers"
	"market-breadth/src/logger"
	"market-breadth/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PollerController is the poller surface the control service drives.
type PollerController interface {
	IsRunning() bool
	Stop() error
	Restart() error
	SetInterval(seconds int) error
	CollectNow(ctx context.Context) (models.MBreadthSnapshot, error)
	Stats() models.MPollerStats
}

// LiveResizer is the live view the control service can retune.
type LiveResizer interface {
	Resize(maxPoints int)
	Len() int
}

// -----------------------------------------------------------------------------
// ControlService implements ControlServer on top of the poller
// -----------------------------------------------------------------------------

type ControlService struct {
	Config     *config.Config
	ConfigPath string // empty disables persisting changes
	Poller     PollerController
	Live       LiveResizer
	Logger     *logger.Logger
}

func NewControlService(cfg *config.Config, cfgPath string, p PollerController, live LiveResizer, log *logger.Logger) *ControlService {
	return &ControlService{Config: cfg, ConfigPath: cfgPath, Poller: p, Live: live, Logger: log}
}

// -----------------------------------------------------------------------------

// NewServer returns a gRPC server with the control and health services
// registered.
func NewServer(svc *ControlService) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	RegisterControlServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// -----------------------------------------------------------------------------

func (s *ControlService) statusStruct(message string) (*structpb.Struct, error) {
	st := s.Poller.Stats()
	fields := map[string]interface{}{
		"running":              st.Running,
		"interval_seconds":     st.IntervalSeconds,
		"cycles":               st.Cycles,
		"failures":             st.Failures,
		"consecutive_failures": st.ConsecutiveFailures,
		"market_open":          st.MarketOpen,
		"last_error":           st.LastError,
		"last_success":         "",
	}
	if !st.LastSuccess.IsZero() {
		fields["last_success"] = st.LastSuccess.In(models.MarketLocation).Format(time.RFC3339)
	}
	if message != "" {
		fields["message"] = message
	}
	return structpb.NewStruct(fields)
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.statusStruct("")
}

// -----------------------------------------------------------------------------

func (s *ControlService) StartPolling(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.Poller.IsRunning() {
		return nil, status.Error(codes.FailedPrecondition, "poller is already running")
	}
	if err := s.Poller.Restart(); err != nil {
		return nil, status.Errorf(codes.Internal, "start poller: %v", err)
	}
	s.Logger.Info("gRPC: polling started")
	return s.statusStruct("polling started")
}

// -----------------------------------------------------------------------------

func (s *ControlService) StopPolling(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.Poller.Stop(); err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	s.Logger.Info("gRPC: polling stopped")
	return s.statusStruct("polling stopped")
}

// -----------------------------------------------------------------------------

// SetInterval changes the poll interval and, when a config path is set,
// persists it.
func (s *ControlService) SetInterval(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	seconds := int(req.GetValue())
	if err := s.Poller.SetInterval(seconds); err != nil {
		var verr *helpers.ValidationError
		if errors.As(err, &verr) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	s.Config.Poller.IntervalSeconds = seconds
	s.persist("interval")
	s.Logger.Info("gRPC: interval set to %ds", seconds)
	return s.statusStruct("interval updated")
}

// -----------------------------------------------------------------------------

// SetLivePoints changes how many snapshots the live view keeps. Shrinking
// drops the oldest points.
func (s *ControlService) SetLivePoints(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	points := int(req.GetValue())
	if points <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "live_points must be positive, got %d", points)
	}
	if s.Live == nil {
		return nil, status.Error(codes.FailedPrecondition, "no live view attached")
	}

	s.Live.Resize(points)
	s.Config.Poller.LivePoints = points
	s.persist("live_points")
	s.Logger.Info("gRPC: live points set to %d", points)

	st, err := s.statusStruct("live points updated")
	if err != nil {
		return nil, err
	}
	st.Fields["live_points"] = structpb.NewNumberValue(float64(points))
	st.Fields["live_len"] = structpb.NewNumberValue(float64(s.Live.Len()))
	return st, nil
}

// -----------------------------------------------------------------------------

// persist writes the config back when a config path is set.
func (s *ControlService) persist(what string) {
	if s.ConfigPath == "" {
		return
	}
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Warning("gRPC: failed to persist %s: %v", what, err)
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) CollectNow(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.Poller.CollectNow(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "collect: %v", err)
	}

	c := snap.Counts
	return structpb.NewStruct(map[string]interface{}{
		"cycle_id":    snap.CycleID,
		"captured_at": snap.LocalTime().Format(models.DateTimeLayout),
		"total":       c.Total,
		"up_count":    c.UpCount,
		"down_count":  c.DownCount,
		"flat_count":  c.FlatCount,
		"limit_up":    c.LimitUp,
		"limit_down":  c.LimitDown,
		"index_price": snap.Index.Price,
		"index_pct":   snap.Index.ChangePercent,
	})
}
