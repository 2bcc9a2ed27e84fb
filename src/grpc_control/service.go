package grpc_control

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"econ-dashboard/src/cache"
	"econ-dashboard/src/helpers"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/registry"
)

// ControlService implements ControlServer on top of the series cache and the registry.
type ControlService struct {
	Cache    *cache.SeriesCache
	Registry *registry.Registry
	Logger   *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(seriesCache *cache.SeriesCache, reg *registry.Registry, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ControlService{
		Cache:    seriesCache,
		Registry: reg,
		Logger:   log,
	}
}

// NewServer returns a gRPC server with the control service registered and
// every call logged.
func NewServer(svc *ControlService, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.UnaryInterceptor(svc.logCalls))
	s := grpc.NewServer(opts...)
	RegisterControlServer(s, svc)
	return s
}

func (s *ControlService) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		s.Logger.Warning("gRPC: %s failed after %s: %v", info.FullMethod, time.Since(start), err)
	} else {
		s.Logger.Debug("gRPC: %s ok in %s", info.FullMethod, time.Since(start))
	}
	return resp, err
}

// -----------------------------------------------------------------------------

// statusError maps pipeline error kinds to gRPC codes.
func statusError(err error) error {
	code := codes.Internal
	switch helpers.KindOf(err) {
	case helpers.KindValidation, helpers.KindParse:
		code = codes.InvalidArgument
	case helpers.KindDuplicateName:
		code = codes.AlreadyExists
	case helpers.KindFetch:
		code = codes.Unavailable
	case helpers.KindEmptySeries:
		code = codes.FailedPrecondition
	}
	return status.Error(code, err.Error())
}

func requireID(req *wrapperspb.StringValue) (string, error) {
	if req.GetValue() == "" {
		return "", status.Error(codes.InvalidArgument, "series id is required")
	}
	return req.GetValue(), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) InvalidateSeries(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		return nil, statusError(err)
	}
	s.Logger.Info("gRPC: invalidated %s", id)
	return &emptypb.Empty{}, nil
}

// -----------------------------------------------------------------------------

// RefreshSeries re-fetches one series and reports its new extent.
func (s *ControlService) RefreshSeries(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}
	series, err := s.Cache.Refresh(ctx, id)
	if err != nil {
		return nil, statusError(err)
	}

	fields := map[string]any{
		"id":           id,
		"observations": series.Len(),
	}
	if n := series.Len(); n > 0 {
		fields["first_date"] = series.Dates[0].Format("2006-01-02")
		fields["last_date"] = series.Dates[n-1].Format("2006-01-02")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ClearCache(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.Cache.Clear(ctx); err != nil {
		return nil, statusError(err)
	}
	return &emptypb.Empty{}, nil
}

// -----------------------------------------------------------------------------

// ListIndicators returns {"indicators": [{id, description, origin}, ...]}.
func (s *ControlService) ListIndicators(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list := s.Registry.List()
	items := make([]any, 0, len(list))
	for _, ind := range list {
		items = append(items, map[string]any{
			"id":          ind.ID,
			"description": ind.Description,
			"origin":      string(ind.Origin),
		})
	}
	out, err := structpb.NewStruct(map[string]any{"indicators": items})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) RemoveCustom(_ context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	name, err := requireID(req)
	if err != nil {
		return nil, err
	}
	if err := s.Registry.RemoveCustom(name); err != nil {
		return nil, statusError(err)
	}
	s.Logger.Info("gRPC: removed custom indicator %s", name)
	return &emptypb.Empty{}, nil
}
