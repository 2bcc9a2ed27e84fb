package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"econ-dashboard/src/models"
)

// ControlClient calls a remote ControlServer.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

// -----------------------------------------------------------------------------

func (c *ControlClient) InvalidateSeries(ctx context.Context, seriesID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("InvalidateSeries"), wrapperspb.String(seriesID), new(emptypb.Empty), opts...)
}

func (c *ControlClient) RefreshSeries(ctx context.Context, seriesID string, opts ...grpc.CallOption) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("RefreshSeries"), wrapperspb.String(seriesID), out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *ControlClient) ClearCache(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("ClearCache"), new(emptypb.Empty), new(emptypb.Empty), opts...)
}

func (c *ControlClient) RemoveCustom(ctx context.Context, name string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("RemoveCustom"), wrapperspb.String(name), new(emptypb.Empty), opts...)
}

// -----------------------------------------------------------------------------

// ListIndicators decodes the indicator list returned by the server.
func (c *ControlClient) ListIndicators(ctx context.Context, opts ...grpc.CallOption) ([]models.MIndicator, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListIndicators"), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	values := out.GetFields()["indicators"].GetListValue().GetValues()
	list := make([]models.MIndicator, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue().GetFields()
		list = append(list, models.MIndicator{
			ID:          fields["id"].GetStringValue(),
			Description: fields["description"].GetStringValue(),
			Origin:      models.Origin(fields["origin"].GetStringValue()),
		})
	}
	return list, nil
}
