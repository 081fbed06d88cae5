package plugin

// Client wraps a plugin (over gRPC or in-process) and exposes a uniform API.
// The compiler can swap transport implementations behind this interface.
import (
	"context"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"rowkit/internal/transport"
)

type Client interface {
	Metadata(ctx context.Context) (*structpb.Struct, error)
	Evaluate(ctx context.Context, row *structpb.Struct) (*structpb.Value, error)
	Close() error
}

// GRPCClient talks to a plugin server.
type GRPCClient struct {
	conn *grpc.ClientConn
}

func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	conn, err := transport.Dial(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

func (c *GRPCClient) Metadata(ctx context.Context) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, metadataMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) Evaluate(ctx context.Context, row *structpb.Struct) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.conn.Invoke(ctx, evaluateMethod, row, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Healthy asks the server's standard health service about the plugin.
func (c *GRPCClient) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// InProcessClient adapts a plugin compiled into the engine.
type InProcessClient struct {
	impl Function
}

func NewInProcessClient(impl Function) *InProcessClient { return &InProcessClient{impl: impl} }

func (c *InProcessClient) Metadata(ctx context.Context) (*structpb.Struct, error) {
	return c.impl.Metadata(ctx)
}
func (c *InProcessClient) Evaluate(ctx context.Context, row *structpb.Struct) (*structpb.Value, error) {
	return c.impl.Evaluate(ctx, row)
}
func (c *InProcessClient) Close() error { return nil }
