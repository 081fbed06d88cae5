package plugin

import (
	"context"
	"errors"
	"net"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"rowkit/internal/frame"
	"rowkit/internal/transform"
	"rowkit/internal/transport"
)

// upper returns the "name" field upper-cased, or fails when it is missing.
type upper struct{}

func (upper) Metadata(context.Context) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"name": "upper", "version": "0.1.0"})
}

func (upper) Evaluate(_ context.Context, row *structpb.Struct) (*structpb.Value, error) {
	v, ok := row.GetFields()["name"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing name")
	}
	if qty, ok := row.GetFields()["qty"]; ok {
		return structpb.NewNumberValue(qty.GetNumberValue() * 2), nil
	}
	return structpb.NewStringValue(strings.ToUpper(v.GetStringValue())), nil
}

func startBufconn(t *testing.T, fn Function) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := transport.NewServer(lis, func(s grpc.ServiceRegistrar) { Register(s, fn) })
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func people(t *testing.T) *frame.Dataset {
	t.Helper()
	ds, err := frame.New([]string{"name", "city"}, [][]any{{"ann", "bo"}, {"oslo", "rome"}})
	require.NoError(t, err)
	return ds
}

func TestGRPC_MetadataAndHealth(t *testing.T) {
	c := startBufconn(t, upper{})
	ctx := context.Background()

	md, err := c.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "upper", md.GetFields()["name"].GetStringValue())

	ok, err := c.Healthy(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGRPC_RowFuncThroughTransformer(t *testing.T) {
	c := startBufconn(t, upper{})
	s := transform.NewSpec().MustAdd("shout", RowFunc(c, []string{"name"}, time.Second))

	out, err := transform.Apply(context.Background(), people(t), s, transform.WithWorkers(2))
	require.NoError(t, err)
	got, _ := out.Column("shout")
	assert.Equal(t, []any{"ANN", "BO"}, got)
}

func TestGRPC_ServerErrorBecomesRowError(t *testing.T) {
	c := startBufconn(t, upper{})
	s := transform.NewSpec().MustAdd("shout", RowFunc(c, []string{"city"}, 0))

	_, err := transform.Apply(context.Background(), people(t), s, transform.WithWorkers(1))
	require.Error(t, err)
	var re *transform.RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(re.Err)))
}

func TestInProcess_NumbersComeBackAsInt64(t *testing.T) {
	ds, err := frame.New([]string{"name", "qty"}, [][]any{{"a"}, {int64(21)}})
	require.NoError(t, err)
	s := transform.NewSpec().MustAdd("double", RowFunc(NewInProcessClient(upper{}), nil, 0))

	out, err := transform.Apply(context.Background(), ds, s)
	require.NoError(t, err)
	got, _ := out.Column("double")
	assert.Equal(t, []any{int64(42)}, got)
}

// recorder echoes the sorted field names it received.
type recorder struct{ upper }

func (recorder) Evaluate(_ context.Context, row *structpb.Struct) (*structpb.Value, error) {
	keys := make([]string, 0, len(row.GetFields()))
	for k, v := range row.GetFields() {
		if _, null := v.GetKind().(*structpb.Value_NullValue); null {
			k += "=null"
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return structpb.NewStringValue(strings.Join(keys, ",")), nil
}

func TestRowFunc_SendsWholeRowWhenNoColumnsListed(t *testing.T) {
	ds, err := frame.New([]string{"name", "qty", "note"}, [][]any{{"ada"}, {int64(2)}, {nil}})
	require.NoError(t, err)

	fn := RowFunc(NewInProcessClient(recorder{}), nil, 0)
	got, err := fn(context.Background(), ds.Row(0))
	require.NoError(t, err)
	assert.Equal(t, "name,note=null,qty", got)

	fn = RowFunc(NewInProcessClient(recorder{}), []string{"qty"}, 0)
	got, err = fn(context.Background(), ds.Row(0))
	require.NoError(t, err)
	assert.Equal(t, "qty", got)
}

func TestRowFunc_MissingColumn(t *testing.T) {
	fn := RowFunc(NewInProcessClient(upper{}), []string{"nope"}, 0)
	_, err := fn(context.Background(), people(t).Row(0))
	require.ErrorIs(t, err, frame.ErrNoColumn)
}

func TestFromValue(t *testing.T) {
	assert.Nil(t, FromValue(nil))
	assert.Equal(t, 2.5, FromValue(structpb.NewNumberValue(2.5)))
	assert.Equal(t, int64(3), FromValue(structpb.NewNumberValue(3)))
	assert.Equal(t, "x", FromValue(structpb.NewStringValue("x")))
	assert.Nil(t, FromValue(structpb.NewNullValue()))
}
