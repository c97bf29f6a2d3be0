package grpc

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/junoblue/launch/id-service/internal/generator"
	"github.com/junoblue/launch/pkg/idrpc"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	formats, err := generator.NewFormats(nil, generator.Options{
		SnowflakeMachine: 1,
		SnowflakeEpoch:   generator.DefaultSnowflakeEpoch,
		NanoIDSize:       generator.DefaultNanoIDSize,
		NanoIDAlphabet:   generator.DefaultNanoIDAlphabet,
		CUID2Length:      generator.DefaultCUID2Length,
	})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	s, _ := NewServer(formats, zerolog.Nop())
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGenerateAndParse(t *testing.T) {
	client := idrpc.NewClient(startServer(t))
	ctx := context.Background()

	gen, err := client.GenerateID(ctx, &idrpc.GenerateIDRequest{Type: "invoice", Metadata: map[string]any{"amount": 42}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.ID, "inv-"), gen.ID)

	val, err := client.ValidateID(ctx, &idrpc.ValidateIDRequest{ID: gen.ID})
	require.NoError(t, err)
	assert.True(t, val.Valid)

	parsed, err := client.ParseID(ctx, &idrpc.ParseIDRequest{ID: gen.ID})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "invoice", parsed.EntityType)
	assert.Equal(t, "uild", parsed.Format)
	assert.NotZero(t, parsed.TimestampMs)
	assert.InDelta(t, float64(parsed.TimestampMs)/1000, parsed.Timestamp, 0.001)

	bad, err := client.ParseID(ctx, &idrpc.ParseIDRequest{ID: "invalid"})
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.ErrorMessage)
}

func TestTypedFormatsOverGRPC(t *testing.T) {
	client := idrpc.NewClient(startServer(t))
	ctx := context.Background()

	batch, err := client.GenerateBatchIDs(ctx, &idrpc.GenerateBatchIDsRequest{Type: "user", Format: "ulid", Count: 10})
	require.NoError(t, err)
	require.Len(t, batch.IDs, 10)

	for _, id := range batch.IDs {
		assert.True(t, strings.HasPrefix(id, "usr_"), id)
		val, err := client.ValidateID(ctx, &idrpc.ValidateIDRequest{ID: id, Format: "ulid"})
		require.NoError(t, err)
		assert.True(t, val.Valid, val.Reason)
	}

	val, err := client.ValidateID(ctx, &idrpc.ValidateIDRequest{ID: batch.IDs[0]})
	require.NoError(t, err)
	assert.False(t, val.Valid, "a typed ulid is not a uild")
}

func TestInvalidArguments(t *testing.T) {
	client := idrpc.NewClient(startServer(t))
	ctx := context.Background()

	_, err := client.GenerateID(ctx, &idrpc.GenerateIDRequest{Type: "widget"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "widget")

	_, err = client.GenerateID(ctx, &idrpc.GenerateIDRequest{Type: "user", Format: "base64"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, n := range []int32{0, 1001} {
		_, err = client.GenerateBatchIDs(ctx, &idrpc.GenerateBatchIDsRequest{Type: "user", Count: n})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "count %d", n)
	}
}

func TestListTypes(t *testing.T) {
	client := idrpc.NewClient(startServer(t))

	resp, err := client.ListTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Types, 8)
	assert.Contains(t, resp.Types, idrpc.EntityType{Type: "tenant", Prefix: "tnt"})
	assert.Equal(t, "uild", resp.DefaultFormat)
	assert.Contains(t, resp.Formats, "snowflake")
}

func TestHealthService(t *testing.T) {
	conn := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: idrpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
