package router

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"

	"github.com/dtroode/currencyguard-server/internal/health"
	"github.com/dtroode/currencyguard-server/internal/testutil"
)

func startRouter(t *testing.T) (*Router, healthpb.HealthClient) {
	t.Helper()

	r := New(testutil.MakeNoopLogger())
	s := r.Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return r, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestRouter_StartsNotServing(t *testing.T) {
	_, client := startRouter(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestRouter_UpdateStatus(t *testing.T) {
	r, client := startRouter(t)

	r.UpdateStatus(health.Report{Status: health.StatusOK, Checks: map[string]string{"database": "ok"}})
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))

	r.UpdateStatus(health.Report{Status: health.StatusUnavailable, Checks: map[string]string{"database": "timeout"}})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
}

func TestRouter_CheckResponseMessage(t *testing.T) {
	r, client := startRouter(t)
	r.UpdateStatus(health.Report{Status: health.StatusOK})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)

	want := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	assert.True(t, proto.Equal(want, resp), "got %v", resp)
}

func TestRouter_UnknownServiceNotFound(t *testing.T) {
	_, client := startRouter(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown.Service"})

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRouter_ShutdownIgnoresLaterUpdates(t *testing.T) {
	r, client := startRouter(t)

	r.Shutdown()
	r.UpdateStatus(health.Report{Status: health.StatusOK})

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
}
