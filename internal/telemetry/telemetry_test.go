package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/currencyguard-server/internal/config"
	"github.com/dtroode/currencyguard-server/internal/testutil"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "currencyguard", config.Telemetry{}, testutil.MakeNoopLogger())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Enabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.Telemetry{Endpoint: "127.0.0.1:4317", Insecure: true}

	shutdown, err := Setup(ctx, "currencyguard", cfg, testutil.MakeNoopLogger())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_ = shutdown(ctx)
}
