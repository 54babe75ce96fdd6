package telemetry

import (
	"context"
	"ctchen222/reversi/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitOtel_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := InitOtel(context.Background(), config.Telemetry{Enabled: false})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	_, installed := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.False(t, installed, "disabled telemetry should not install an SDK provider")
	assert.Equal(t, before, otel.GetTracerProvider())
}
