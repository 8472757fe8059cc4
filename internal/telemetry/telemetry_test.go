package telemetry

import (
	"bytes"
	"context"
	"testing"

	"rentListings/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer

	shutdown, err := Setup(config.TelemetryConfig{Enabled: true, ServiceName: "rent-listings-test", SampleRatio: 1}, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "GET /api/listings")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "GET /api/listings")
	assert.Contains(t, buf.String(), "rent-listings-test")
}

func TestSetupDisabled(t *testing.T) {
	var buf bytes.Buffer

	shutdown, err := Setup(config.TelemetryConfig{}, &buf)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}
