package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/telemetry"
)

func TestSetupTracingSDK_SinEndpointEsNoop(t *testing.T) {
	tp, shutdown, err := telemetry.SetupTracingSDK(context.Background(), telemetry.Config{ServiceName: "pos-api"})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
