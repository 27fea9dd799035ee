package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestProviderExportsOnShutdown(t *testing.T) {
	var out bytes.Buffer
	tp, err := NewProvider("duo-platformer-test", &out)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "session.menu")
	span.SetAttributes(attribute.Int64("player.id", 42))
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, out.String(), `"Name":"session.menu"`)
	assert.Contains(t, out.String(), "player.id")
	assert.Contains(t, out.String(), "duo-platformer-test")
}

func TestProviderWithoutOutput(t *testing.T) {
	tp, err := NewProvider("duo-platformer-test", nil)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "session.menu")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}
