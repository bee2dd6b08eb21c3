package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerWithoutExporter(t *testing.T) {
	tp, err := InitTracer("pos-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown(context.Background(), tp) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
}
