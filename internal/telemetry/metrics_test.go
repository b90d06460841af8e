package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetricsRecord(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	m.MoveApplied(ctx, "hard", false)
	m.MoveApplied(ctx, "hard", true)
	m.MoveRejected(ctx, "hard")
	m.GameFinished(ctx, "hard", "draw")
	m.BotMove(ctx, "hard", 3*time.Millisecond)

	data := collect(t, reader)

	applied, ok := data["ttt.moves.applied"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range applied.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Len(t, applied.DataPoints, 2)

	rejected, ok := data["ttt.moves.rejected"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejected.DataPoints, 1)
	assert.Equal(t, int64(1), rejected.DataPoints[0].Value)

	finished, ok := data["ttt.games.finished"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, finished.DataPoints, 1)
	outcome, _ := finished.DataPoints[0].Attributes.Value("game.outcome")
	assert.Equal(t, "draw", outcome.AsString())

	hist, ok := data["ttt.bot.move.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 3.0, hist.DataPoints[0].Sum, 0.001)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.MoveApplied(ctx, "easy", true)
		m.MoveRejected(ctx, "easy")
		m.GameFinished(ctx, "easy", "win_O")
		m.BotMove(ctx, "easy", time.Millisecond)
	})
}
