package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds the game instruments recorded by the session layer.
// A nil *Metrics records nothing.
type Metrics struct {
	movesApplied    otelmetric.Int64Counter
	movesRejected   otelmetric.Int64Counter
	gamesFinished   otelmetric.Int64Counter
	botMoveDuration otelmetric.Float64Histogram
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	movesApplied, err := meter.Int64Counter("ttt.moves.applied",
		otelmetric.WithDescription("Moves placed on a board"))
	if err != nil {
		return nil, fmt.Errorf("failed to create moves.applied counter: %w", err)
	}
	movesRejected, err := meter.Int64Counter("ttt.moves.rejected",
		otelmetric.WithDescription("Moves refused by the engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create moves.rejected counter: %w", err)
	}
	gamesFinished, err := meter.Int64Counter("ttt.games.finished",
		otelmetric.WithDescription("Games that reached a win or a draw"))
	if err != nil {
		return nil, fmt.Errorf("failed to create games.finished counter: %w", err)
	}
	botMoveDuration, err := meter.Float64Histogram("ttt.bot.move.duration",
		otelmetric.WithDescription("Time spent choosing a bot move"),
		otelmetric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot.move.duration histogram: %w", err)
	}

	return &Metrics{
		movesApplied:    movesApplied,
		movesRejected:   movesRejected,
		gamesFinished:   gamesFinished,
		botMoveDuration: botMoveDuration,
	}, nil
}

func (m *Metrics) MoveApplied(ctx context.Context, mode string, byBot bool) {
	if m == nil {
		return
	}
	m.movesApplied.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("game.mode", mode),
		attribute.Bool("move.bot", byBot),
	))
}

func (m *Metrics) MoveRejected(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.movesRejected.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("game.mode", mode)))
}

// GameFinished counts a finished game; outcome is "win_X", "win_O" or "draw".
func (m *Metrics) GameFinished(ctx context.Context, mode, outcome string) {
	if m == nil {
		return
	}
	m.gamesFinished.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("game.mode", mode),
		attribute.String("game.outcome", outcome),
	))
}

func (m *Metrics) BotMove(ctx context.Context, mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.botMoveDuration.Record(ctx, float64(d)/float64(time.Millisecond),
		otelmetric.WithAttributes(attribute.String("game.mode", mode)))
}
