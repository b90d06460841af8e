package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-engine/internal/engine"
	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/player"
	"ctchen222/tictactoe-engine/internal/telemetry"
	"ctchen222/tictactoe-engine/pkg/proto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrClosed          = errors.New("session closed")

	// ErrNotYourTurn is returned when a human tries to move while the bot is due.
	ErrNotYourTurn = errors.New("waiting for the bot to move")
)

// Session is one browser game: an engine plus the pacing of its bot replies.
type Session struct {
	ID string

	mu         sync.Mutex
	engine     *engine.Engine
	players    map[string]*player.Player
	botDelay   time.Duration
	botTimer   *time.Timer
	generation uint64
	lastMove   *int
	lastActive time.Time
	closed     bool

	publisher events.Publisher
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func newSession(id string, eng *engine.Engine, botDelay time.Duration, publisher events.Publisher, metrics *telemetry.Metrics, now func() time.Time) *Session {
	return &Session{
		ID:         id,
		engine:     eng,
		players:    make(map[string]*player.Player),
		botDelay:   botDelay,
		lastActive: now(),
		publisher:  publisher,
		metrics:    metrics,
		now:        now,
	}
}

// Move applies a human move. While the bot is due to play, human moves are refused.
func (s *Session) Move(ctx context.Context, index int) (engine.MoveResult, proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "session.Move", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("move.index", index),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return engine.MoveResult{Kind: engine.ResultRejected, Reason: ErrClosed}, s.stateLocked(), ErrClosed
	}
	s.lastActive = s.now()

	if s.engine.IsBotTurn() {
		err := fmt.Errorf("%w: %s plays next", ErrNotYourTurn, s.engine.BotMark())
		s.metrics.MoveRejected(ctx, s.engine.Mode().String())
		span.SetStatus(codes.Error, "Move during bot turn")
		return engine.MoveResult{Kind: engine.ResultRejected, Reason: err}, s.stateLocked(), err
	}

	result, err := s.engine.ApplyMove(index)
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "session.id", s.ID, "index", index, "error", err)
		s.metrics.MoveRejected(ctx, s.engine.Mode().String())
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return result, s.stateLocked(), err
	}
	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("move.result", result.Kind.String()))
	s.metrics.MoveApplied(ctx, s.engine.Mode().String(), false)
	s.lastMove = &index

	s.afterChangeLocked(ctx)
	state := s.stateLocked()
	s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeState, State: &state})
	return result, state, nil
}

// Reset starts a new game in the current mode.
func (s *Session) Reset(ctx context.Context) proto.GameState {
	ctx, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelBotLocked()
	s.engine.Reset()
	s.restartLocked(ctx)

	state := s.stateLocked()
	s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeState, State: &state})
	return state
}

// SetMode switches the opponent, which also starts a new game.
func (s *Session) SetMode(ctx context.Context, mode game.Mode) (proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "session.SetMode", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("game.mode", mode.String()),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.SetMode(mode); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown mode")
		return s.stateLocked(), err
	}
	s.cancelBotLocked()
	s.restartLocked(ctx)

	state := s.stateLocked()
	s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeState, State: &state})
	return state, nil
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() proto.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close stops any pending bot move and detaches all players.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cancelBotLocked()
	for id, p := range s.players {
		_ = p.Conn.Close()
		delete(s.players, id)
	}
}

// IdleSince reports when a human last touched the session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) restartLocked(ctx context.Context) {
	s.lastMove = nil
	s.lastActive = s.now()
	slog.InfoContext(ctx, "game started", "session.id", s.ID, "game.mode", s.engine.Mode().String())
	s.afterChangeLocked(ctx)
}

// afterChangeLocked reports a finished game or schedules the bot when it is due.
func (s *Session) afterChangeLocked(ctx context.Context) {
	if !s.engine.IsActive() {
		s.finishLocked(ctx)
		return
	}
	if s.engine.IsBotTurn() {
		s.scheduleBotLocked()
	}
}

func (s *Session) finishLocked(ctx context.Context) {
	outcome := s.engine.Outcome()
	mode := s.engine.Mode().String()
	slog.InfoContext(ctx, "game finished", "session.id", s.ID, "game.mode", mode, "game.outcome", outcome.String())
	s.metrics.GameFinished(ctx, mode, outcome.String())

	payload := events.GameFinishedPayload{
		SessionID: s.ID,
		Mode:      mode,
		Winner:    string(outcome.Winner),
		Draw:      outcome.Draw,
		Moves:     s.engine.MoveCount(),
	}
	if err := s.publisher.Publish(ctx, events.TypeGameFinished, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish game_finished event", "session.id", s.ID, "error", err)
	}
}

func (s *Session) scheduleBotLocked() {
	gen := s.generation
	s.botTimer = time.AfterFunc(s.botDelay, func() {
		s.playBot(gen)
	})
}

// cancelBotLocked invalidates any bot move scheduled for the previous game.
func (s *Session) cancelBotLocked() {
	s.generation++
	if s.botTimer != nil {
		s.botTimer.Stop()
		s.botTimer = nil
	}
}

// playBot runs on the timer goroutine once the bot delay has elapsed.
func (s *Session) playBot(gen uint64) {
	ctx, span := tracer.Start(context.Background(), "session.playBot", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation || !s.engine.IsBotTurn() {
		span.SetAttributes(attribute.Bool("bot.stale", true))
		return
	}
	s.botTimer = nil

	mode := s.engine.Mode().String()
	span.SetAttributes(attribute.String("game.mode", mode))

	started := time.Now()
	index, result, err := s.engine.PlayBotMove()
	s.metrics.BotMove(ctx, mode, time.Since(started))
	if err != nil {
		slog.ErrorContext(ctx, "bot failed to move", "session.id", s.ID, "game.mode", mode, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bot move failed")
		s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeError, Reason: err.Error()})
		return
	}
	slog.DebugContext(ctx, "bot moved", "session.id", s.ID, "game.mode", mode, "index", index, "result", result.Kind.String())
	span.SetAttributes(attribute.Int("move.index", index), attribute.String("move.result", result.Kind.String()))
	s.metrics.MoveApplied(ctx, mode, true)
	s.lastMove = &index

	s.afterChangeLocked(ctx)
	state := s.stateLocked()
	s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeState, State: &state})
}

func (s *Session) stateLocked() proto.GameState {
	e := s.engine
	state := proto.GameState{
		ID:          s.ID,
		Board:       e.BoardSnapshot(),
		Next:        e.CurrentPlayer(),
		Active:      e.IsActive(),
		Mode:        e.Mode(),
		BotThinking: e.IsBotTurn(),
		Moves:       e.MoveCount(),
	}
	if e.Mode().IsBot() {
		state.BotMark = e.BotMark()
	}
	if outcome := e.Outcome(); outcome.Decided() {
		state.Winner = outcome.Winner
		state.Draw = outcome.Draw
		if outcome.Winner != game.None {
			state.Pattern = outcome.Pattern[:]
		}
	}
	if s.lastMove != nil {
		last := *s.lastMove
		state.LastMove = &last
	}
	return state
}
