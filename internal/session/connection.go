package session

import (
	"context"
	"log/slog"

	"ctchen222/tictactoe-engine/internal/player"
	"ctchen222/tictactoe-engine/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attach registers a websocket viewer and sends it the current state.
func (s *Session) Attach(ctx context.Context, p *player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.players[p.ID] = p
	s.lastActive = s.now()
	slog.InfoContext(ctx, "player attached", "session.id", s.ID, "player.id", p.ID)

	state := s.stateLocked()
	return p.Send(&proto.ServerToClientMessage{Type: proto.TypeState, State: &state})
}

// Detach forgets a viewer. The game itself is kept until it expires.
func (s *Session) Detach(ctx context.Context, p *player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; !ok {
		return
	}
	delete(s.players, p.ID)
	slog.InfoContext(ctx, "player detached", "session.id", s.ID, "player.id", p.ID)
}

// Viewers returns the number of attached players.
func (s *Session) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// broadcastLocked sends message to every attached player.
func (s *Session) broadcastLocked(ctx context.Context, message *proto.ServerToClientMessage) {
	if len(s.players) == 0 {
		return
	}
	_, span := tracer.Start(ctx, "session.Broadcast", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("message.type", message.Type),
		attribute.Int("session.viewers", len(s.players)),
	))
	defer span.End()

	for _, p := range s.players {
		if err := p.Send(message); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
		}
	}
}

// ReadPump reads client messages from p until the connection fails, then detaches it.
func (s *Session) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "session.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	defer func() {
		_ = p.Conn.Close()
		s.Detach(ctx, p)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "player connection closed", "player.id", p.ID, "session.id", s.ID, "error", err)
			return
		}
		s.HandleMessage(ctx, p, msg)
	}
}
