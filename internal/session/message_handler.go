package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/player"
	"ctchen222/tictactoe-engine/internal/validator"
	"ctchen222/tictactoe-engine/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage decodes one client message and dispatches it. Failures are
// reported back to the sender only.
func (s *Session) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "session.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		s.reply(ctx, p, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.reply(ctx, p, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		if message.Index == nil {
			s.reply(ctx, p, "move requires an index")
			return
		}
		if _, _, err := s.Move(ctx, *message.Index); err != nil {
			s.reply(ctx, p, err.Error())
		}
	case proto.TypeReset:
		s.Reset(ctx)
	case proto.TypeMode:
		mode, err := game.ParseMode(message.Mode)
		if err != nil {
			s.reply(ctx, p, err.Error())
			return
		}
		if _, err := s.SetMode(ctx, mode); err != nil {
			s.reply(ctx, p, err.Error())
		}
	}
}

func (s *Session) reply(ctx context.Context, p *player.Player, reason string) {
	if err := p.Send(&proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason}); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
	}
}
