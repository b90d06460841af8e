package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeSessionCreated = "session_created"
	TypeGameFinished   = "game_finished"
	TypeSessionExpired = "session_expired"
)

// Event represents a message published to observers of the game server.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// SessionCreatedPayload is the payload for the "session_created" event.
type SessionCreatedPayload struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

// GameFinishedPayload is the payload for the "game_finished" event.
type GameFinishedPayload struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	Winner    string `json:"winner,omitempty"`
	Draw      bool   `json:"draw"`
	Moves     int    `json:"moves"`
}

// SessionExpiredPayload is the payload for the "session_expired" event.
type SessionExpiredPayload struct {
	SessionID string `json:"session_id"`
}

// Publisher fans game events out to whoever listens.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Encode wraps payload in an Event envelope.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Event{Type: eventType, Payload: raw})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// RedisPublisher publishes events on a Redis Pub/Sub channel. Nothing is stored.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = EventsChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	event, err := Encode(eventType, payload)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, event).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}
