package proto

import "ctchen222/tictactoe-engine/internal/game"

// Client message types
const (
	TypeMove  = "move"
	TypeReset = "reset"
	TypeMode  = "mode"
)

// Server message types
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage represents a message from the browser to the server.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=move reset mode"`
	Index *int   `json:"index,omitempty" validate:"omitempty,cell"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,game_mode"`
}

// ServerToClientMessage represents a message from the server to the browser.
type ServerToClientMessage struct {
	Type   string     `json:"type"`
	Reason string     `json:"reason,omitempty"`
	State  *GameState `json:"state,omitempty"`
}

// GameState is the observable state of one session.
type GameState struct {
	ID          string          `json:"id"`
	Board       game.Board      `json:"board"`
	Next        game.PlayerMark `json:"next"`
	Active      bool            `json:"active"`
	Mode        game.Mode       `json:"mode"`
	BotMark     game.PlayerMark `json:"botMark,omitempty"`
	BotThinking bool            `json:"botThinking"`
	Winner      game.PlayerMark `json:"winner,omitempty"`
	Pattern     []int           `json:"pattern,omitempty"`
	Draw        bool            `json:"draw,omitempty"`
	Moves       int             `json:"moves"`
	LastMove    *int            `json:"lastMove,omitempty"`
}
