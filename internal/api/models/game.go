package models

import "ctchen222/tictactoe-engine/pkg/proto"

// CreateGameRequest starts a session. An empty mode uses the server default.
type CreateGameRequest struct {
	Mode string `json:"mode" binding:"omitempty,game_mode"`
}

// MoveRequest places the current player's mark.
type MoveRequest struct {
	Index *int `json:"index" binding:"required,cell"`
}

// ModeRequest switches the opponent and starts a new game.
type ModeRequest struct {
	Mode string `json:"mode" binding:"required,game_mode"`
}

// GameResponse wraps the state returned by every game endpoint.
type GameResponse struct {
	Game proto.GameState `json:"game"`
}
