package game

import "errors"

var (
	// ErrInvalidMove is returned when the index is out of range or the cell is occupied.
	ErrInvalidMove = errors.New("invalid move")

	// ErrNotActive is returned when a move is attempted after the game has ended.
	ErrNotActive = errors.New("game is not active")

	// ErrNoLegalMove is returned when a bot move is requested on a full or finished board.
	ErrNoLegalMove = errors.New("no legal move")

	// ErrNotBotTurn is returned when a bot move is requested in human mode or on the human's turn.
	ErrNotBotTurn = errors.New("not the bot's turn")

	ErrUnknownMode = errors.New("unknown game mode")
)
