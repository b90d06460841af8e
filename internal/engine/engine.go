package engine

//go:generate mockgen -destination=mocks/mock_move_calculator.go -package=mocks . MoveCalculator

import (
	"fmt"

	"ctchen222/tictactoe-engine/internal/game"
)

// MoveCalculator defines an agent that can pick a move for mark in the given mode.
type MoveCalculator interface {
	CalculateNextMove(board game.Board, mark game.PlayerMark, mode game.Mode) (int, error)
}

// Engine owns the state of a single game: board, side to move, status and mode.
// It is not safe for concurrent use; callers serialise access.
type Engine struct {
	board      game.Board
	current    game.PlayerMark
	state      State
	outcome    Outcome
	mode       game.Mode
	botMark    game.PlayerMark
	moves      int
	calculator MoveCalculator
}

type Option func(*Engine)

// WithBotMark sets the side the bot plays in bot modes. Defaults to O.
func WithBotMark(mark game.PlayerMark) Option {
	return func(e *Engine) {
		if mark == game.PlayerX || mark == game.PlayerO {
			e.botMark = mark
		}
	}
}

// WithMode starts the engine in mode instead of human-vs-human.
func WithMode(mode game.Mode) Option {
	return func(e *Engine) {
		if _, err := mode.MarshalText(); err == nil {
			e.mode = mode
		}
	}
}

// New returns an engine in human mode with X to move on an empty board.
func New(calculator MoveCalculator, opts ...Option) *Engine {
	e := &Engine{
		mode:       game.ModeHuman,
		botMark:    game.PlayerO,
		calculator: calculator,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// NewGame switches to mode and starts over.
func (e *Engine) NewGame(mode game.Mode) error {
	return e.SetMode(mode)
}

// SetMode changes the opponent and resets the game.
func (e *Engine) SetMode(mode game.Mode) error {
	if _, err := mode.MarshalText(); err != nil {
		return err
	}
	e.mode = mode
	e.Reset()
	return nil
}

// Reset clears the board and hands the first move to X.
// When the bot plays X the caller is expected to request a bot move next.
func (e *Engine) Reset() {
	e.board.Reset()
	e.current = game.PlayerX
	e.state = StateActive
	e.outcome = Outcome{}
	e.moves = 0
}

// ApplyMove places the current player's mark at index.
// The board is only mutated when the returned error is nil.
func (e *Engine) ApplyMove(index int) (MoveResult, error) {
	if e.state == StateFinished {
		err := fmt.Errorf("%w: game finished with %s", game.ErrNotActive, e.outcome)
		return rejected(err), err
	}
	if err := e.board.Place(index, e.current); err != nil {
		return rejected(err), err
	}
	e.moves++

	if mark, pattern, ok := e.board.Winner(); ok {
		e.state = StateFinished
		e.outcome = Outcome{Winner: mark, Pattern: pattern}
		return MoveResult{Kind: ResultWin, Player: mark, Pattern: pattern}, nil
	}
	if e.board.IsFull() {
		e.state = StateFinished
		e.outcome = Outcome{Draw: true}
		return MoveResult{Kind: ResultDraw}, nil
	}

	e.current = e.current.Opponent()
	return MoveResult{Kind: ResultContinue}, nil
}

// RequestBotMove asks the strategy of the current mode for the bot's next cell.
// It does not apply the move.
func (e *Engine) RequestBotMove() (int, error) {
	if !e.mode.IsBot() {
		return -1, fmt.Errorf("%w: %s mode has no bot", game.ErrNotBotTurn, e.mode)
	}
	if e.state == StateFinished {
		return -1, fmt.Errorf("%w: game finished with %s", game.ErrNoLegalMove, e.outcome)
	}
	if e.current != e.botMark {
		return -1, fmt.Errorf("%w: %s to move, bot plays %s", game.ErrNotBotTurn, e.current, e.botMark)
	}
	if e.calculator == nil {
		return -1, fmt.Errorf("%w: no move calculator configured", game.ErrNotBotTurn)
	}
	return e.calculator.CalculateNextMove(e.board.Clone(), e.botMark, e.mode)
}

// PlayBotMove computes the bot's move and applies it.
func (e *Engine) PlayBotMove() (int, MoveResult, error) {
	index, err := e.RequestBotMove()
	if err != nil {
		return -1, rejected(err), err
	}
	result, err := e.ApplyMove(index)
	return index, result, err
}

func (e *Engine) CurrentPlayer() game.PlayerMark { return e.current }

func (e *Engine) IsActive() bool { return e.state == StateActive }

func (e *Engine) State() State { return e.state }

func (e *Engine) Outcome() Outcome { return e.outcome }

func (e *Engine) Mode() game.Mode { return e.mode }

func (e *Engine) BotMark() game.PlayerMark { return e.botMark }

// MoveCount is the number of successful ApplyMove calls since the last reset.
func (e *Engine) MoveCount() int { return e.moves }

// IsBotTurn reports whether the game is waiting on the bot.
func (e *Engine) IsBotTurn() bool {
	return e.mode.IsBot() && e.state == StateActive && e.current == e.botMark
}

// BoardSnapshot returns a copy of the cells.
func (e *Engine) BoardSnapshot() game.Board {
	return e.board.Clone()
}
