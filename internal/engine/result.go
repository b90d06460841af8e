package engine

import "ctchen222/tictactoe-engine/internal/game"

// State is the lifecycle phase of a game.
type State int

const (
	StateActive State = iota
	StateFinished
)

func (s State) String() string {
	if s == StateFinished {
		return "finished"
	}
	return "active"
}

// Outcome describes how a finished game ended. The zero value means undecided.
type Outcome struct {
	Winner  game.PlayerMark
	Pattern game.WinPattern
	Draw    bool
}

// Decided reports whether the game has a winner or is drawn.
func (o Outcome) Decided() bool {
	return o.Draw || o.Winner != game.None
}

func (o Outcome) String() string {
	switch {
	case o.Draw:
		return "draw"
	case o.Winner != game.None:
		return "win_" + string(o.Winner)
	}
	return "undecided"
}

// ResultKind tags a MoveResult.
type ResultKind int

const (
	ResultContinue ResultKind = iota
	ResultWin
	ResultDraw
	ResultRejected
)

func (k ResultKind) String() string {
	switch k {
	case ResultWin:
		return "win"
	case ResultDraw:
		return "draw"
	case ResultRejected:
		return "rejected"
	}
	return "continue"
}

// MoveResult is what ApplyMove reports. Player and Pattern are set for ResultWin,
// Reason for ResultRejected.
type MoveResult struct {
	Kind    ResultKind
	Player  game.PlayerMark
	Pattern game.WinPattern
	Reason  error
}

func rejected(err error) MoveResult {
	return MoveResult{Kind: ResultRejected, Reason: err}
}
