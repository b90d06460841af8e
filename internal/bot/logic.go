package bot

import (
	"fmt"
	"math"

	"ctchen222/tictactoe-engine/internal/game"
)

const (
	scoreOWins = 10
	scoreXWins = -10
	scoreDraw  = 0
)

// legalMoves returns the empty cells of a board that is still in play.
func legalMoves(board *game.Board, mark game.PlayerMark) ([]int, error) {
	if mark != game.PlayerX && mark != game.PlayerO {
		return nil, fmt.Errorf("%w: bot cannot play mark %q", game.ErrInvalidMove, mark)
	}
	if _, _, won := board.Winner(); won {
		return nil, fmt.Errorf("%w: board already has a winner", game.ErrNoLegalMove)
	}
	moves := board.EmptyIndices()
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: board is full", game.ErrNoLegalMove)
	}
	return moves, nil
}

// RandomStrategy picks uniformly among the empty cells.
type RandomStrategy struct {
	random Random
}

func NewRandomStrategy(rnd Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) NextMove(board game.Board, mark game.PlayerMark) (int, error) {
	moves, err := legalMoves(&board, mark)
	if err != nil {
		return -1, err
	}
	return moves[s.random.IntN(len(moves))], nil
}

// HeuristicStrategy will win if it can, block if it must, otherwise move randomly.
// It looks exactly one ply ahead, so forks go unnoticed.
type HeuristicStrategy struct {
	fallback Strategy
}

func NewHeuristicStrategy(fallback Strategy) *HeuristicStrategy {
	return &HeuristicStrategy{fallback: fallback}
}

func (s *HeuristicStrategy) NextMove(board game.Board, mark game.PlayerMark) (int, error) {
	moves, err := legalMoves(&board, mark)
	if err != nil {
		return -1, err
	}

	// 1. Win: first empty cell that completes a line for the bot
	if idx, ok := findWinningMove(board, moves, mark); ok {
		return idx, nil
	}

	// 2. Block: first empty cell that would complete a line for the opponent
	if idx, ok := findWinningMove(board, moves, mark.Opponent()); ok {
		return idx, nil
	}

	// 3. Random
	return s.fallback.NextMove(board, mark)
}

// findWinningMove simulates mark on each candidate in order and reports the first that wins.
func findWinningMove(board game.Board, candidates []int, mark game.PlayerMark) (int, bool) {
	for _, idx := range candidates {
		sim := board.Clone()
		sim[idx] = mark
		if sim.HasWin(mark) {
			return idx, true
		}
	}
	return -1, false
}

// MinimaxStrategy searches the full game tree without pruning.
// Scores are from O's point of view: O maximises, X minimises.
type MinimaxStrategy struct{}

func NewMinimaxStrategy() *MinimaxStrategy {
	return &MinimaxStrategy{}
}

func (s *MinimaxStrategy) NextMove(board game.Board, mark game.PlayerMark) (int, error) {
	moves, err := legalMoves(&board, mark)
	if err != nil {
		return -1, err
	}

	bestMove := -1
	bestScore := math.MinInt
	if mark == game.PlayerX {
		bestScore = math.MaxInt
	}
	for _, idx := range moves {
		board[idx] = mark
		score := minimax(&board, mark.Opponent())
		board[idx] = game.None
		if better(mark, score, bestScore) {
			bestScore = score
			bestMove = idx
		}
	}
	return bestMove, nil
}

// Score returns the minimax value of board with turn to move.
func (s *MinimaxStrategy) Score(board game.Board, turn game.PlayerMark) int {
	return minimax(&board, turn)
}

func minimax(board *game.Board, turn game.PlayerMark) int {
	switch {
	case board.HasWin(game.PlayerX):
		return scoreXWins
	case board.HasWin(game.PlayerO):
		return scoreOWins
	case board.IsFull():
		return scoreDraw
	}

	best := math.MinInt
	if turn == game.PlayerX {
		best = math.MaxInt
	}
	for idx, cell := range board {
		if cell != game.None {
			continue
		}
		board[idx] = turn
		score := minimax(board, turn.Opponent())
		board[idx] = game.None
		if better(turn, score, best) {
			best = score
		}
	}
	return best
}

// better reports whether score strictly improves on best for turn. Ties keep the earlier move.
func better(turn game.PlayerMark, score, best int) bool {
	if turn == game.PlayerO {
		return score > best
	}
	return score < best
}
