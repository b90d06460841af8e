package bot

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"ctchen222/tictactoe-engine/internal/game"
)

// Strategy chooses a cell for mark to play on board.
type Strategy interface {
	NextMove(board game.Board, mark game.PlayerMark) (int, error)
}

// Random is the source of randomness used by the random strategy.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// lockedRandom serialises access to a *rand.Rand, which is not safe for concurrent use.
type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// NewRandomSource returns a Random seeded from seed, safe for concurrent use.
func NewRandomSource(seed uint64) Random {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// BotMoveCalculator maps a game mode to its strategy and asks it for a move.
type BotMoveCalculator struct {
	strategies map[game.Mode]Strategy
}

// NewBotMoveCalculator wires the three difficulty tiers around a shared random source.
// A nil rnd uses a time-seeded source.
func NewBotMoveCalculator(rnd Random) *BotMoveCalculator {
	if rnd == nil {
		rnd = NewRandomSource(uint64(time.Now().UnixNano()))
	}
	random := NewRandomStrategy(rnd)
	return &BotMoveCalculator{
		strategies: map[game.Mode]Strategy{
			game.ModeEasy:   random,
			game.ModeMedium: NewHeuristicStrategy(random),
			game.ModeHard:   NewMinimaxStrategy(),
		},
	}
}

// StrategyFor returns the strategy backing mode.
func (c *BotMoveCalculator) StrategyFor(mode game.Mode) (Strategy, error) {
	s, ok := c.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: no bot plays in %s mode", game.ErrUnknownMode, mode)
	}
	return s, nil
}

// CalculateNextMove picks the move for mark according to the strategy of mode.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board, mark game.PlayerMark, mode game.Mode) (int, error) {
	s, err := c.StrategyFor(mode)
	if err != nil {
		return -1, err
	}
	return s.NextMove(board, mark)
}
