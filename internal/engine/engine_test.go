package engine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/engine/mocks"
	"ctchen222/tictactoe-engine/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// playMoves applies a sequence of moves and fails on the first rejection.
func playMoves(t *testing.T, e *Engine, moves ...int) MoveResult {
	t.Helper()
	var last MoveResult
	for i, m := range moves {
		res, err := e.ApplyMove(m)
		require.NoError(t, err, "move %d (%d)", i, m)
		last = res
	}
	return last
}

func TestNewEngineInitialState(t *testing.T) {
	e := New(nil)

	assert.Equal(t, game.PlayerX, e.CurrentPlayer())
	assert.True(t, e.IsActive())
	assert.Equal(t, StateActive, e.State())
	assert.Equal(t, game.ModeHuman, e.Mode())
	assert.Equal(t, game.PlayerO, e.BotMark())
	assert.Equal(t, game.Board{}, e.BoardSnapshot())
	assert.False(t, e.Outcome().Decided())
	assert.False(t, e.IsBotTurn())
}

func TestApplyMoveContinueFlipsTurn(t *testing.T) {
	e := New(nil)

	res, err := e.ApplyMove(4)
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, res.Kind)
	assert.Equal(t, game.PlayerO, e.CurrentPlayer())
	assert.Equal(t, game.PlayerX, e.BoardSnapshot()[4])

	res, err = e.ApplyMove(0)
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, res.Kind)
	assert.Equal(t, game.PlayerX, e.CurrentPlayer())
	assert.Equal(t, 2, e.MoveCount())
}

func TestApplyMoveWin(t *testing.T) {
	e := New(nil)

	res := playMoves(t, e, 0, 3, 1, 4, 2)
	assert.Equal(t, ResultWin, res.Kind)
	assert.Equal(t, game.PlayerX, res.Player)
	assert.Equal(t, game.WinPattern{0, 1, 2}, res.Pattern)
	assert.False(t, e.IsActive())
	assert.Equal(t, Outcome{Winner: game.PlayerX, Pattern: game.WinPattern{0, 1, 2}}, e.Outcome())
	assert.Equal(t, "win_X", e.Outcome().String())

	before := e.BoardSnapshot()
	res, err := e.ApplyMove(8)
	assert.ErrorIs(t, err, game.ErrNotActive)
	assert.Equal(t, ResultRejected, res.Kind)
	assert.True(t, errors.Is(res.Reason, game.ErrNotActive))
	assert.Equal(t, before, e.BoardSnapshot())
}

func TestApplyMoveWinForO(t *testing.T) {
	e := New(nil)

	res := playMoves(t, e, 0, 2, 1, 4, 8, 6)
	assert.Equal(t, ResultWin, res.Kind)
	assert.Equal(t, game.PlayerO, res.Player)
	assert.Equal(t, game.WinPattern{2, 4, 6}, res.Pattern)
	assert.Equal(t, game.PlayerO, e.CurrentPlayer())
}

func TestApplyMoveDraw(t *testing.T) {
	e := New(nil)

	res := playMoves(t, e, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	assert.Equal(t, ResultDraw, res.Kind)
	assert.False(t, e.IsActive())
	assert.True(t, e.Outcome().Draw)
	assert.Equal(t, game.None, e.Outcome().Winner)
	assert.Equal(t, "draw", e.Outcome().String())
}

func TestApplyMoveRejected(t *testing.T) {
	e := New(nil)
	playMoves(t, e, 4)

	for _, idx := range []int{4, -1, 9} {
		before := e.BoardSnapshot()
		res, err := e.ApplyMove(idx)
		assert.ErrorIs(t, err, game.ErrInvalidMove, "index %d", idx)
		assert.Equal(t, ResultRejected, res.Kind)
		assert.Equal(t, before, e.BoardSnapshot())
		assert.Equal(t, game.PlayerO, e.CurrentPlayer())
		assert.Equal(t, 1, e.MoveCount())
	}
}

func TestResetMidGame(t *testing.T) {
	e := New(nil)
	playMoves(t, e, 0, 4, 8)

	e.Reset()

	assert.Equal(t, game.Board{}, e.BoardSnapshot())
	assert.Equal(t, game.PlayerX, e.CurrentPlayer())
	assert.True(t, e.IsActive())
	assert.Zero(t, e.MoveCount())
}

func TestResetAfterFinish(t *testing.T) {
	e := New(nil)
	playMoves(t, e, 0, 3, 1, 4, 2)
	require.False(t, e.IsActive())

	e.Reset()
	assert.True(t, e.IsActive())
	assert.False(t, e.Outcome().Decided())
	_, err := e.ApplyMove(0)
	assert.NoError(t, err)
}

func TestSetModeResets(t *testing.T) {
	e := New(nil)
	playMoves(t, e, 0, 4)

	require.NoError(t, e.SetMode(game.ModeHard))
	assert.Equal(t, game.ModeHard, e.Mode())
	assert.Equal(t, game.Board{}, e.BoardSnapshot())
	assert.Equal(t, game.PlayerX, e.CurrentPlayer())

	require.NoError(t, e.NewGame(game.ModeEasy))
	assert.Equal(t, game.ModeEasy, e.Mode())

	err := e.SetMode(game.Mode(99))
	assert.ErrorIs(t, err, game.ErrUnknownMode)
	assert.Equal(t, game.ModeEasy, e.Mode())
}

func TestRequestBotMove(t *testing.T) {
	t.Run("Human mode has no bot", func(t *testing.T) {
		e := New(nil)
		_, err := e.RequestBotMove()
		assert.ErrorIs(t, err, game.ErrNotBotTurn)
	})

	t.Run("Not the bot's turn", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		calc := mocks.NewMockMoveCalculator(ctrl)
		e := New(calc, WithMode(game.ModeHard))

		_, err := e.RequestBotMove()
		assert.ErrorIs(t, err, game.ErrNotBotTurn)
	})

	t.Run("Delegates to the calculator with the bot's mark and mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		calc := mocks.NewMockMoveCalculator(ctrl)
		e := New(calc, WithMode(game.ModeMedium))
		playMoves(t, e, 0)

		want := game.MustParseBoard("X________")
		calc.EXPECT().CalculateNextMove(want, game.PlayerO, game.ModeMedium).Return(4, nil)

		idx, err := e.RequestBotMove()
		require.NoError(t, err)
		assert.Equal(t, 4, idx)
		assert.Equal(t, want, e.BoardSnapshot(), "requesting a move must not apply it")
	})

	t.Run("Finished game", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		calc := mocks.NewMockMoveCalculator(ctrl)
		e := New(calc, WithMode(game.ModeHard), WithBotMark(game.PlayerX))
		playMoves(t, e, 0, 3, 1, 4, 2)

		_, err := e.RequestBotMove()
		assert.ErrorIs(t, err, game.ErrNoLegalMove)
	})

	t.Run("Calculator errors surface", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		calc := mocks.NewMockMoveCalculator(ctrl)
		e := New(calc, WithMode(game.ModeEasy), WithBotMark(game.PlayerX))
		calc.EXPECT().CalculateNextMove(gomock.Any(), game.PlayerX, game.ModeEasy).Return(-1, game.ErrNoLegalMove)

		_, err := e.RequestBotMove()
		assert.ErrorIs(t, err, game.ErrNoLegalMove)
	})
}

func TestPlayBotMove(t *testing.T) {
	ctrl := gomock.NewController(t)
	calc := mocks.NewMockMoveCalculator(ctrl)
	e := New(calc, WithMode(game.ModeHard))
	playMoves(t, e, 0)

	calc.EXPECT().CalculateNextMove(gomock.Any(), game.PlayerO, game.ModeHard).Return(4, nil)

	idx, res, err := e.PlayBotMove()
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
	assert.Equal(t, ResultContinue, res.Kind)
	assert.Equal(t, game.PlayerO, e.BoardSnapshot()[4])
	assert.Equal(t, game.PlayerX, e.CurrentPlayer())

	_, res, err = e.PlayBotMove()
	assert.ErrorIs(t, err, game.ErrNotBotTurn)
	assert.Equal(t, ResultRejected, res.Kind)
}

func TestBotPlaysX(t *testing.T) {
	e := New(bot.NewBotMoveCalculator(bot.NewRandomSource(3)), WithMode(game.ModeHard), WithBotMark(game.PlayerX))

	assert.True(t, e.IsBotTurn())
	_, res, err := e.PlayBotMove()
	require.NoError(t, err)
	assert.Equal(t, ResultContinue, res.Kind)
	assert.False(t, e.IsBotTurn())
	assert.Equal(t, game.PlayerO, e.CurrentPlayer())
}

func TestMarkCountMatchesSuccessfulMoves(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 12))

	for g := 0; g < 100; g++ {
		e := New(nil)
		applied := 0
		for e.IsActive() {
			res, err := e.ApplyMove(rnd.IntN(11) - 1)
			if err != nil {
				assert.Equal(t, ResultRejected, res.Kind)
				continue
			}
			applied++

			b := e.BoardSnapshot()
			marked := game.Cells - len(b.EmptyIndices())
			require.Equal(t, applied, marked)
			diff := b.Count(game.PlayerX) - b.Count(game.PlayerO)
			require.True(t, diff == 0 || diff == 1, "X-O count difference %d", diff)
		}
		assert.Equal(t, applied, e.MoveCount())
	}
}

func TestHardBotNeverLosesInEngine(t *testing.T) {
	calc := bot.NewBotMoveCalculator(bot.NewRandomSource(5))
	rnd := rand.New(rand.NewPCG(21, 22))

	for g := 0; g < 50; g++ {
		e := New(calc, WithMode(game.ModeHard))
		for e.IsActive() {
			if e.IsBotTurn() {
				_, _, err := e.PlayBotMove()
				require.NoError(t, err)
				continue
			}
			b := e.BoardSnapshot()
			empty := b.EmptyIndices()
			_, err := e.ApplyMove(empty[rnd.IntN(len(empty))])
			require.NoError(t, err)
		}
		assert.NotEqual(t, game.PlayerX, e.Outcome().Winner, "game %d", g)
	}
}
