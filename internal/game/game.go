package game

import (
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Cells is the number of cells on the board.
	Cells = 9
)

// Opponent returns the other player's mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// WinPattern is a triple of cell indices forming a winning line.
type WinPattern [3]int

// Rows, then columns, then diagonals. Winner reports the first match in this order.
var winPatterns = [8]WinPattern{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// WinPatterns returns the eight winning lines in declaration order.
func WinPatterns() [8]WinPattern {
	return winPatterns
}

// Board is a fixed 3x3 grid stored row-major.
type Board [Cells]PlayerMark

// Place puts mark on the cell at index. The board is left untouched on error.
func (b *Board) Place(index int, mark PlayerMark) error {
	if index < 0 || index >= Cells {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidMove, index)
	}
	if mark != PlayerX && mark != PlayerO {
		return fmt.Errorf("%w: bad mark %q", ErrInvalidMove, mark)
	}
	if b[index] != None {
		return fmt.Errorf("%w: cell %d already occupied", ErrInvalidMove, index)
	}
	b[index] = mark
	return nil
}

// Winner scans the win patterns and returns the first completed line.
func (b *Board) Winner() (PlayerMark, WinPattern, bool) {
	for _, p := range winPatterns {
		if b[p[0]] != None && b[p[0]] == b[p[1]] && b[p[1]] == b[p[2]] {
			return b[p[0]], p, true
		}
	}
	return None, WinPattern{}, false
}

// HasWin reports whether mark owns any complete line.
func (b *Board) HasWin(mark PlayerMark) bool {
	for _, p := range winPatterns {
		if b[p[0]] == mark && b[p[1]] == mark && b[p[2]] == mark {
			return true
		}
	}
	return false
}

// IsFull reports whether no cell is empty.
func (b *Board) IsFull() bool {
	for _, c := range b {
		if c == None {
			return false
		}
	}
	return true
}

// EmptyIndices returns the indices of empty cells in ascending order.
func (b *Board) EmptyIndices() []int {
	empty := make([]int, 0, Cells)
	for i, c := range b {
		if c == None {
			empty = append(empty, i)
		}
	}
	return empty
}

// Count returns how many cells hold mark.
func (b *Board) Count(mark PlayerMark) int {
	n := 0
	for _, c := range b {
		if c == mark {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() Board {
	return *b
}

func (b *Board) Reset() {
	*b = Board{}
}

// String renders the board as three lines, using '_' for empty cells.
func (b *Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if c == None {
			sb.WriteByte('_')
		} else {
			sb.WriteString(string(c))
		}
		if i%3 == 2 && i != Cells-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard builds a board from nine cell characters: 'X', 'O', and '_' or '.' for empty.
// Whitespace and '|' separators are ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '|':
			continue
		}
		if i >= Cells {
			return Board{}, fmt.Errorf("board %q has more than %d cells", s, Cells)
		}
		switch r {
		case 'X', 'x':
			b[i] = PlayerX
		case 'O', 'o':
			b[i] = PlayerO
		case '_', '.':
			b[i] = None
		default:
			return Board{}, fmt.Errorf("board %q: unexpected cell %q", s, r)
		}
		i++
	}
	if i != Cells {
		return Board{}, fmt.Errorf("board %q has %d cells, want %d", s, i, Cells)
	}
	return b, nil
}

// MustParseBoard is like ParseBoard but panics on malformed input. Intended for fixtures.
func MustParseBoard(s string) Board {
	b, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}
	return b
}
