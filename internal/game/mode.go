package game

import "fmt"

// Mode selects who plays the non-starting side.
type Mode int

const (
	ModeHuman Mode = iota
	ModeEasy
	ModeMedium
	ModeHard
)

var modeNames = map[Mode]string{
	ModeHuman:  "human",
	ModeEasy:   "easy",
	ModeMedium: "medium",
	ModeHard:   "hard",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsBot reports whether the mode puts a bot on the board.
func (m Mode) IsBot() bool {
	return m == ModeEasy || m == ModeMedium || m == ModeHard
}

// ParseMode converts a wire name ("human", "easy", "medium", "hard") to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeHuman, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	name, ok := modeNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(name), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
