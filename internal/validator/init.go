package validator

import (
	"ctchen222/tictactoe-engine/internal/game"

	"github.com/go-playground/validator/v10"
)

const (
	// ModeTag validates that a string names a game mode.
	ModeTag = "game_mode"
	// CellTag validates that an integer is a board index.
	CellTag = "cell"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := Register(validate); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// Register adds the game-specific tags to v. Used for gin's binding validator too.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(ModeTag, func(fl validator.FieldLevel) bool {
		_, err := game.ParseMode(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation(CellTag, func(fl validator.FieldLevel) bool {
		i := fl.Field().Int()
		return i >= 0 && i < game.Cells
	})
}
