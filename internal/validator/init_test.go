package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modeRequest struct {
	Mode  string `validate:"required,game_mode"`
	Index *int   `validate:"omitempty,cell"`
}

func TestGameModeTag(t *testing.T) {
	v := GetValidator()

	for _, mode := range []string{"human", "easy", "medium", "hard"} {
		assert.NoError(t, v.Struct(modeRequest{Mode: mode}), mode)
	}
	assert.Error(t, v.Struct(modeRequest{Mode: "expert"}))
	assert.Error(t, v.Struct(modeRequest{}))
}

func TestCellTag(t *testing.T) {
	v := GetValidator()

	for _, tc := range []struct {
		index int
		ok    bool
	}{
		{0, true},
		{8, true},
		{9, false},
		{-1, false},
	} {
		idx := tc.index
		err := v.Struct(modeRequest{Mode: "easy", Index: &idx})
		if tc.ok {
			assert.NoError(t, err, "index %d", tc.index)
		} else {
			assert.Error(t, err, "index %d", tc.index)
		}
	}
	assert.NoError(t, v.Struct(modeRequest{Mode: "easy"}), "nil index is allowed")
}

func TestRegisterOnFreshValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type req struct {
		Mode string `validate:"game_mode"`
	}
	assert.NoError(t, v.Struct(req{Mode: "hard"}))
	assert.Error(t, v.Struct(req{Mode: "nightmare"}))
}
