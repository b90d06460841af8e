package response

import (
	"errors"
	"net/http"

	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/session"

	"github.com/gin-gonic/gin"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrClosed):
		return http.StatusNotFound
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrNotActive),
		errors.Is(err, session.ErrNotYourTurn):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FromError writes err with the status StatusFor picks.
func FromError(c *gin.Context, err error) {
	ErrorResponse(c, StatusFor(err), err.Error())
}
