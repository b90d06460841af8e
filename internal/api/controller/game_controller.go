package controller

import (
	"context"
	"log/slog"
	"net/http"

	"ctchen222/tictactoe-engine/internal/api/models"
	"ctchen222/tictactoe-engine/internal/api/response"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/session"

	"github.com/gin-gonic/gin"
)

// Sessions is the part of session.Manager the controller needs.
type Sessions interface {
	Create(ctx context.Context, mode game.Mode) (*session.Session, error)
	Get(id string) (*session.Session, error)
}

// GameController handles the game REST endpoints.
type GameController struct {
	sessions    Sessions
	defaultMode game.Mode
}

func NewGameController(sessions Sessions, defaultMode game.Mode) *GameController {
	return &GameController{
		sessions:    sessions,
		defaultMode: defaultMode,
	}
}

// Create handles POST /api/games.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	mode := gc.defaultMode
	if req.Mode != "" {
		parsed, err := game.ParseMode(req.Mode)
		if err != nil {
			response.FromError(c, err)
			return
		}
		mode = parsed
	}

	s, err := gc.sessions.Create(c.Request.Context(), mode)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create session", "error", err)
		response.FromError(c, err)
		return
	}

	response.CreatedResponse(c, models.GameResponse{Game: s.Snapshot()})
}

// Get handles GET /api/games/:id.
func (gc *GameController) Get(c *gin.Context) {
	s, ok := gc.lookup(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, models.GameResponse{Game: s.Snapshot()})
}

// Move handles POST /api/games/:id/moves.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s, ok := gc.lookup(c)
	if !ok {
		return
	}

	_, state, err := s.Move(c.Request.Context(), *req.Index)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{Game: state})
}

// Reset handles POST /api/games/:id/reset.
func (gc *GameController) Reset(c *gin.Context) {
	s, ok := gc.lookup(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, models.GameResponse{Game: s.Reset(c.Request.Context())})
}

// SetMode handles PUT /api/games/:id/mode.
func (gc *GameController) SetMode(c *gin.Context) {
	var req models.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		response.FromError(c, err)
		return
	}

	s, ok := gc.lookup(c)
	if !ok {
		return
	}

	state, err := s.SetMode(c.Request.Context(), mode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, models.GameResponse{Game: state})
}

func (gc *GameController) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := gc.sessions.Get(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	return s, true
}
