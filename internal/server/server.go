package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"ctchen222/tictactoe-engine/internal/api/controller"
	"ctchen222/tictactoe-engine/internal/api/response"
	"ctchen222/tictactoe-engine/internal/player"
	"ctchen222/tictactoe-engine/internal/session"
	appvalidator "ctchen222/tictactoe-engine/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := appvalidator.Register(v); err != nil {
			panic(err)
		}
	}
}

type Server struct {
	engine   *gin.Engine
	sessions *session.Manager
	upgrader websocket.Upgrader
}

// NewServer wires the REST API, the websocket endpoint and, when webDir exists, the static UI.
func NewServer(sessions *session.Manager, games *controller.GameController, webDir string) *Server {
	s := &Server{
		engine:   gin.New(),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerHandlers(games, webDir)
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers(games *controller.GameController, webDir string) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok", "sessions": s.sessions.Len()})
	})

	api := s.engine.Group("/api/games")
	api.POST("", games.Create)
	api.GET("/:id", games.Get)
	api.POST("/:id/moves", games.Move)
	api.POST("/:id/reset", games.Reset)
	api.PUT("/:id/mode", games.SetMode)

	s.engine.GET("/ws/:id", s.handleWebSocket)

	if info, err := os.Stat(webDir); err == nil && info.IsDir() {
		s.engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(webDir))))
	} else {
		slog.Warn("web directory not found, static UI disabled", "dir", webDir)
	}
}

// handleWebSocket attaches the connection to an existing session and pumps its messages.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("session.id", c.Param("id")),
	))
	defer span.End()

	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, "Unknown session")
		response.FromError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	playerID := c.Query("playerId")
	if playerID == "" {
		playerID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("player.id", playerID))

	p := player.NewPlayer(playerID, conn)
	if err := sess.Attach(ctx, p); err != nil {
		slog.WarnContext(ctx, "failed to attach player", "player.id", playerID, "session.id", sess.ID, "error", err)
		if !errors.Is(err, session.ErrClosed) {
			span.RecordError(err)
		}
		_ = conn.Close()
		return
	}
	go sess.ReadPump(p)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.DebugContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
