package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-engine/internal/api/controller"
	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/config"
	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/logger"
	"ctchen222/tictactoe-engine/internal/server"
	"ctchen222/tictactoe-engine/internal/session"
	"ctchen222/tictactoe-engine/internal/telemetry"

	"go.opentelemetry.io/otel"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger.Init(cfg.LogLevel, cfg.Telemetry.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
		if err != nil {
			slog.Error("failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("error shutting down telemetry", "error", err)
			}
		}()
	}

	metrics, err := telemetry.NewMetrics(otel.Meter("tictactoe"))
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	// Event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Redis.Enabled {
		rdb, err := events.NewRedisClient(ctx, cfg.Redis.Addr())
		if err != nil {
			slog.Error("failed to initialize redis", "addr", cfg.Redis.Addr(), "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, cfg.Redis.Channel)
	}

	defaultMode, _ := game.ParseMode(cfg.Game.DefaultMode)
	manager := session.NewManager(
		bot.NewBotMoveCalculator(nil),
		session.Options{
			BotDelay:      cfg.Game.BotDelay,
			BotMark:       game.PlayerMark(cfg.Game.BotMark),
			TTL:           cfg.Game.SessionTTL,
			SweepInterval: cfg.Game.SweepInterval,
		},
		publisher,
		metrics,
	)
	sweeperDone := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(sweeperDone)
	}()

	srv := server.NewServer(manager, controller.NewGameController(manager, defaultMode), cfg.WebDir)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	<-sweeperDone

	slog.Info("server exiting")
}
