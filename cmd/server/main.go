package main

import (
	"context"
	"ctchen222/reversi/internal/api/controller"
	"ctchen222/reversi/internal/api/middleware"
	apirepository "ctchen222/reversi/internal/api/repository"
	"ctchen222/reversi/internal/api/service"
	"ctchen222/reversi/internal/config"
	"ctchen222/reversi/internal/db"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/hub"
	"ctchen222/reversi/internal/logger"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/internal/room"
	"ctchen222/reversi/internal/server"
	"ctchen222/reversi/internal/telemetry"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file; environment only when empty")
	memory := flag.Bool("memory", false, "keep games and presence in process instead of redis")
	flag.Parse()

	if err := run(*configPath, *memory); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.MustLoad(path), nil
	}
	return config.Load()
}

func run(configPath string, memory bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.AddSource)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	// Game state and presence
	var (
		gameRepo   repository.GameRepository
		playerRepo repository.PlayerRepository
		bus        events.Bus
	)
	if memory {
		gameRepo = repository.NewMemoryGameRepository()
		playerRepo = repository.NewMemoryPlayerRepository()
		bus = events.NewLocalBus()
	} else {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		gameRepo = repository.NewGameRepository(rdb)
		playerRepo = repository.NewPlayerRepository(rdb)
		bus = events.NewRedisBus(rdb)
	}

	// Accounts and saves
	pool, err := db.Open(ctx, cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite db: %w", err)
	}
	defer pool.Close()

	userService := service.NewUserService(apirepository.NewUserRepository(pool), cfg.Auth)
	saveService := service.NewSaveService(apirepository.NewSaveRepository(pool))

	h := hub.NewHub(uuid.New().String(), gameRepo, playerRepo, bus, room.Settings{
		MoveTimeout:       cfg.Server.MoveTimeout,
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
	})
	go h.Run(ctx)

	srv := server.NewServer(h, server.Controllers{
		Users: controller.NewUserController(userService),
		Saves: controller.NewSaveController(saveService),
		Auth:  middleware.RequireAuth(userService),
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: otelhttp.NewHandler(srv.Engine(), "reversi.http"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.InfoContext(gctx, "HTTP server started", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	if cfg.Server.TCPAddr != "" {
		ln, err := net.Listen("tcp", cfg.Server.TCPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.TCPAddr, err)
		}
		g.Go(func() error {
			return srv.ServeTCP(gctx, ln)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server exiting")
	return nil
}
