package main

import (
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/config"
	"ctchen222/reversi/internal/logger"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file; environment only when empty")
	local := flag.Bool("local", false, "play against the computer on this terminal instead of the server")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg = config.MustLoad(*configPath)
	} else if cfg, err = config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.AddSource)

	d, err := bot.ParseDifficulty(cfg.Client.Difficulty)
	if err != nil {
		slog.Warn("Unknown difficulty, using default", "difficulty", cfg.Client.Difficulty, "default", bot.DefaultDifficulty)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *local {
		err = playLocal(ctx, cfg, bot.NewEngine(d), os.Stdin, os.Stdout)
	} else {
		err = playRemote(ctx, cfg.Client, bot.NewEngine(d), os.Stdout)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
