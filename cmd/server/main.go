package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/kotobaplay/wordrelay/internal/config"
	"github.com/kotobaplay/wordrelay/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	store, err := server.NewStore(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer store.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	if err := server.SeedSampleList(ctx, logger, store); err != nil {
		return fmt.Errorf("seeding sample list: %w", err)
	}

	// --- Host credentials ---
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.HostPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing host password: %w", err)
	}

	// --- Game console ---
	console := server.NewConsole(logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, console, store, passwordHash, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		console.RunTicker(gctx, cfg.TickInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
