package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niksmo/catalog-seed/config"
	"github.com/niksmo/catalog-seed/internal/app"
)

const closeTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	sigCtx, stop := signalContext()
	defer stop()

	cfg := config.Load()
	cfg.Print()

	seeder := app.New(sigCtx, cfg)

	code := seeder.Run()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	seeder.Close(ctx)
	return code
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
}
