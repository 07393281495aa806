package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/adapters/repo/mongostore"
	"github.com/danghuy/secondcell/internal/app"
	"github.com/danghuy/secondcell/internal/config"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.Load()

	ctx := context.Background()
	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to document store")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	application, err := app.New(ctx, cfg, client)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		zlog.Fatal().Err(err).Str("port", cfg.Port).Msg("failed to listen")
	}
	server := &http.Server{Handler: application.HTTPHandler()}

	go func() {
		zlog.Info().Str("port", cfg.Port).Msg("listening")
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			zlog.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutCtx)
}
