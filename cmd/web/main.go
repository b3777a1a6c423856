package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minaorangina/bluff/config"
	"github.com/minaorangina/bluff/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := cfg.OpenStore(ctx, logger)
	if err != nil {
		logger.Fatal("could not open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	s := server.NewServer(server.ServerOpts{
		Store:          store,
		Logger:         logger,
		Options:        cfg.GameOptions(),
		Jokers:         cfg.Jokers,
		RoomCodeLength: cfg.RoomCodeLength,
	})
	s.Addr = cfg.Addr

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
		s.Close()
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
