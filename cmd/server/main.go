package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanmaysharma2001/collabboard/internal/config"
	"github.com/tanmaysharma2001/collabboard/internal/dispatcher"
	"github.com/tanmaysharma2001/collabboard/internal/registry"
	"github.com/tanmaysharma2001/collabboard/internal/transport"
	"github.com/tanmaysharma2001/collabboard/pkg/logger"
)

func main() {
	cfg, exit := config.Load(os.Args[1:])
	if exit != nil {
		fmt.Print(exit.Message)
		os.Exit(exit.Code)
	}

	reg := registry.New(cfg.EmptyRoomGrace)
	disp := dispatcher.New(reg)
	srv := transport.NewServer(disp)

	go startBucketCleanup(reg, cfg.BucketIdleSeconds)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Mux(),
	}

	logger.Info("whiteboard server listening on http://localhost:%s", cfg.Port)
	logger.Info("websocket endpoint: ws://localhost:%s/", cfg.Port)
	logger.Info("health check: http://localhost:%s/health", cfg.Port)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down...")

	if err := httpServer.Close(); err != nil {
		logger.Error("error during shutdown: %v", err)
	}
}

// startBucketCleanup periodically sweeps rate-limit buckets left behind
// by connections that dropped without a clean leave, per the bucket
// lifecycle's idle-cleanup half. It runs until the process exits.
func startBucketCleanup(reg *registry.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle)
	defer ticker.Stop()

	for range ticker.C {
		if n := reg.Presence.Cleanup(maxIdle); n > 0 {
			logger.Debug("rate limiter cleanup removed %d idle bucket(s)", n)
		}
	}
}
