// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command quizforge runs the Live Session Engine's REST and WebSocket
// transports as a single process.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/config"
	"github.com/Roadmvn/quizforge/internal/engine"
	"github.com/Roadmvn/quizforge/internal/httpapi"
	"github.com/Roadmvn/quizforge/internal/store"
	"github.com/Roadmvn/quizforge/internal/telemetry"
	"github.com/Roadmvn/quizforge/internal/wsserver"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	cleanup, err := telemetry.Init(context.Background())
	if err != nil {
		log.Fatalf("failed to setup tracing: %v", err)
	}
	defer cleanup(context.Background())

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close() //nolint:errcheck

	registry := engine.NewRegistry(st)
	signer := authtoken.NewSigner(cfg.SecretKey)
	ws := wsserver.New(registry, st, signer)
	server := httpapi.NewServer(st, registry, signer, ws, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("quizforge listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
