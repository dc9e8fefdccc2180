// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package httpapi is the REST transport: quiz authoring, session lifecycle,
// join/leaderboard/export/analytics, and the minimal presenter-account
// bootstrap the engine needs to be runnable end to end.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/config"
	"github.com/Roadmvn/quizforge/internal/engine"
	"github.com/Roadmvn/quizforge/internal/metrics"
	"github.com/Roadmvn/quizforge/internal/store"
	"github.com/Roadmvn/quizforge/internal/wsserver"
)

// Server holds every collaborator the REST handlers need.
type Server struct {
	store    *store.Store
	registry *engine.Registry
	signer   *authtoken.Signer
	ws       *wsserver.Server
	cfg      config.Config
}

// NewServer wires the REST transport's dependencies.
func NewServer(st *store.Store, registry *engine.Registry, signer *authtoken.Signer, ws *wsserver.Server, cfg config.Config) *Server {
	return &Server{store: st, registry: registry, signer: signer, ws: ws, cfg: cfg}
}

// Router builds the gin.Engine with all routes and middleware registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(recovery(), requestLogger(), cors(s.cfg.AllowedOrigins), otelgin.Middleware("quizforge"))

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/session/:session_id", s.ws.Handle)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	quizzes := r.Group("/api/quizzes")
	quizzes.Use(s.signer.RequireAuth())
	{
		quizzes.POST("", s.handleCreateQuiz)
		quizzes.GET("", s.handleListQuizzes)
		quizzes.GET("/:id", s.handleGetQuiz)
		quizzes.DELETE("/:id", s.handleDeleteQuiz)
	}

	r.POST("/api/sessions/join", s.handleJoinSession)
	r.GET("/api/sessions/by-code/:code", s.handleGetSessionByCode)

	sessions := r.Group("/api/sessions")
	sessions.Use(s.signer.RequireAuth())
	{
		sessions.POST("", s.handleCreateSession)
		sessions.GET("", s.handleListSessions)
		sessions.GET("/:id", s.handleGetSession)
		sessions.DELETE("/:id", s.handleDeleteSession)
		sessions.POST("/:id/finish", s.handleFinishSession)
		sessions.GET("/:id/leaderboard", s.handleLeaderboard)
		sessions.GET("/:id/export", s.handleExport)
		sessions.GET("/:id/analytics", s.handleAnalytics)
		sessions.GET("/:id/qrcode", s.handleQRCode)
	}

	r.GET("/api/network-info", s.handleNetworkInfo)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
