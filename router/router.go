// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/blossom-site/cliparse"
	"github.com/danielhkuo/blossom-site/db"
	"github.com/danielhkuo/blossom-site/gameapi"
	"github.com/danielhkuo/blossom-site/handlers"
	"github.com/danielhkuo/blossom-site/metrics"
	"github.com/danielhkuo/blossom-site/middleware"
	"github.com/danielhkuo/blossom-site/models"
)

func NewRouter(conn *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	store := db.NewStore(conn, cfg.DatabaseType)
	client := gameapi.New(cfg.GameAPIURL, cfg.GameAPITimeout)

	pingbackHandler := handlers.NewPingbackHandler(store, cfg)
	gameHandler := handlers.NewGameHandler(store, client)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{Status: "ok"})
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Vote pingback (GTop100)
	mux.HandleFunc("GET /api/vote/pingback", middleware.WithLogging(pingbackHandler.Status))
	mux.HandleFunc("POST /api/vote/pingback", middleware.WithRecovery(middleware.WithLogging(pingbackHandler.Receive)))

	// Account actions via the game server
	mux.HandleFunc("POST /api/game/register", middleware.WithLogging(gameHandler.Register))
	mux.HandleFunc("POST /api/game/login", middleware.WithLogging(gameHandler.Login))
	mux.HandleFunc("DELETE /api/game/logout", middleware.WithLogging(gameHandler.Logout))
	mux.HandleFunc("POST /api/game/forgot-username", middleware.WithLogging(gameHandler.ForgotUsername))
	mux.HandleFunc("POST /api/game/reset-password-request", middleware.WithLogging(gameHandler.ResetPasswordRequest))
	mux.HandleFunc("POST /api/game/reset-password", middleware.WithLogging(gameHandler.ResetPassword))
	mux.HandleFunc("POST /api/game/reset-pic", middleware.WithLogging(gameHandler.ResetPIC))
	mux.HandleFunc("GET /api/game/skillchange", middleware.WithLogging(gameHandler.SkillChange))

	// Game server status
	mux.HandleFunc("GET /api/status", middleware.WithLogging(gameHandler.ServerStatus))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blossom-site API v1"))
	})

	return mux
}
