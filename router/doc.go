// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Blossom site API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(conn, cfg)

# Endpoints

Health and metrics:

	GET /health  - {"status":"ok"}
	GET /metrics

Vote pingback (called by GTop100, authenticated by pingback key):

	GET  /api/vote/pingback - Liveness and reward amounts
	POST /api/vote/pingback - Receive vote notifications

Account actions (forwarded to the game server):

	POST   /api/game/register
	POST   /api/game/login
	DELETE /api/game/logout
	POST   /api/game/forgot-username
	POST   /api/game/reset-password-request
	POST   /api/game/reset-password
	POST   /api/game/reset-pic
	GET    /api/game/skillchange?jobid=

Server status:

	GET /api/status

# Handler Initialization

The router builds one db.Store over the shared connection pool and one
gameapi.Client, and injects them:

	store := db.NewStore(conn, cfg.DatabaseType)
	pingbackHandler := handlers.NewPingbackHandler(store, cfg)
	gameHandler := handlers.NewGameHandler(store, client)

Every API route is wrapped with middleware.WithLogging. The pingback POST
is additionally wrapped with middleware.WithRecovery so a panic still
answers with a plain-text 500.
*/
package router
