// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Blossom site API.

# Handler Types

  - PingbackHandler: GTop100 vote pingbacks and reward crediting
  - GameHandler: account actions forwarded to the game server, PIC reset
    and server status

Handlers are created via constructor functions:

	pingback := handlers.NewPingbackHandler(store, cfg)
	game := handlers.NewGameHandler(store, gameapi.New(cfg.GameAPIURL, cfg.GameAPITimeout))

# Vote Pingback

	GET  /api/vote/pingback → Status (liveness and reward amounts)
	POST /api/vote/pingback → Receive

Receive handles both wire shapes. A Content-Type containing
application/json selects the batch shape; anything else is read as a
url-encoded form. Checks run in a fixed order:

	pingback key not configured → 500 "Internal server error"
	undecodable body            → 400 "Invalid JSON data" / "Invalid POST data"
	wrong or missing key        → 403 "Invalid pingback key"
	events processed            → 200 "JSON data processed successfully" /
	                                  "POST data processed successfully"

All pingback bodies are plain text. Per-event outcomes (no username,
failed vote, unknown user, store errors) never change the status code;
they are logged with the notification's receipt id and counted in
package metrics. Processing is detached from the request context so a
notifier that disconnects cannot abort half a batch.

# Game Server Proxy

	POST   /api/game/register               → POST /users
	POST   /api/game/login                  → POST /login (reply passed through)
	DELETE /api/game/logout                 → DELETE /login (always succeeds)
	POST   /api/game/forgot-username        → POST /forgot-username
	POST   /api/game/reset-password-request → POST /reset-password-request
	POST   /api/game/reset-password         → POST /reset-password
	GET    /api/game/skillchange?jobid=     → GET /skillchange
	GET    /api/status                      → GET /status (offline on any failure)

An unreachable game server yields 500 with a JSON error. Upstream error
statuses are passed through with the upstream message when present.

reset-password-request answers identically for known and unknown emails.
reset-pic checks the bcrypt hash in the users table and clears the PIC
column directly.
*/
package handlers
