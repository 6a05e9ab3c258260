// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Blossom site API server.

The site backs the fan page of a private game server: it credits GTop100
vote rewards to game accounts and forwards account actions to the game
server's REST API.

# Starting the Server

Configuration comes from a .env file, the environment, an optional YAML
file, or CLI flags:

	GTOP100_PINGBACK_KEY=... DB_HOST=localhost DB_USER=game DB_NAME=heavenms go run .

Or with flags:

	go run . -p 3000 -t sqlite -d file:site.db -pingback-key secret

# Configuration

Required settings:

  - DATABASE_URL (-d), or DB_HOST/DB_USER/DB_PASSWORD/DB_NAME for MySQL
  - GTOP100_PINGBACK_KEY (-pingback-key): without it every pingback is
    answered with a 500

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): mysql, postgres or sqlite (default: mysql)
  - VOTE_POINTS_REWARD, VOTE_NX_REWARD: per-vote rewards (default: 3, 5000)
  - VOTE_AUDIT_LOG: record every vote event in vote_pingback_log
  - GAME_SERVER_HOST, GAME_API_PORT: game server REST API location

See package cliparse for the full list.

# Architecture

  - vote: pingback decoding and reward crediting
  - auth: pingback key and password checks
  - db: SQL ledger over the game's users/accounts tables, vote log schema
  - gameapi: game server REST client
  - handlers: HTTP request handlers (pingback, game proxy, status)
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, recovery, CORS, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
