// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are layered with koanf, lowest precedence first:

 1. built-in defaults
 2. YAML file named by -c or CONFIG_FILE (keys are lower-case env names)
 3. environment variables (main loads .env first via godotenv)
 4. CLI flags

# CLI Flags

	-c              YAML config file
	-p              Server port
	-d              Database URL / DSN
	-t              Database type (mysql, postgres, sqlite)
	-pingback-key   GTop100 pingback key

# Environment Variables

	PORT                         server port (default 3000)
	DATABASE_URL                 DSN; for mysql it may be built from
	DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME
	DATABASE_TYPE                mysql (default), postgres or sqlite
	DB_POOL_SIZE                 max open connections (default 10)
	GTOP100_PINGBACK_KEY         shared pingback secret
	VOTE_POINTS_REWARD           vote points per vote (default 3)
	VOTE_NX_REWARD               NX credit per vote (default 5000)
	VOTE_MISSING_RESULT_SUCCESS  treat a missing result field as success (default true)
	VOTE_AUDIT_LOG               write vote_pingback_log rows (default false)
	GAME_API_URL                 full game API base URL, or
	GAME_SERVER_HOST, GAME_API_PORT
	GAME_API_TIMEOUT             e.g. 5s
	LOG_LEVEL                    debug, info, warn, error

# Validation

ParseFlags returns an error for an unknown database type, a missing
database URL or a non-numeric value. The pingback key is deliberately not
required at startup: without it every pingback is rejected with a 500.
*/
package cliparse
