// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the tables this service owns. The users and accounts
// tables belong to the game server and are never created here.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Kept to a single statement and portable types so the same DDL runs on
// MySQL, PostgreSQL and SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS vote_pingback_log (
    id VARCHAR(36) PRIMARY KEY,
    receipt_id VARCHAR(36) NOT NULL,
    voter_ip VARCHAR(64),
    result_code INTEGER NOT NULL,
    reason VARCHAR(255),
    username VARCHAR(64),
    user_id BIGINT,
    outcome VARCHAR(32) NOT NULL,
    points_credited INTEGER NOT NULL DEFAULT 0,
    currency_credited INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
