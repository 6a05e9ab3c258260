// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/danielhkuo/blossom-site/vote"
)

// ErrNotFound is returned by account lookups that match no row.
var ErrNotFound = errors.New("not found")

// Column limits of vote_pingback_log.
const (
	maxIPLen       = 64
	maxReasonLen   = 255
	maxUsernameLen = 64
)

// Store reads and writes the game server's users and accounts tables.
// Queries are written with ? placeholders and rebound for PostgreSQL.
type Store struct {
	db      *sql.DB
	dialect string
}

// NewStore wraps an open connection pool. dialect is the configured database
// type: "mysql", "postgres" or "sqlite".
func NewStore(db *sql.DB, dialect string) *Store {
	return &Store{db: db, dialect: dialect}
}

// FindUserIDByName resolves a game username to its users.id.
func (s *Store) FindUserIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id FROM users WHERE name = ?
	`), name).Scan(&id)

	if err == sql.ErrNoRows {
		return 0, vote.ErrUserNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "find user %q", name)
	}
	return id, nil
}

// IncrementPoints adds amount to users.votepoints.
func (s *Store) IncrementPoints(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx, s.rebind(queryIncrementPoints), amount, userID)
	return errors.Wrap(err, "increment vote points")
}

// IncrementCurrency adds amount to accounts.nxCredit.
func (s *Store) IncrementCurrency(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx, s.rebind(queryIncrementCurrency), amount, userID)
	return errors.Wrap(err, "increment nx credit")
}

// CreditVote applies both increments in one transaction.
func (s *Store) CreditVote(ctx context.Context, userID int64, points, currency int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin credit transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(queryIncrementPoints), points, userID); err != nil {
		return errors.Wrap(err, "increment vote points")
	}
	if _, err := tx.ExecContext(ctx, s.rebind(queryIncrementCurrency), currency, userID); err != nil {
		return errors.Wrap(err, "increment nx credit")
	}

	return errors.Wrap(tx.Commit(), "commit credit transaction")
}

const (
	queryIncrementPoints   = `UPDATE users SET votepoints = votepoints + ? WHERE id = ?`
	queryIncrementCurrency = `UPDATE accounts SET nxCredit = nxCredit + ? WHERE userid = ?`
)

// RecordVote appends one row to vote_pingback_log.
func (s *Store) RecordVote(ctx context.Context, rec vote.Record) error {
	var userID sql.NullInt64
	if rec.UserID != 0 {
		userID = sql.NullInt64{Int64: rec.UserID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO vote_pingback_log
			(id, receipt_id, voter_ip, result_code, reason, username, user_id,
			 outcome, points_credited, currency_credited, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		rec.ID,
		rec.Receipt,
		nullString(rec.SourceIP, maxIPLen),
		rec.ResultCode,
		nullString(rec.Reason, maxReasonLen),
		nullString(rec.Username, maxUsernameLen),
		userID,
		rec.Outcome,
		rec.PointsCredited,
		rec.CurrencyCredited,
		rec.CreatedAt,
	)
	return errors.Wrap(err, "insert vote log")
}

// FindUsernameByEmail returns the name of the account registered with email.
func (s *Store) FindUsernameByEmail(ctx context.Context, email string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT name FROM users WHERE email = ?
	`), email).Scan(&name)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "find user by email")
	}
	return name, nil
}

// FindCredentials returns the id and password hash for a username.
func (s *Store) FindCredentials(ctx context.Context, name string) (int64, string, error) {
	var (
		id   int64
		hash sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, password FROM users WHERE name = ?
	`), name).Scan(&id, &hash)

	if err == sql.ErrNoRows {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", errors.Wrap(err, "find credentials")
	}
	return id, hash.String, nil
}

// ClearPIC removes the secondary in-game PIN so it can be set again on the
// next login.
func (s *Store) ClearPIC(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE users SET pic = NULL WHERE id = ?
	`), userID)
	return errors.Wrap(err, "clear pic")
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func nullString(s string, limit int) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	if len(s) > limit {
		// back off to a rune boundary so the column never gets invalid UTF-8
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return sql.NullString{String: s, Valid: true}
}
