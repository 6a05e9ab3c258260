// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/blossom-site/cliparse"
	"github.com/danielhkuo/blossom-site/db"
)

// TestPingbackKey is the pingback key configured by GetTestConfig
const TestPingbackKey = "SECRET"

// SetupTestDB opens a private in-memory SQLite database with the game
// tables and the vote log.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every new connection would get its own empty in-memory database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			email TEXT,
			password TEXT,
			pic TEXT,
			votepoints INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE accounts (
			id INTEGER PRIMARY KEY,
			userid INTEGER NOT NULL,
			nxCredit INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create game schema: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                     3000,
		DatabaseURL:              ":memory:",
		DatabaseType:             "sqlite",
		DBPoolSize:               1,
		PingbackKey:              TestPingbackKey,
		VotePointsReward:         3,
		VoteNXReward:             5000,
		VoteMissingResultSuccess: true,
		GameAPIURL:               "http://127.0.0.1:1/api",
		GameAPITimeout:           cliparse.DefaultGameAPITimeout,
		LogLevel:                 "info",
	}
}

// CreateTestUser inserts a game user with an accounts row and returns its id
func CreateTestUser(t *testing.T, conn *sql.DB, id int64, name, email, passwordHash string) int64 {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO users (id, name, email, password, pic)
		VALUES (?, ?, ?, ?, '1234')
	`, id, name, email, passwordHash)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	_, err = conn.Exec(`INSERT INTO accounts (userid) VALUES (?)`, id)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return id
}

// Balances returns a user's vote points and NX credit
func Balances(t *testing.T, conn *sql.DB, userID int64) (points, nx int) {
	t.Helper()

	err := conn.QueryRow(`SELECT votepoints FROM users WHERE id = ?`, userID).Scan(&points)
	if err != nil {
		t.Fatalf("Failed to query vote points: %v", err)
	}
	err = conn.QueryRow(`SELECT nxCredit FROM accounts WHERE userid = ?`, userID).Scan(&nx)
	if err != nil {
		t.Fatalf("Failed to query nx credit: %v", err)
	}
	return points, nx
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a url-encoded POST request
func MakeFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertBody checks the exact plain-text response body
func AssertBody(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	if got := w.Body.String(); got != expected {
		t.Errorf("Expected body %q, got %q", expected, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
