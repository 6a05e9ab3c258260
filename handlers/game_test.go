// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/blossom-site/db"
	"github.com/danielhkuo/blossom-site/gameapi"
	"github.com/danielhkuo/blossom-site/models"
	"github.com/danielhkuo/blossom-site/testutil"
)

// seen is what the fake game server observed
type seen struct {
	path   string
	method string
	token  string
	body   map[string]any
	calls  int
}

// fakeGameServer records the last request it saw
type fakeGameServer struct {
	mu      sync.Mutex
	last    seen
	handler func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeGameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.last = seen{
		path:   r.URL.RequestURI(),
		method: r.Method,
		token:  r.Header.Get("token"),
		body:   body,
		calls:  f.last.calls + 1,
	}
	f.mu.Unlock()

	f.handler(w, r)
}

func (f *fakeGameServer) Seen() seen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func setupGameHandler(t *testing.T, upstream func(w http.ResponseWriter, r *http.Request)) (*GameHandler, *fakeGameServer, *sql.DB) {
	t.Helper()

	fake := &fakeGameServer{handler: upstream}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	conn := testutil.SetupTestDB(t)
	handler := NewGameHandler(db.NewStore(conn, "sqlite"), gameapi.New(srv.URL+"/api", time.Second))
	return handler, fake, conn
}

func unreachableHandler(t *testing.T) *GameHandler {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	conn := testutil.SetupTestDB(t)
	return NewGameHandler(db.NewStore(conn, "sqlite"), gameapi.New(url+"/api", time.Second))
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		upstreamBody   string
		expectedStatus int
		expectedError  string
	}{
		{"created", http.StatusOK, `{}`, http.StatusOK, ""},
		{"no content", http.StatusNoContent, ``, http.StatusOK, ""},
		{"name taken", http.StatusConflict, `{"message":"Username already exists"}`, http.StatusConflict, "Username already exists"},
		{"rejected without message", http.StatusBadRequest, `oops`, http.StatusBadRequest, "Registration failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, fake, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.upstreamStatus)
				w.Write([]byte(tt.upstreamBody))
			})

			req := testutil.MakeRequest(http.MethodPost, "/api/game/register", models.RegisterRequest{
				Username: "Alice", Password: "pw", Email: "alice@example.com",
			}, nil)
			w := httptest.NewRecorder()
			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if fake.Seen().path != "/api/users" || fake.Seen().method != http.MethodPost {
				t.Errorf("Upstream saw %s %s", fake.Seen().method, fake.Seen().path)
			}
			if fake.Seen().body["username"] != "Alice" || fake.Seen().body["email"] != "alice@example.com" {
				t.Errorf("Unexpected upstream body %v", fake.Seen().body)
			}

			if tt.expectedError == "" {
				var resp models.SuccessResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.Success || resp.Message != "Account created successfully!" {
					t.Errorf("Unexpected response %+v", resp)
				}
				return
			}

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Error != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, resp.Error)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("reply passes through", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"token":"abc","user":{"name":"Alice"}}`))
		})

		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest(http.MethodPost, "/api/game/login", models.LoginRequest{Username: "Alice", Password: "pw"}, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertBody(t, w, `{"token":"abc","user":{"name":"Alice"}}`)
	})

	t.Run("bad credentials", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest(http.MethodPost, "/api/game/login", models.LoginRequest{Username: "Alice", Password: "bad"}, nil))

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Invalid username or password" {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})

	t.Run("game server down", func(t *testing.T) {
		handler := unreachableHandler(t)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.MakeRequest(http.MethodPost, "/api/game/login", models.LoginRequest{Username: "Alice"}, nil))

		testutil.AssertStatus(t, w, http.StatusInternalServerError)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Unable to connect to game server. Please try again." {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		handler := unreachableHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/game/login", strings.NewReader("{"))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestLogout(t *testing.T) {
	t.Run("forwards token", func(t *testing.T) {
		handler, fake, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		handler.Logout(w, testutil.MakeRequest(http.MethodDelete, "/api/game/logout", nil, map[string]string{"X-Auth-Token": "tok-1"}))

		testutil.AssertStatus(t, w, http.StatusOK)
		if fake.Seen().method != http.MethodDelete || fake.Seen().path != "/api/login" || fake.Seen().token != "tok-1" {
			t.Errorf("Upstream saw %s %s token=%q", fake.Seen().method, fake.Seen().path, fake.Seen().token)
		}
		if strings.TrimSpace(w.Body.String()) != `{"success":true}` {
			t.Errorf("Unexpected body %s", w.Body.String())
		}
	})

	t.Run("succeeds when game server is down", func(t *testing.T) {
		handler := unreachableHandler(t)

		w := httptest.NewRecorder()
		handler.Logout(w, testutil.MakeRequest(http.MethodDelete, "/api/game/logout", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if strings.TrimSpace(w.Body.String()) != `{"success":true}` {
			t.Errorf("Unexpected body %s", w.Body.String())
		}
	})
}

func TestForgotUsername(t *testing.T) {
	handler, fake, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	handler.ForgotUsername(w, testutil.MakeRequest(http.MethodPost, "/api/game/forgot-username", models.ForgotUsernameRequest{Email: "a@b.c"}, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if fake.Seen().path != "/api/forgot-username" || fake.Seen().body["email"] != "a@b.c" {
		t.Errorf("Upstream saw %s %v", fake.Seen().path, fake.Seen().body)
	}

	var resp models.SuccessResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success || !strings.Contains(resp.Message, "receive an email with your username") {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestResetPasswordRequest(t *testing.T) {
	const sent = "If an account with that email exists, a password reset email has been sent."

	handler, fake, conn := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	testutil.CreateTestUser(t, conn, 42, "Alice", "alice@example.com", "")

	tests := []struct {
		name      string
		email     string
		wantCalls int
	}{
		{"known email", "alice@example.com", 1},
		{"unknown email", "nobody@example.com", 1},
		{"empty email", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ResetPasswordRequest(w, testutil.MakeRequest(http.MethodPost, "/api/game/reset-password-request",
				models.ResetPasswordRequestRequest{Email: tt.email}, nil))

			testutil.AssertStatus(t, w, http.StatusOK)
			var resp models.SuccessResponse
			testutil.AssertJSON(t, w, &resp)
			if !resp.Success || resp.Message != sent {
				t.Errorf("Unexpected response %+v", resp)
			}
			if calls := fake.Seen().calls; calls != tt.wantCalls {
				t.Errorf("Upstream calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}

	if fake.Seen().body["username"] != "Alice" {
		t.Errorf("Expected username lookup by email, upstream got %v", fake.Seen().body)
	}
}

func TestResetPassword(t *testing.T) {
	t.Run("splits key", func(t *testing.T) {
		handler, fake, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		handler.ResetPassword(w, testutil.MakeRequest(http.MethodPost, "/api/game/reset-password",
			models.ResetPasswordRequest{Key: "Alice:abc:def", Password: "new"}, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if fake.Seen().body["username"] != "Alice" || fake.Seen().body["requestToken"] != "abc:def" || fake.Seen().body["newObj"] != "new" {
			t.Errorf("Unexpected upstream body %v", fake.Seen().body)
		}
	})

	t.Run("expired link", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		})

		w := httptest.NewRecorder()
		handler.ResetPassword(w, testutil.MakeRequest(http.MethodPost, "/api/game/reset-password",
			models.ResetPasswordRequest{Key: "tok", Password: "new"}, nil))

		testutil.AssertStatus(t, w, http.StatusGone)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Reset failed. The link may have expired." {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := unreachableHandler(t)

		w := httptest.NewRecorder()
		handler.ResetPassword(w, testutil.MakeRequest(http.MethodPost, "/api/game/reset-password",
			models.ResetPasswordRequest{Key: "Alice:abc"}, nil))

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Invalid reset request" {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})
}

func TestSplitResetKey(t *testing.T) {
	tests := []struct {
		key, username, token string
	}{
		{"Alice:abc", "Alice", "abc"},
		{"Alice:abc:def", "Alice", "abc:def"},
		{"abc", "abc", "abc"},
	}

	for _, tt := range tests {
		username, token := splitResetKey(tt.key)
		if username != tt.username || token != tt.token {
			t.Errorf("splitResetKey(%q) = (%q, %q), want (%q, %q)", tt.key, username, token, tt.username, tt.token)
		}
	}
}

func TestResetPIC(t *testing.T) {
	handler := unreachableHandler(t)
	conn := testutil.SetupTestDB(t)
	handler.store = db.NewStore(conn, "sqlite")

	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	testutil.CreateTestUser(t, conn, 42, "Alice", "", string(hash))
	testutil.CreateTestUser(t, conn, 7, "Bob", "", "not-a-bcrypt-hash")

	tests := []struct {
		name           string
		req            models.ResetPICRequest
		expectedStatus int
		expectedError  string
	}{
		{"missing password", models.ResetPICRequest{Username: "Alice"}, http.StatusBadRequest, "Username and password are required"},
		{"unknown user", models.ResetPICRequest{Username: "Nobody", Password: "x"}, http.StatusUnauthorized, "Invalid username or password"},
		{"wrong password", models.ResetPICRequest{Username: "Alice", Password: "wrong"}, http.StatusUnauthorized, "Invalid username or password"},
		{"malformed hash", models.ResetPICRequest{Username: "Bob", Password: "x"}, http.StatusUnauthorized, "Invalid username or password"},
		{"correct password", models.ResetPICRequest{Username: "Alice", Password: "correct"}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ResetPIC(w, testutil.MakeRequest(http.MethodPost, "/api/game/reset-pic", tt.req, nil))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedError != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error != tt.expectedError {
					t.Errorf("Expected error %q, got %q", tt.expectedError, resp.Error)
				}
			}
		})
	}

	var pic *string
	if err := conn.QueryRow(`SELECT pic FROM users WHERE id = 42`).Scan(&pic); err != nil {
		t.Fatalf("Failed to query pic: %v", err)
	}
	if pic != nil {
		t.Errorf("Alice pic = %q, want NULL", *pic)
	}
	if err := conn.QueryRow(`SELECT pic FROM users WHERE id = 7`).Scan(&pic); err != nil {
		t.Fatalf("Failed to query pic: %v", err)
	}
	if pic == nil {
		t.Error("Bob pic should be untouched")
	}
}

func TestSkillChange(t *testing.T) {
	t.Run("passes jobid through", func(t *testing.T) {
		handler, fake, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"skillId":1001004}]`))
		})

		w := httptest.NewRecorder()
		handler.SkillChange(w, httptest.NewRequest(http.MethodGet, "/api/game/skillchange?jobid=112", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertBody(t, w, `[{"skillId":1001004}]`)
		if fake.Seen().path != "/api/skillchange?jobid=112" {
			t.Errorf("Upstream path = %s", fake.Seen().path)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		handler.SkillChange(w, httptest.NewRequest(http.MethodGet, "/api/game/skillchange?jobid=9999", nil))

		testutil.AssertStatus(t, w, http.StatusNotFound)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Failed to fetch skill info" {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})

	t.Run("game server down", func(t *testing.T) {
		handler := unreachableHandler(t)

		w := httptest.NewRecorder()
		handler.SkillChange(w, httptest.NewRequest(http.MethodGet, "/api/game/skillchange?jobid=112", nil))

		testutil.AssertStatus(t, w, http.StatusInternalServerError)
		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Unable to connect to game server." {
			t.Errorf("Unexpected error %q", resp.Error)
		}
	})
}

func TestServerStatus(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsShutdown":false,"Playercount":5,"Version":"v83","StartTime":"2025-06-01T00:00:00Z","ShutdownMin":0,"RemainingMin":0}`))
		})

		w := httptest.NewRecorder()
		handler.ServerStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp map[string]any
		testutil.AssertJSON(t, w, &resp)
		if resp["online"] != true || resp["players"] != float64(5) || resp["version"] != "v83" {
			t.Errorf("Unexpected status %v", resp)
		}
		if resp["isShutdown"] != false {
			t.Errorf("Expected isShutdown false, got %v", resp["isShutdown"])
		}
	})

	t.Run("shutting down", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsShutdown":true,"Playercount":2,"ShutdownMin":10,"RemainingMin":4}`))
		})

		w := httptest.NewRecorder()
		handler.ServerStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		var resp models.ServerStatus
		testutil.AssertJSON(t, w, &resp)
		if resp.Online || resp.RemainingMin == nil || *resp.RemainingMin != 4 {
			t.Errorf("Unexpected status %+v", resp)
		}
	})

	t.Run("offline", func(t *testing.T) {
		handler := unreachableHandler(t)

		w := httptest.NewRecorder()
		handler.ServerStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertBody(t, w, "{\"online\":false,\"players\":0}\n")
	})

	t.Run("garbage reply", func(t *testing.T) {
		handler, _, _ := setupGameHandler(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		})

		w := httptest.NewRecorder()
		handler.ServerStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		testutil.AssertBody(t, w, "{\"online\":false,\"players\":0}\n")
	})
}
