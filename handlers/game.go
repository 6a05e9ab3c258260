// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/blossom-site/auth"
	"github.com/danielhkuo/blossom-site/db"
	"github.com/danielhkuo/blossom-site/gameapi"
	"github.com/danielhkuo/blossom-site/metrics"
	"github.com/danielhkuo/blossom-site/middleware"
	"github.com/danielhkuo/blossom-site/models"
)

const (
	msgUnreachable       = "Unable to connect to game server. Please try again."
	msgResetEmailSent    = "If an account with that email exists, a password reset email has been sent."
	msgUsernameEmailSent = "If an account with that email exists, you will receive an email with your username."
	msgBadCredentials    = "Invalid username or password"
	msgServerError       = "Server error. Please try again later."
)

// AccountStore is the slice of the game database the site reads directly
type AccountStore interface {
	FindUsernameByEmail(ctx context.Context, email string) (string, error)
	FindCredentials(ctx context.Context, name string) (int64, string, error)
	ClearPIC(ctx context.Context, userID int64) error
}

type GameHandler struct {
	store  AccountStore
	client *gameapi.Client
}

func NewGameHandler(store AccountStore, client *gameapi.Client) *GameHandler {
	return &GameHandler{store: store, client: client}
}

// call forwards one request and records its result. A nil response means
// the game server was unreachable and a 500 has already been written.
func (h *GameHandler) call(w http.ResponseWriter, r *http.Request, endpoint, method, path string, body any, unreachable string) *gameapi.Response {
	resp, err := h.client.Do(r.Context(), method, path, body, nil)
	if err != nil {
		slog.Error("game API request failed", "endpoint", endpoint, "error", err)
		metrics.RecordGameAPI(endpoint, "unreachable")
		middleware.ErrorResponse(w, http.StatusInternalServerError, unreachable)
		return nil
	}

	result := "ok"
	if !resp.OK() {
		result = "rejected"
	}
	metrics.RecordGameAPI(endpoint, result)
	return resp
}

// Register handles POST /api/game/register
func (h *GameHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	resp := h.call(w, r, "register", http.MethodPost, "/users", req, msgUnreachable)
	if resp == nil {
		return
	}
	if !resp.OK() {
		middleware.ErrorResponse(w, resp.Status, resp.Message("Registration failed"))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Account created successfully!",
	})
}

// Login handles POST /api/game/login. The game server's reply, including
// the session token, is returned unchanged.
func (h *GameHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	resp := h.call(w, r, "login", http.MethodPost, "/login", req, msgUnreachable)
	if resp == nil {
		return
	}
	if resp.Status != http.StatusOK {
		middleware.ErrorResponse(w, resp.Status, resp.Message(msgBadCredentials))
		return
	}

	passthrough(w, resp)
}

// Logout handles DELETE /api/game/logout. It always succeeds for the
// client; the session dies on the game server either way.
func (h *GameHandler) Logout(w http.ResponseWriter, r *http.Request) {
	headers := map[string]string{"token": r.Header.Get("X-Auth-Token")}
	if _, err := h.client.Do(r.Context(), http.MethodDelete, "/login", nil, headers); err != nil {
		slog.Warn("game API logout failed", "error", err)
		metrics.RecordGameAPI("logout", "unreachable")
	} else {
		metrics.RecordGameAPI("logout", "ok")
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ForgotUsername handles POST /api/game/forgot-username
func (h *GameHandler) ForgotUsername(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotUsernameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	resp := h.call(w, r, "forgot-username", http.MethodPost, "/forgot-username", req, msgUnreachable)
	if resp == nil {
		return
	}
	if !resp.OK() {
		middleware.ErrorResponse(w, resp.Status, resp.Message("Request failed"))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: msgUsernameEmailSent,
	})
}

// ResetPasswordRequest handles POST /api/game/reset-password-request.
// The answer is the same whether or not the email is known.
func (h *GameHandler) ResetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	sent := models.SuccessResponse{Success: true, Message: msgResetEmailSent}

	var req models.ResetPasswordRequestRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.Email == "" {
		middleware.JSONResponse(w, http.StatusOK, sent)
		return
	}

	username, err := h.store.FindUsernameByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			slog.Error("failed to look up account by email", "error", err)
		}
		middleware.JSONResponse(w, http.StatusOK, sent)
		return
	}

	body := models.UpstreamResetRequest{Username: username}
	resp, err := h.client.Do(r.Context(), http.MethodPost, "/reset-password-request", body, nil)
	switch {
	case err != nil:
		slog.Error("game API reset-password-request failed", "error", err)
		metrics.RecordGameAPI("reset-password-request", "unreachable")
	case !resp.OK():
		slog.Warn("game API rejected reset-password-request", "status", resp.Status)
		metrics.RecordGameAPI("reset-password-request", "rejected")
	default:
		metrics.RecordGameAPI("reset-password-request", "ok")
	}

	middleware.JSONResponse(w, http.StatusOK, sent)
}

// ResetPassword handles POST /api/game/reset-password
func (h *GameHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.Key == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid reset request")
		return
	}

	username, token := splitResetKey(req.Key)
	body := models.UpstreamResetPassword{
		Username:     username,
		RequestToken: token,
		NewObj:       req.Password,
	}

	resp := h.call(w, r, "reset-password", http.MethodPost, "/reset-password", body, msgUnreachable)
	if resp == nil {
		return
	}
	if !resp.OK() {
		middleware.ErrorResponse(w, resp.Status, resp.Message("Reset failed. The link may have expired."))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Password reset successfully!",
	})
}

// splitResetKey splits "username:token". A key without a colon is used
// whole as the token.
func splitResetKey(key string) (username, token string) {
	username, token, found := strings.Cut(key, ":")
	if !found {
		return username, key
	}
	return username, token
}

// ResetPIC handles POST /api/game/reset-pic. It works on the game database
// directly since the game API has no PIC endpoint.
func (h *GameHandler) ResetPIC(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPICRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	userID, hash, err := h.store.FindCredentials(r.Context(), req.Username)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		slog.Error("failed to load credentials", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("password check failed", "error", err)
		}
		middleware.ErrorResponse(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	if err := h.store.ClearPIC(r.Context(), userID); err != nil {
		slog.Error("failed to clear PIC", "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgServerError)
		return
	}

	slog.Info("PIC reset", "user_id", userID)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "PIC reset successfully! You can set a new PIC when you log into the game.",
	})
}

// SkillChange handles GET /api/game/skillchange?jobid=
func (h *GameHandler) SkillChange(w http.ResponseWriter, r *http.Request) {
	path := "/skillchange?jobid=" + url.QueryEscape(r.URL.Query().Get("jobid"))

	resp := h.call(w, r, "skillchange", http.MethodGet, path, nil, "Unable to connect to game server.")
	if resp == nil {
		return
	}
	if resp.Status != http.StatusOK {
		middleware.ErrorResponse(w, resp.Status, "Failed to fetch skill info")
		return
	}

	passthrough(w, resp)
}

// ServerStatus handles GET /api/status. Any failure reads as offline.
func (h *GameHandler) ServerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.client.Status(r.Context())
	if err != nil {
		slog.Debug("game server status unavailable", "error", err)
		middleware.JSONResponse(w, http.StatusOK, models.OfflineStatus())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status.Public())
}

// passthrough relays an upstream 200 body. Non-JSON text is sent as a JSON
// string and an empty body as {}.
func passthrough(w http.ResponseWriter, resp *gameapi.Response) {
	switch {
	case len(strings.TrimSpace(string(resp.Body))) == 0:
		middleware.JSONResponse(w, http.StatusOK, map[string]any{})
	case json.Valid(resp.Body):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resp.Body)
	default:
		middleware.JSONResponse(w, http.StatusOK, string(resp.Body))
	}
}
