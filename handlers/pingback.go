// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/blossom-site/auth"
	"github.com/danielhkuo/blossom-site/cliparse"
	"github.com/danielhkuo/blossom-site/metrics"
	"github.com/danielhkuo/blossom-site/middleware"
	"github.com/danielhkuo/blossom-site/models"
	"github.com/danielhkuo/blossom-site/vote"
)

// MaxPingbackBytes caps a pingback body
const MaxPingbackBytes = 1 << 20

const pingbackStatusMessage = "GTop100 Vote Pingback endpoint is running. This endpoint accepts POST requests from GTop100."

// Plain-text pingback response bodies
const (
	bodyInternalError = "Internal server error"
	bodyInvalidKey    = "Invalid pingback key"
)

type PingbackHandler struct {
	processor *vote.Processor
	cfg       cliparse.Config
	opts      vote.NormalizeOptions
}

// NewPingbackHandler builds the vote pipeline on top of ledger. When audit
// logging is enabled and the ledger can record votes, every processed event
// is written to the vote log.
func NewPingbackHandler(ledger vote.Ledger, cfg cliparse.Config) *PingbackHandler {
	opts := []vote.ProcessorOption{
		vote.WithObserver(observeVote),
	}
	if rec, ok := ledger.(vote.Recorder); ok && cfg.VoteAuditLog {
		opts = append(opts, vote.WithRecorder(rec))
	}

	rewards := vote.Rewards{Points: cfg.VotePointsReward, Currency: cfg.VoteNXReward}

	return &PingbackHandler{
		processor: vote.NewProcessor(ledger, rewards, opts...),
		cfg:       cfg,
		opts:      vote.NormalizeOptions{MissingResultIsSuccess: cfg.VoteMissingResultSuccess},
	}
}

func observeVote(res vote.Result) {
	metrics.RecordVote(res.Outcome.String())
	metrics.RecordReward(res.Rewards.Points, res.Rewards.Currency)
}

// Status handles GET /api/vote/pingback
func (h *PingbackHandler) Status(w http.ResponseWriter, r *http.Request) {
	rewards := h.processor.Rewards()
	middleware.JSONResponse(w, http.StatusOK, models.PingbackStatusResponse{
		Status:  "active",
		Message: pingbackStatusMessage,
		Rewards: models.PingbackRewards{
			NX:         rewards.Currency,
			VotePoints: rewards.Points,
		},
	})
}

// Receive handles POST /api/vote/pingback
func (h *PingbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	receipt := uuid.NewString()
	shape := vote.ShapeForm
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		shape = vote.ShapeBatch
	}

	log := slog.With(
		"receipt", receipt,
		"shape", shape.String(),
		"notifier", middleware.GetClientIP(r),
	)

	reply := func(status int, body string) {
		metrics.RecordPingback(shape.String(), status)
		middleware.TextResponse(w, status, body)
	}

	// Checked before the body is read
	if h.cfg.PingbackKey == "" {
		log.Error("pingback rejected, key not configured")
		reply(http.StatusInternalServerError, bodyInternalError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxPingbackBytes)

	note, err := h.decode(r, shape)
	if err != nil {
		log.Warn("invalid pingback payload", "error", err)
		reply(http.StatusBadRequest, invalidBody(shape))
		return
	}

	if err := auth.ValidatePingbackKey(note.PingbackKey, h.cfg.PingbackKey); err != nil {
		if errors.Is(err, auth.ErrPingbackKeyNotConfigured) {
			reply(http.StatusInternalServerError, bodyInternalError)
			return
		}
		log.Warn("invalid pingback key")
		reply(http.StatusForbidden, bodyInvalidKey)
		return
	}

	log.Info("pingback accepted", "events", len(note.Events))

	// A notifier that hangs up must not abort half a batch
	ctx := vote.WithReceipt(context.WithoutCancel(r.Context()), receipt)
	results := h.processor.ProcessAll(ctx, note.Events)

	rewarded := 0
	for _, res := range results {
		if res.Outcome == vote.OutcomeRewarded {
			rewarded++
		}
	}
	log.Info("pingback processed", "events", len(results), "rewarded", rewarded)

	reply(http.StatusOK, processedBody(shape))
}

func (h *PingbackHandler) decode(r *http.Request, shape vote.Shape) (vote.Notification, error) {
	if shape == vote.ShapeBatch {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return vote.Notification{}, err
		}
		return vote.DecodeBatch(body, h.opts)
	}

	if err := r.ParseForm(); err != nil {
		return vote.Notification{}, err
	}
	return vote.DecodeForm(r.PostForm, h.opts), nil
}

func invalidBody(shape vote.Shape) string {
	if shape == vote.ShapeBatch {
		return "Invalid JSON data"
	}
	return "Invalid POST data"
}

func processedBody(shape vote.Shape) string {
	if shape == vote.ShapeBatch {
		return "JSON data processed successfully"
	}
	return "POST data processed successfully"
}
