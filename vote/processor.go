// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Default reward amounts credited per successful vote.
const (
	DefaultPointsReward   = 3
	DefaultCurrencyReward = 5000
)

// Ledger is the store holding user identities and the two reward balances.
type Ledger interface {
	FindUserIDByName(ctx context.Context, name string) (int64, error)
	IncrementPoints(ctx context.Context, userID int64, amount int) error
	IncrementCurrency(ctx context.Context, userID int64, amount int) error
}

// Crediter is implemented by ledgers that can apply both increments in a
// single transaction. The processor prefers it when available.
type Crediter interface {
	CreditVote(ctx context.Context, userID int64, points, currency int) error
}

// Recorder persists one row per processed event for offline reconciliation.
type Recorder interface {
	RecordVote(ctx context.Context, rec Record) error
}

// Rewards are the fixed amounts credited for one successful vote.
type Rewards struct {
	Points   int
	Currency int
}

// Outcome is the terminal state of one processed event.
type Outcome int

const (
	OutcomeNoUsername Outcome = iota + 1
	OutcomeFailed
	OutcomeUserNotFound
	OutcomeRewarded
	// OutcomeErrored covers store failures during lookup or crediting.
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoUsername:
		return "no_username"
	case OutcomeFailed:
		return "failed"
	case OutcomeUserNotFound:
		return "user_not_found"
	case OutcomeRewarded:
		return "rewarded"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Result describes what happened to one event.
type Result struct {
	Event   Event
	Outcome Outcome
	UserID  int64
	Rewards Rewards // amounts actually credited
	Err     error
}

// Record is the audit row written by a Recorder.
type Record struct {
	ID               string
	Receipt          string
	SourceIP         string
	ResultCode       int
	Reason           string
	Username         string
	UserID           int64
	Outcome          string
	PointsCredited   int
	CurrencyCredited int
	CreatedAt        time.Time
}

// Processor applies the reward decision to normalized events. It holds no
// per-event state and is safe for concurrent use.
type Processor struct {
	ledger   Ledger
	rewards  Rewards
	recorder Recorder
	logger   *slog.Logger
	observe  func(Result)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRecorder writes an audit row for every processed event.
func WithRecorder(r Recorder) ProcessorOption {
	return func(p *Processor) {
		p.recorder = r
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every event, e.g. metrics.
func WithObserver(fn func(Result)) ProcessorOption {
	return func(p *Processor) {
		p.observe = fn
	}
}

// NewProcessor creates a Processor. Non-positive reward amounts fall back to
// the defaults.
func NewProcessor(ledger Ledger, rewards Rewards, opts ...ProcessorOption) *Processor {
	if rewards.Points <= 0 {
		rewards.Points = DefaultPointsReward
	}
	if rewards.Currency <= 0 {
		rewards.Currency = DefaultCurrencyReward
	}

	p := &Processor{
		ledger:  ledger,
		rewards: rewards,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rewards returns the configured reward amounts.
func (p *Processor) Rewards() Rewards {
	return p.rewards
}

// ProcessAll runs every event in order. A failing event never stops the
// ones after it.
func (p *Processor) ProcessAll(ctx context.Context, events []Event) []Result {
	results := make([]Result, 0, len(events))
	for _, ev := range events {
		results = append(results, p.Process(ctx, ev))
	}
	return results
}

// Process decides whether ev earns a reward and credits it.
func (p *Processor) Process(ctx context.Context, ev Event) Result {
	log := p.logger.With(
		"receipt", ReceiptFrom(ctx),
		"ip", ev.SourceIP,
		"result", ev.ResultCode,
		"reason", ev.Reason,
		"username", ev.Username,
	)

	res := p.decide(ctx, ev, log)
	p.record(ctx, res, log)
	if p.observe != nil {
		p.observe(res)
	}
	return res
}

func (p *Processor) decide(ctx context.Context, ev Event, log *slog.Logger) Result {
	res := Result{Event: ev}

	if ev.Username == "" {
		log.Info("vote received without username")
		res.Outcome = OutcomeNoUsername
		return res
	}

	log.Info("vote received")

	if !ev.Successful() {
		log.Info("vote failed, no reward")
		res.Outcome = OutcomeFailed
		return res
	}

	userID, err := p.ledger.FindUserIDByName(ctx, ev.Username)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("vote reward skipped, user not found")
		res.Outcome = OutcomeUserNotFound
		return res
	}
	if err != nil {
		log.Error("vote user lookup failed", "error", err)
		res.Outcome = OutcomeErrored
		res.Err = err
		return res
	}
	res.UserID = userID

	credited, err := p.credit(ctx, userID)
	res.Rewards = credited
	if err != nil {
		log.Error("vote reward failed",
			"user_id", userID,
			"points_credited", credited.Points,
			"currency_credited", credited.Currency,
			"error", err,
		)
		res.Outcome = OutcomeErrored
		res.Err = err
		return res
	}

	log.Info("vote rewards given",
		"user_id", userID,
		"nx", credited.Currency,
		"vote_points", credited.Points,
	)
	res.Outcome = OutcomeRewarded
	return res
}

// credit applies both increments and reports what was actually applied.
func (p *Processor) credit(ctx context.Context, userID int64) (Rewards, error) {
	if c, ok := p.ledger.(Crediter); ok {
		if err := c.CreditVote(ctx, userID, p.rewards.Points, p.rewards.Currency); err != nil {
			return Rewards{}, err
		}
		return p.rewards, nil
	}

	// Two independent statements: a failure on the second leaves the first applied.
	var credited Rewards
	if err := p.ledger.IncrementPoints(ctx, userID, p.rewards.Points); err != nil {
		return credited, fmt.Errorf("increment points: %w", err)
	}
	credited.Points = p.rewards.Points

	if err := p.ledger.IncrementCurrency(ctx, userID, p.rewards.Currency); err != nil {
		return credited, fmt.Errorf("increment currency: %w", err)
	}
	credited.Currency = p.rewards.Currency
	return credited, nil
}

func (p *Processor) record(ctx context.Context, res Result, log *slog.Logger) {
	if p.recorder == nil {
		return
	}

	rec := Record{
		ID:               uuid.NewString(),
		Receipt:          ReceiptFrom(ctx),
		SourceIP:         res.Event.SourceIP,
		ResultCode:       res.Event.ResultCode,
		Reason:           res.Event.Reason,
		Username:         res.Event.Username,
		UserID:           res.UserID,
		Outcome:          res.Outcome.String(),
		PointsCredited:   res.Rewards.Points,
		CurrencyCredited: res.Rewards.Currency,
		CreatedAt:        time.Now().UTC(),
	}
	if err := p.recorder.RecordVote(ctx, rec); err != nil {
		log.Warn("failed to record vote", "error", err)
	}
}

type receiptKey struct{}

// WithReceipt attaches the notification's receipt id to ctx so every event
// log line and audit row can be tied back to one inbound request.
func WithReceipt(ctx context.Context, receipt string) context.Context {
	return context.WithValue(ctx, receiptKey{}, receipt)
}

// ReceiptFrom returns the receipt id stored by WithReceipt, or "".
func ReceiptFrom(ctx context.Context) string {
	s, _ := ctx.Value(receiptKey{}).(string)
	return s
}
