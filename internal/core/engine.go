// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core implements the allocation engine: recipient lifecycle with
// gap-free priorities, capacity accounting, recipient selection and payment
// recording. Every mutation runs in one database transaction together with
// its priority range shift, balance cache refresh and audit entry.
package core

import (
	"context"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/logging"
)

// Engine is the entry point used by the CLI and other collaborators. It is
// safe for concurrent use; all shared state lives in the store.
type Engine struct {
	store        *db.Store
	clock        clock.Clock
	log          *clog.Logger
	newReference func() string
	actor        string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock injects the time source used for month bucketing and
// timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger replaces the engine logger.
func WithLogger(l *clog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithActor sets the name recorded in audit entries for administrative
// actions.
func WithActor(actor string) Option {
	return func(e *Engine) { e.actor = actor }
}

// WithReferenceGenerator replaces the payment reference generator.
func WithReferenceGenerator(fn func() string) Option {
	return func(e *Engine) { e.newReference = fn }
}

// NewEngine returns an Engine over store. Defaults: the system clock in the
// local zone, the shared logger and uuid payment references.
func NewEngine(store *db.Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		clock:        clock.System{Loc: time.Local},
		log:          logging.With("component", "engine"),
		newReference: func() string { return uuid.NewString() },
		actor:        "system",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() *db.Store { return e.store }

// Clock returns the engine's time source.
func (e *Engine) Clock() clock.Clock { return e.clock }

// now returns the current time at the precision every engine stores.
func (e *Engine) now() time.Time {
	return e.clock.Now().Truncate(time.Microsecond)
}

// inTx runs fn in a transaction. Typed business errors pass through
// untouched. A retryable storage error triggers exactly one more attempt;
// anything left over is reported as a TransactionError.
func (e *Engine) inTx(ctx context.Context, op string, fn func(ctx context.Context, q *db.Queries) error) error {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		err = e.store.RunInTx(ctx, fn)
		if err == nil || isBusinessError(err) {
			return err
		}
		if attempt == 1 && db.IsRetryable(err) {
			e.log.Warn("transaction conflict, retrying", "op", op, "err", err)
			continue
		}
		break
	}
	return &TransactionError{Op: op, Err: err}
}

// audit records an action in the same transaction as the change it
// describes.
func (e *Engine) audit(ctx context.Context, q *db.Queries, actor, action, details string) error {
	if actor == "" {
		actor = e.actor
	}
	return q.LogAction(ctx, e.now(), actor, action, details)
}

// Audit actions.
const (
	ActionRecipientCreated   = "RECIPIENT_CREATED"
	ActionRecipientUpdated   = "RECIPIENT_UPDATED"
	ActionRecipientMoved     = "RECIPIENT_MOVED"
	ActionRecipientDeleted   = "RECIPIENT_DELETED"
	ActionPaymentCreated     = "PAYMENT_CREATED"
	ActionPaymentAmended     = "PAYMENT_AMENDED"
	ActionBankCreated        = "BANK_CREATED"
	ActionBankDeleted        = "BANK_DELETED"
	ActionOperatorCreated    = "OPERATOR_CREATED"
	ActionMonthlyRollover    = "MONTHLY_ROLLOVER"
	ActionBalancesRebuilt    = "BALANCES_REBUILT"
	ActionRestore            = "RESTORE"
	ActionPrioritiesRepaired = "PRIORITIES_REPAIRED"
)
