// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// PaymentRequest is a payment declared by an operator.
type PaymentRequest struct {
	Amount     int64
	Alias      string
	OperatorID int64
	ProofRef   string
	Notes      string
}

// PaymentAmendment rewrites an existing payment. An empty Alias keeps the
// current recipient.
type PaymentAmendment struct {
	Amount int64
	Alias  string
	Notes  string
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}

// remaining reports what r can still take: the monthly remainder for
// recurring recipients, MaxAmount or 0 for one-time ones.
func remaining(ctx context.Context, calc CapacityCalculator, r model.Recipient, excludingPaymentID int64) (int64, error) {
	if r.IsRecurring {
		return calc.RemainingCapacity(ctx, r, excludingPaymentID)
	}
	lifetime, err := calc.ReceivedLifetime(ctx, r, excludingPaymentID)
	if err != nil {
		return 0, err
	}
	if lifetime > 0 {
		return 0, nil
	}
	return r.MaxAmount, nil
}

// FindEligible returns every active recipient that can take amount, ordered
// by priority then name.
func (e *Engine) FindEligible(ctx context.Context, amount int64) ([]model.Recipient, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	q := e.store.Queries()
	active, err := q.ListRecipients(ctx, true, true)
	if err != nil {
		return nil, err
	}
	calc := NewCapacityCalculator(q, e.clock.Now())
	var out []model.Recipient
	for _, r := range active {
		ok, err := calc.CanReceive(ctx, r, amount, 0)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SelectBest returns the first eligible recipient in priority order. There
// is no attempt to minimize leftover capacity.
func (e *Engine) SelectBest(ctx context.Context, amount int64) (model.Recipient, error) {
	eligible, err := e.FindEligible(ctx, amount)
	if err != nil {
		return model.Recipient{}, err
	}
	if len(eligible) == 0 {
		return model.Recipient{}, &NotFoundError{Kind: "eligible recipient for amount", Key: strconv.FormatInt(amount, 10)}
	}
	return eligible[0], nil
}

// lookupAllocatable loads an active recipient by alias. Inactive
// recipients are reported as not found.
func lookupAllocatable(ctx context.Context, q *db.Queries, alias string) (model.Recipient, error) {
	alias = strings.TrimSpace(alias)
	r, err := q.RecipientByAlias(ctx, alias)
	if err != nil {
		return model.Recipient{}, storeError(err, "recipient", alias)
	}
	if !r.IsActive {
		return model.Recipient{}, &NotFoundError{Kind: "active recipient", Key: alias}
	}
	return r, nil
}

// lockAllocatable locks recipient id and returns the row read under the
// lock. Fields read before the lock may be stale; callers check this row.
func lockAllocatable(ctx context.Context, q *db.Queries, id int64, alias string) (model.Recipient, error) {
	r, err := q.LockRecipient(ctx, id)
	if err != nil {
		return model.Recipient{}, storeError(err, "recipient", alias)
	}
	if !r.IsActive {
		return model.Recipient{}, &NotFoundError{Kind: "active recipient", Key: alias}
	}
	return r, nil
}

// checkCapacity fails with CapacityExceededError when r cannot take amount.
func checkCapacity(ctx context.Context, calc CapacityCalculator, r model.Recipient, amount, excludingPaymentID int64) error {
	ok, err := calc.CanReceive(ctx, r, amount, excludingPaymentID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	left, err := remaining(ctx, calc, r, excludingPaymentID)
	if err != nil {
		return err
	}
	return &CapacityExceededError{Alias: r.Alias, Remaining: left}
}

// ValidateAndAssign checks that the recipient named by alias can take
// amount and returns it. It does not reserve capacity; RecordPayment
// checks again under lock.
func (e *Engine) ValidateAndAssign(ctx context.Context, amount int64, alias string) (model.Recipient, error) {
	if err := validateAmount(amount); err != nil {
		return model.Recipient{}, err
	}
	q := e.store.Queries()
	r, err := lookupAllocatable(ctx, q, alias)
	if err != nil {
		return model.Recipient{}, err
	}
	if err := checkCapacity(ctx, NewCapacityCalculator(q, e.clock.Now()), r, amount, 0); err != nil {
		return model.Recipient{}, err
	}
	return r, nil
}

// RecordPayment persists a payment after re-checking capacity while holding
// a lock on the recipient, so concurrent payments cannot jointly exceed
// its limit. The monthly balance row and audit entry are written in the
// same transaction.
func (e *Engine) RecordPayment(ctx context.Context, req PaymentRequest) (model.Payment, error) {
	if err := validateAmount(req.Amount); err != nil {
		return model.Payment{}, err
	}
	if strings.TrimSpace(req.ProofRef) == "" {
		return model.Payment{}, &ValidationError{Field: "proof_ref", Reason: "a proof of payment is required"}
	}

	var out model.Payment
	err := e.inTx(ctx, "record payment", func(ctx context.Context, q *db.Queries) error {
		op, err := q.OperatorByID(ctx, req.OperatorID)
		if err != nil {
			return storeError(err, "operator", strconv.FormatInt(req.OperatorID, 10))
		}
		found, err := lookupAllocatable(ctx, q, req.Alias)
		if err != nil {
			return err
		}
		r, err := lockAllocatable(ctx, q, found.ID, found.Alias)
		if err != nil {
			return err
		}
		now := e.now()
		if err := checkCapacity(ctx, NewCapacityCalculator(q, now), r, req.Amount, 0); err != nil {
			return err
		}
		p := model.Payment{
			Reference:      e.newReference(),
			Amount:         req.Amount,
			RecipientID:    r.ID,
			RecipientAlias: r.Alias,
			OperatorID:     op.ID,
			ProofRef:       strings.TrimSpace(req.ProofRef),
			Notes:          strings.TrimSpace(req.Notes),
			CreatedAt:      now,
		}
		if err := q.InsertPayment(ctx, &p); err != nil {
			return storeError(err, "payment", p.Reference)
		}
		if err := e.refreshBalance(ctx, q, r.ID, now); err != nil {
			return err
		}
		if err := e.audit(ctx, q, op.Username, ActionPaymentCreated, fmt.Sprintf("ref=%s alias=%s amount=%d", p.Reference, r.Alias, p.Amount)); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	e.log.Info("payment recorded", "ref", out.Reference, "alias", out.RecipientAlias, "amount", out.Amount)
	return out, nil
}

// AmendPayment rewrites payment id under the same rules as RecordPayment.
// The payment's own amount is left out of the capacity check.
func (e *Engine) AmendPayment(ctx context.Context, id int64, am PaymentAmendment) (model.Payment, error) {
	if err := validateAmount(am.Amount); err != nil {
		return model.Payment{}, err
	}

	var out model.Payment
	err := e.inTx(ctx, "amend payment", func(ctx context.Context, q *db.Queries) error {
		p, err := q.PaymentByID(ctx, id)
		if err != nil {
			return storeError(err, "payment", strconv.FormatInt(id, 10))
		}
		alias := am.Alias
		if strings.TrimSpace(alias) == "" {
			alias = p.RecipientAlias
		}
		target, err := lookupAllocatable(ctx, q, alias)
		if err != nil {
			return err
		}
		// Lock in ID order so two amendments cannot deadlock each other.
		if p.RecipientID < target.ID {
			if _, err := q.LockRecipient(ctx, p.RecipientID); err != nil {
				return storeError(err, "recipient", p.RecipientAlias)
			}
		}
		if target, err = lockAllocatable(ctx, q, target.ID, target.Alias); err != nil {
			return err
		}
		if p.RecipientID > target.ID {
			if _, err := q.LockRecipient(ctx, p.RecipientID); err != nil {
				return storeError(err, "recipient", p.RecipientAlias)
			}
		}
		if err := checkCapacity(ctx, NewCapacityCalculator(q, e.now()), target, am.Amount, p.ID); err != nil {
			return err
		}

		previous := p
		p.Amount = am.Amount
		p.RecipientID = target.ID
		p.RecipientAlias = target.Alias
		p.Notes = strings.TrimSpace(am.Notes)
		if err := q.UpdatePayment(ctx, p); err != nil {
			return storeError(err, "payment", p.Reference)
		}
		at := p.CreatedAt.In(e.clock.Now().Location())
		if err := e.refreshBalance(ctx, q, previous.RecipientID, at); err != nil {
			return err
		}
		if target.ID != previous.RecipientID {
			if err := e.refreshBalance(ctx, q, target.ID, at); err != nil {
				return err
			}
		}
		details := fmt.Sprintf("ref=%s amount=%d->%d alias=%s->%s", p.Reference, previous.Amount, p.Amount, previous.RecipientAlias, p.RecipientAlias)
		if err := e.audit(ctx, q, "", ActionPaymentAmended, details); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}
	e.log.Info("payment amended", "ref", out.Reference, "alias", out.RecipientAlias, "amount", out.Amount)
	return out, nil
}

// refreshBalance recomputes the cached balance of recipientID for the
// calendar month containing at.
func (e *Engine) refreshBalance(ctx context.Context, q *db.Queries, recipientID int64, at time.Time) error {
	from, to := clock.MonthRange(at.Year(), at.Month(), at.Location())
	total, count, err := q.SumPayments(ctx, recipientID, db.PaymentWindow{From: from, To: to})
	if err != nil {
		return err
	}
	return q.SaveMonthlyBalance(ctx, model.MonthlyBalance{
		RecipientID:   recipientID,
		Year:          at.Year(),
		Month:         at.Month(),
		TotalReceived: total,
		PaymentCount:  count,
		LastUpdated:   e.now(),
	})
}

// GetPayment loads a payment by ID.
func (e *Engine) GetPayment(ctx context.Context, id int64) (model.Payment, error) {
	p, err := e.store.Queries().PaymentByID(ctx, id)
	if err != nil {
		return model.Payment{}, storeError(err, "payment", strconv.FormatInt(id, 10))
	}
	return p, nil
}

// ListPayments returns payments newest first, optionally restricted to one
// calendar month (month 0 lists all) and one recipient alias.
func (e *Engine) ListPayments(ctx context.Context, year int, month time.Month, alias string) ([]model.Payment, error) {
	q := e.store.Queries()
	var f db.PaymentFilter
	if year != 0 && month != 0 {
		f.From, f.To = clock.MonthRange(year, month, e.clock.Now().Location())
	}
	if alias != "" {
		r, err := q.RecipientByAlias(ctx, alias)
		if err != nil {
			return nil, storeError(err, "recipient", alias)
		}
		f.RecipientID = r.ID
	}
	return q.ListPayments(ctx, f)
}
