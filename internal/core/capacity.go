// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"time"

	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// CapacityCalculator answers how much a recipient has received and may still
// receive. It reads through a Queries, so inside a transaction it sees that
// transaction's writes. The month is fixed when the calculator is created.
type CapacityCalculator struct {
	q    *db.Queries
	from time.Time
	to   time.Time
}

// NewCapacityCalculator returns a calculator for the calendar month that
// contains now, in now's location.
func NewCapacityCalculator(q *db.Queries, now time.Time) CapacityCalculator {
	from, to := clock.MonthRange(now.Year(), now.Month(), now.Location())
	return CapacityCalculator{q: q, from: from, to: to}
}

// Capacity returns a calculator for the current month outside any
// transaction.
func (e *Engine) Capacity() CapacityCalculator {
	return NewCapacityCalculator(e.store.Queries(), e.clock.Now())
}

// ReceivedThisMonth sums this month's payments to r, leaving out
// excludingPaymentID when it is non-zero.
func (c CapacityCalculator) ReceivedThisMonth(ctx context.Context, r model.Recipient, excludingPaymentID int64) (int64, error) {
	total, _, err := c.q.SumPayments(ctx, r.ID, db.PaymentWindow{From: c.from, To: c.to, ExcludeID: excludingPaymentID})
	return total, err
}

// ReceivedLifetime sums every payment ever made to r.
func (c CapacityCalculator) ReceivedLifetime(ctx context.Context, r model.Recipient, excludingPaymentID int64) (int64, error) {
	total, _, err := c.q.SumPayments(ctx, r.ID, db.PaymentWindow{ExcludeID: excludingPaymentID})
	return total, err
}

// RemainingCapacity is MaxAmount minus this month's receipts. The result is
// not clamped and may be negative.
func (c CapacityCalculator) RemainingCapacity(ctx context.Context, r model.Recipient, excludingPaymentID int64) (int64, error) {
	received, err := c.ReceivedThisMonth(ctx, r, excludingPaymentID)
	if err != nil {
		return 0, err
	}
	return r.MaxAmount - received, nil
}

// CanReceive reports whether r may take amount right now.
func (c CapacityCalculator) CanReceive(ctx context.Context, r model.Recipient, amount, excludingPaymentID int64) (bool, error) {
	if !r.IsActive {
		return false, nil
	}
	if !r.IsRecurring {
		lifetime, err := c.ReceivedLifetime(ctx, r, excludingPaymentID)
		if err != nil {
			return false, err
		}
		return canReceiveOneTime(r, lifetime, amount), nil
	}
	remaining, err := c.RemainingCapacity(ctx, r, excludingPaymentID)
	if err != nil {
		return false, err
	}
	return remaining >= amount, nil
}

// Status derives the recipient's state from stored payments and the
// calculator's month. It never writes.
func (c CapacityCalculator) Status(ctx context.Context, r model.Recipient) (model.Status, error) {
	if !r.IsActive {
		return model.StatusInactive, nil
	}
	if !r.IsRecurring {
		lifetime, err := c.ReceivedLifetime(ctx, r, 0)
		if err != nil {
			return "", err
		}
		return oneTimeStatus(lifetime), nil
	}
	remaining, err := c.RemainingCapacity(ctx, r, 0)
	if err != nil {
		return "", err
	}
	return recurringStatus(remaining), nil
}

// SuggestMaxPayment is the largest amount r can take right now: 0 when
// inactive or exhausted, MaxAmount for an unused one-time recipient and the
// remaining monthly capacity otherwise.
func (c CapacityCalculator) SuggestMaxPayment(ctx context.Context, r model.Recipient) (int64, error) {
	if !r.IsActive {
		return 0, nil
	}
	if !r.IsRecurring {
		lifetime, err := c.ReceivedLifetime(ctx, r, 0)
		if err != nil {
			return 0, err
		}
		if lifetime > 0 {
			return 0, nil
		}
		return r.MaxAmount, nil
	}
	remaining, err := c.RemainingCapacity(ctx, r, 0)
	if err != nil {
		return 0, err
	}
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CapacityPercentage is the share of MaxAmount received this month.
func (c CapacityCalculator) CapacityPercentage(ctx context.Context, r model.Recipient) (float64, error) {
	received, err := c.ReceivedThisMonth(ctx, r, 0)
	if err != nil {
		return 0, err
	}
	return capacityPercentage(r.MaxAmount, received), nil
}

func canReceiveOneTime(r model.Recipient, lifetimeReceived, amount int64) bool {
	return lifetimeReceived == 0 && amount <= r.MaxAmount
}

func oneTimeStatus(lifetimeReceived int64) model.Status {
	if lifetimeReceived > 0 {
		return model.StatusCompletedOneTime
	}
	return model.StatusAvailableOneTime
}

func recurringStatus(remaining int64) model.Status {
	if remaining <= 0 {
		return model.StatusCompletedMonthly
	}
	return model.StatusAvailable
}

func capacityPercentage(maxAmount, received int64) float64 {
	if maxAmount <= 0 {
		return 100
	}
	return float64(received) / float64(maxAmount) * 100
}
