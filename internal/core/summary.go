// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// RecipientReport is a recipient together with its derived capacity
// figures for the current month.
type RecipientReport struct {
	Recipient         model.Recipient
	Status            model.Status
	ReceivedThisMonth int64
	Remaining         int64
	SuggestedMax      int64
	CapacityPercent   float64
}

func describe(ctx context.Context, calc CapacityCalculator, r model.Recipient) (RecipientReport, error) {
	rep := RecipientReport{Recipient: r}
	var err error
	if rep.Status, err = calc.Status(ctx, r); err != nil {
		return rep, err
	}
	if rep.ReceivedThisMonth, err = calc.ReceivedThisMonth(ctx, r, 0); err != nil {
		return rep, err
	}
	rep.Remaining = r.MaxAmount - rep.ReceivedThisMonth
	if rep.SuggestedMax, err = calc.SuggestMaxPayment(ctx, r); err != nil {
		return rep, err
	}
	rep.CapacityPercent = capacityPercentage(r.MaxAmount, rep.ReceivedThisMonth)
	return rep, nil
}

// DescribeRecipients reports every recipient in priority order.
func (e *Engine) DescribeRecipients(ctx context.Context, activeOnly bool) ([]RecipientReport, error) {
	q := e.store.Queries()
	rs, err := q.ListRecipients(ctx, activeOnly, true)
	if err != nil {
		return nil, err
	}
	calc := NewCapacityCalculator(q, e.clock.Now())
	out := make([]RecipientReport, 0, len(rs))
	for _, r := range rs {
		rep, err := describe(ctx, calc, r)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

// DescribeRecipient reports a single recipient.
func (e *Engine) DescribeRecipient(ctx context.Context, alias string) (RecipientReport, error) {
	r, err := e.GetRecipientByAlias(ctx, alias)
	if err != nil {
		return RecipientReport{}, err
	}
	return describe(ctx, e.Capacity(), r)
}

// Summary aggregates recipient states for the current month. Capacity and
// usage only count active recurring recipients.
func (e *Engine) Summary(ctx context.Context) (model.Summary, error) {
	q := e.store.Queries()
	return summarize(ctx, q, NewCapacityCalculator(q, e.clock.Now()))
}

func summarize(ctx context.Context, q *db.Queries, calc CapacityCalculator) (model.Summary, error) {
	out := model.Summary{CountsByStatus: map[model.Status]int{}}
	var err error
	if out.TotalRecipients, err = q.CountRecipients(ctx, false); err != nil {
		return out, err
	}
	active, err := q.ListRecipients(ctx, true, true)
	if err != nil {
		return out, err
	}
	out.ActiveRecipients = len(active)
	for _, r := range active {
		status, err := calc.Status(ctx, r)
		if err != nil {
			return out, err
		}
		out.CountsByStatus[status]++
		if r.IsRecurring {
			received, err := calc.ReceivedThisMonth(ctx, r, 0)
			if err != nil {
				return out, err
			}
			out.TotalCapacity += r.MaxAmount
			out.TotalUsed += received
		}
		switch {
		case status.IsCompleted():
			out.CompletedThisMonth++
		case status.IsAvailable():
			out.AvailableRecipients++
		}
	}
	return out, nil
}

// MonthlyTotals aggregates all payments of a calendar month in the
// engine's zone.
func (e *Engine) MonthlyTotals(ctx context.Context, year int, month time.Month) (model.MonthlyTotals, error) {
	if month < time.January || month > time.December {
		return model.MonthlyTotals{}, &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	from, to := clock.MonthRange(year, month, e.clock.Now().Location())
	totals, err := e.store.Queries().PaymentTotals(ctx, from, to)
	if err != nil {
		return model.MonthlyTotals{}, err
	}
	totals.Year = year
	totals.Month = int(month)
	return totals, nil
}

// MonthlyBalance returns the cached balance row of a recipient. Missing
// rows read as zero.
func (e *Engine) MonthlyBalance(ctx context.Context, alias string, year int, month time.Month) (model.MonthlyBalance, error) {
	r, err := e.GetRecipientByAlias(ctx, alias)
	if err != nil {
		return model.MonthlyBalance{}, err
	}
	b, err := e.store.Queries().MonthlyBalance(ctx, r.ID, year, int(month))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.MonthlyBalance{RecipientID: r.ID, Year: year, Month: month}, nil
		}
		return model.MonthlyBalance{}, err
	}
	return b, nil
}

// RebuildBalances recomputes the cached balance rows of every recipient paid
// in the given month and returns how many rows were written.
func (e *Engine) RebuildBalances(ctx context.Context, year int, month time.Month) (int, error) {
	var n int
	err := e.inTx(ctx, "rebuild balances", func(ctx context.Context, q *db.Queries) error {
		var err error
		n, err = e.rebuildBalances(ctx, q, year, month)
		if err != nil {
			return err
		}
		return e.audit(ctx, q, "", ActionBalancesRebuilt, fmt.Sprintf("year=%d month=%d rows=%d", year, int(month), n))
	})
	return n, err
}

func (e *Engine) rebuildBalances(ctx context.Context, q *db.Queries, year int, month time.Month) (int, error) {
	loc := e.clock.Now().Location()
	from, to := clock.MonthRange(year, month, loc)
	ids, err := q.RecipientsPaidBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := e.refreshBalance(ctx, q, id, from); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
