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

// ErrNotMonthStart is returned by Rollover when it is not the 1st of the
// month and Force was not given.
var ErrNotMonthStart = errors.New("not the first day of the month")

// RolloverOptions controls Rollover.
type RolloverOptions struct {
	DryRun bool
	Force  bool
}

// RolloverLine describes one recurring recipient at the month boundary.
type RolloverLine struct {
	Alias              string
	HasPreviousBalance bool
	PreviousAmount     int64
	CurrentReceived    int64
	Remaining          int64
	MaxAmount          int64
}

// RolloverReport is the outcome of a monthly rollover.
type RolloverReport struct {
	Year                   int
	Month                  time.Month
	DryRun                 bool
	Lines                  []RolloverLine
	RecipientsWithBalances int
	TotalPreviousAmount    int64
	RecipientsReset        int
	Summary                model.Summary
}

// Rollover reports the month change for active recurring recipients.
// Capacity resets on its own because it is computed per calendar month, so
// this only rebuilds last month's balance cache and writes an audit entry;
// with DryRun nothing is written.
func (e *Engine) Rollover(ctx context.Context, opts RolloverOptions) (RolloverReport, error) {
	now := e.clock.Now()
	rep := RolloverReport{Year: now.Year(), Month: now.Month(), DryRun: opts.DryRun}
	if now.Day() != 1 && !opts.Force {
		return rep, ErrNotMonthStart
	}
	prevYear, prevMonth := clock.PreviousMonth(now.Year(), now.Month())

	build := func(ctx context.Context, q *db.Queries) error {
		if !opts.DryRun {
			if _, err := e.rebuildBalances(ctx, q, prevYear, prevMonth); err != nil {
				return err
			}
		}
		active, err := q.ListRecipients(ctx, true, true)
		if err != nil {
			return err
		}
		calc := NewCapacityCalculator(q, now)
		rep.Lines = rep.Lines[:0]
		rep.RecipientsWithBalances, rep.TotalPreviousAmount, rep.RecipientsReset = 0, 0, 0
		for _, r := range active {
			if !r.IsRecurring {
				continue
			}
			line := RolloverLine{Alias: r.Alias, MaxAmount: r.MaxAmount}
			b, err := q.MonthlyBalance(ctx, r.ID, prevYear, int(prevMonth))
			switch {
			case err == nil:
				line.HasPreviousBalance = true
				line.PreviousAmount = b.TotalReceived
				rep.RecipientsWithBalances++
				rep.TotalPreviousAmount += b.TotalReceived
			case !errors.Is(err, db.ErrNotFound):
				return err
			}
			if line.CurrentReceived, err = calc.ReceivedThisMonth(ctx, r, 0); err != nil {
				return err
			}
			line.Remaining = r.MaxAmount - line.CurrentReceived
			rep.Lines = append(rep.Lines, line)
			if !opts.DryRun {
				rep.RecipientsReset++
			}
		}
		if rep.Summary, err = summarize(ctx, q, calc); err != nil {
			return err
		}
		if opts.DryRun {
			return nil
		}
		return e.audit(ctx, q, "", ActionMonthlyRollover, fmt.Sprintf("period=%04d-%02d recipients=%d previous_total=%d", prevYear, int(prevMonth), rep.RecipientsReset, rep.TotalPreviousAmount))
	}

	var err error
	if opts.DryRun {
		err = build(ctx, e.store.Queries())
	} else {
		err = e.inTx(ctx, "monthly rollover", build)
	}
	if err != nil {
		return RolloverReport{}, err
	}
	if !opts.DryRun {
		e.log.Info("monthly rollover processed", "period", fmt.Sprintf("%04d-%02d", prevYear, int(prevMonth)), "recipients", rep.RecipientsReset)
	}
	return rep, nil
}

// DefaultProbeAmounts are the amounts Probe tries when none are given.
var DefaultProbeAmounts = []int64{1000, 5000, 10000, 25000, 50000, 75000}

// ProbeCandidate is an eligible recipient with its remaining capacity.
type ProbeCandidate struct {
	Alias     string
	Remaining int64
}

// ProbeResult is the selection outcome for one amount. Best is nil when no
// recipient can take the amount.
type ProbeResult struct {
	Amount       int64
	Eligible     []ProbeCandidate
	Best         *ProbeCandidate
	Waste        int64
	WastePercent float64
}

// ProbeReport is a dry run of recipient selection.
type ProbeReport struct {
	Recipients []RecipientReport
	Results    []ProbeResult
	Summary    model.Summary
}

// Probe runs the selection for each amount without recording anything and
// reports, for the winner, how much capacity would be left over.
func (e *Engine) Probe(ctx context.Context, amounts []int64) (ProbeReport, error) {
	if len(amounts) == 0 {
		amounts = DefaultProbeAmounts
	}
	var rep ProbeReport
	var err error
	if rep.Recipients, err = e.DescribeRecipients(ctx, true); err != nil {
		return rep, err
	}
	q := e.store.Queries()
	calc := NewCapacityCalculator(q, e.clock.Now())
	for _, amount := range amounts {
		eligible, err := e.FindEligible(ctx, amount)
		if err != nil {
			return rep, err
		}
		res := ProbeResult{Amount: amount}
		for _, r := range eligible {
			left, err := remaining(ctx, calc, r, 0)
			if err != nil {
				return rep, err
			}
			res.Eligible = append(res.Eligible, ProbeCandidate{Alias: r.Alias, Remaining: left})
		}
		if len(res.Eligible) > 0 {
			best := res.Eligible[0]
			res.Best = &best
			res.Waste = best.Remaining - amount
			if best.Remaining > 0 {
				res.WastePercent = float64(res.Waste) / float64(best.Remaining) * 100
			}
		}
		rep.Results = append(rep.Results, res)
	}
	if rep.Summary, err = summarize(ctx, q, calc); err != nil {
		return rep, err
	}
	return rep, nil
}
