// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/paydesk/internal/model"
)

// SaveMonthlyBalance replaces the stored balance for (recipient, year,
// month). Delete then insert keeps the statement portable across engines
// that disagree on upsert syntax.
func (q *Queries) SaveMonthlyBalance(ctx context.Context, b model.MonthlyBalance) error {
	if _, err := ExecRaw(ctx, q.idb,
		"DELETE FROM monthly_balances WHERE recipient_id = ? AND year = ? AND month = ?",
		b.RecipientID, b.Year, int(b.Month)); err != nil {
		return MapDBError(err)
	}
	m := MonthlyBalanceModel{
		RecipientID:   b.RecipientID,
		Year:          b.Year,
		Month:         int(b.Month),
		TotalReceived: b.TotalReceived,
		PaymentCount:  b.PaymentCount,
		LastUpdated:   b.LastUpdated.UTC(),
	}
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

// MonthlyBalance loads the stored balance for one recipient and month.
func (q *Queries) MonthlyBalance(ctx context.Context, recipientID int64, year, month int) (model.MonthlyBalance, error) {
	var m MonthlyBalanceModel
	err := q.idb.NewSelect().Model(&m).
		Where("mb.recipient_id = ?", recipientID).
		Where("mb.year = ?", year).
		Where("mb.month = ?", month).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return model.MonthlyBalance{}, MapDBError(err)
	}
	return balanceToModel(m), nil
}

// ListMonthlyBalances returns stored balances for a month, or all balances
// when year is 0.
func (q *Queries) ListMonthlyBalances(ctx context.Context, year, month int) ([]model.MonthlyBalance, error) {
	var rows []MonthlyBalanceModel
	sel := q.idb.NewSelect().Model(&rows)
	if year != 0 {
		sel = sel.Where("mb.year = ?", year).Where("mb.month = ?", month)
	}
	if err := sel.OrderExpr("mb.year, mb.month, mb.recipient_id").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.MonthlyBalance, 0, len(rows))
	for _, m := range rows {
		out = append(out, balanceToModel(m))
	}
	return out, nil
}
