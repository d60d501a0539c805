// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/paydesk/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// PaymentWindow restricts payment aggregates to [From, To). Zero times leave
// that side open. ExcludeID leaves one payment out, which is how an amended
// payment is kept from counting against itself.
type PaymentWindow struct {
	From      time.Time
	To        time.Time
	ExcludeID int64
}

func (w PaymentWindow) apply(where []string, args []any) ([]string, []any) {
	if !w.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, w.From.UTC())
	}
	if !w.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, w.To.UTC())
	}
	if w.ExcludeID != 0 {
		where = append(where, "id <> ?")
		args = append(args, w.ExcludeID)
	}
	return where, args
}

// sumExpr wraps SUM so that every engine returns an integer: PostgreSQL
// yields NUMERIC and MySQL DECIMAL for SUM over BIGINT.
func (q *Queries) sumExpr(col string) string {
	switch q.dialect() {
	case dialect.PG:
		return fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS BIGINT)", col)
	case dialect.MySQL:
		return fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS SIGNED)", col)
	default:
		return fmt.Sprintf("COALESCE(SUM(%s), 0)", col)
	}
}

// SumPayments returns the total amount and number of payments made to a
// recipient inside the window.
func (q *Queries) SumPayments(ctx context.Context, recipientID int64, w PaymentWindow) (int64, int, error) {
	where, args := w.apply([]string{"recipient_id = ?"}, []any{recipientID})
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM payments WHERE %s", q.sumExpr("amount"), strings.Join(where, " AND "))
	var total int64
	var count int
	if err := q.idb.NewRaw(query, args...).Scan(ctx, &total, &count); err != nil {
		return 0, 0, fmt.Errorf("sum payments for recipient %d: %w", recipientID, err)
	}
	return total, count, nil
}

// CountPaymentsForRecipient returns how many payments reference recipientID.
func (q *Queries) CountPaymentsForRecipient(ctx context.Context, recipientID int64) (int, error) {
	return q.idb.NewSelect().Model((*PaymentModel)(nil)).Where("p.recipient_id = ?", recipientID).Count(ctx)
}

// PaymentFilter selects payments for listing. Zero values mean no
// restriction.
type PaymentFilter struct {
	RecipientID int64
	OperatorID  int64
	From        time.Time
	To          time.Time
	Limit       int
}

func (q *Queries) selectPayments(dest any) *bun.SelectQuery {
	return q.idb.NewSelect().Model(dest).
		ColumnExpr("p.*").
		ColumnExpr("r.alias AS recipient_alias").
		Join("LEFT JOIN recipients AS r ON r.id = p.recipient_id")
}

// ListPayments returns payments, newest first.
func (q *Queries) ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	var rows []PaymentModel
	sel := q.selectPayments(&rows)
	if f.RecipientID != 0 {
		sel = sel.Where("p.recipient_id = ?", f.RecipientID)
	}
	if f.OperatorID != 0 {
		sel = sel.Where("p.operator_id = ?", f.OperatorID)
	}
	if !f.From.IsZero() {
		sel = sel.Where("p.created_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		sel = sel.Where("p.created_at < ?", f.To.UTC())
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}
	if err := sel.OrderExpr("p.created_at DESC, p.id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, paymentToModel(m))
	}
	return out, nil
}

// PaymentByID loads a payment with its recipient alias.
func (q *Queries) PaymentByID(ctx context.Context, id int64) (model.Payment, error) {
	var m PaymentModel
	if err := q.selectPayments(&m).Where("p.id = ?", id).Limit(1).Scan(ctx); err != nil {
		return model.Payment{}, MapDBError(err)
	}
	return paymentToModel(m), nil
}

// PaymentByReference loads a payment by its public reference.
func (q *Queries) PaymentByReference(ctx context.Context, ref string) (model.Payment, error) {
	var m PaymentModel
	if err := q.selectPayments(&m).Where("p.reference = ?", ref).Limit(1).Scan(ctx); err != nil {
		return model.Payment{}, MapDBError(err)
	}
	return paymentToModel(m), nil
}

// InsertPayment stores p and sets its generated ID.
func (q *Queries) InsertPayment(ctx context.Context, p *model.Payment) error {
	m := paymentFromModel(*p)
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	p.ID = m.ID
	return nil
}

// UpdatePayment rewrites the mutable attributes of a payment: amount,
// recipient, proof reference and notes.
func (q *Queries) UpdatePayment(ctx context.Context, p model.Payment) error {
	m := paymentFromModel(p)
	res, err := q.idb.NewUpdate().Model(&m).
		Column("amount", "recipient_id", "proof_ref", "notes").
		WherePK().
		Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}

// PaymentTotals aggregates every payment inside [from, to).
func (q *Queries) PaymentTotals(ctx context.Context, from, to time.Time) (model.MonthlyTotals, error) {
	var out model.MonthlyTotals
	query := fmt.Sprintf("SELECT %s, COUNT(*), COUNT(DISTINCT recipient_id), COUNT(DISTINCT operator_id) FROM payments WHERE created_at >= ? AND created_at < ?", q.sumExpr("amount"))
	err := q.idb.NewRaw(query, from.UTC(), to.UTC()).
		Scan(ctx, &out.TotalAmount, &out.PaymentCount, &out.UniqueRecipients, &out.UniqueOperators)
	if err != nil {
		return model.MonthlyTotals{}, fmt.Errorf("payment totals: %w", err)
	}
	return out, nil
}

// RecipientsPaidBetween lists the distinct recipients with at least one
// payment inside [from, to).
func (q *Queries) RecipientsPaidBetween(ctx context.Context, from, to time.Time) ([]int64, error) {
	var ids []int64
	err := QueryRawInto(ctx, q.idb, &ids,
		"SELECT DISTINCT recipient_id FROM payments WHERE created_at >= ? AND created_at < ? ORDER BY recipient_id",
		from.UTC(), to.UTC())
	return ids, err
}
