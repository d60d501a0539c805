// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/paydesk/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// recipientTableLockKey is the pg_advisory_xact_lock key guarding every
// mutation of the priority sequence.
const recipientTableLockKey int64 = 0x7061796465736b01

// LockRecipientTable serializes writers that mutate priority_order. It must
// be called inside RunInTx; the lock is released when the transaction ends.
func (q *Queries) LockRecipientTable(ctx context.Context) error {
	var err error
	switch q.dialect() {
	case dialect.PG:
		_, err = ExecRaw(ctx, q.idb, "SELECT pg_advisory_xact_lock(?)", recipientTableLockKey)
	case dialect.MySQL:
		var ids []int64
		err = QueryRawInto(ctx, q.idb, &ids, "SELECT id FROM recipients FOR UPDATE")
	default:
		// SQLite transactions begin IMMEDIATE; a write makes the lock explicit
		// for connections opened without _txlock.
		_, err = ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = priority_order WHERE id = -1")
	}
	if err != nil {
		return fmt.Errorf("lock recipients: %w", err)
	}
	return nil
}

// LockRecipient takes a row lock on a single recipient so that concurrent
// payments against it serialize, and returns the row as read under that
// lock. It must be called inside RunInTx. It returns ErrNotFound when the
// recipient no longer exists.
func (q *Queries) LockRecipient(ctx context.Context, id int64) (model.Recipient, error) {
	switch q.dialect() {
	case dialect.PG, dialect.MySQL:
		// A locking read sees the latest committed row, not the transaction
		// snapshot. The bank join stays out of it: postgres refuses FOR UPDATE
		// on the nullable side of an outer join.
		var m RecipientModel
		if err := q.idb.NewSelect().Model(&m).Where("r.id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			return model.Recipient{}, fmt.Errorf("lock recipient %d: %w", id, MapDBError(err))
		}
		r := recipientToModel(m)
		if r.BankID != 0 {
			b, err := q.BankByID(ctx, r.BankID)
			if err != nil {
				return model.Recipient{}, err
			}
			r.BankName = b.Name
		}
		return r, nil
	default:
		if _, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET updated_at = updated_at WHERE id = ?", id); err != nil {
			return model.Recipient{}, fmt.Errorf("lock recipient %d: %w", id, err)
		}
		return q.RecipientByID(ctx, id)
	}
}

func (q *Queries) selectRecipients(dest any) *bun.SelectQuery {
	return q.idb.NewSelect().Model(dest).
		ColumnExpr("r.*").
		ColumnExpr("b.name AS bank_name").
		Join("LEFT JOIN banks AS b ON b.id = r.bank_id")
}

// RecipientByID loads one recipient. It returns ErrNotFound when absent.
func (q *Queries) RecipientByID(ctx context.Context, id int64) (model.Recipient, error) {
	var m RecipientModel
	if err := q.selectRecipients(&m).Where("r.id = ?", id).Limit(1).Scan(ctx); err != nil {
		return model.Recipient{}, MapDBError(err)
	}
	return recipientToModel(m), nil
}

// RecipientByAlias loads one recipient by its unique alias.
func (q *Queries) RecipientByAlias(ctx context.Context, alias string) (model.Recipient, error) {
	var m RecipientModel
	if err := q.selectRecipients(&m).Where("r.alias = ?", alias).Limit(1).Scan(ctx); err != nil {
		return model.Recipient{}, MapDBError(err)
	}
	return recipientToModel(m), nil
}

// ListRecipients returns recipients ordered by priority (then name) or by
// name (then id).
func (q *Queries) ListRecipients(ctx context.Context, activeOnly, byPriority bool) ([]model.Recipient, error) {
	var rows []RecipientModel
	sel := q.selectRecipients(&rows)
	if activeOnly {
		sel = sel.Where("r.is_active = ?", true)
	}
	if byPriority {
		sel = sel.OrderExpr("r.priority_order ASC, r.name ASC")
	} else {
		sel = sel.OrderExpr("r.name ASC, r.id ASC")
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Recipient, 0, len(rows))
	for _, m := range rows {
		out = append(out, recipientToModel(m))
	}
	return out, nil
}

// CountRecipients returns the number of recipients. Because priorities are
// contiguous this is also the highest priority_order in use.
func (q *Queries) CountRecipients(ctx context.Context, activeOnly bool) (int, error) {
	sel := q.idb.NewSelect().Model((*RecipientModel)(nil))
	if activeOnly {
		sel = sel.Where("r.is_active = ?", true)
	}
	return sel.Count(ctx)
}

// RecipientPriorities returns every priority_order in ascending order.
func (q *Queries) RecipientPriorities(ctx context.Context) ([]int, error) {
	var out []int
	if err := QueryRawInto(ctx, q.idb, &out, "SELECT priority_order FROM recipients ORDER BY priority_order"); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipientConflict reports which unique column ("alias" or
// "account_number") is already taken by a recipient other than excludeID.
// It returns "" when both values are free.
func (q *Queries) RecipientConflict(ctx context.Context, alias, accountNumber string, excludeID int64) (string, error) {
	var rows []RecipientModel
	err := q.idb.NewSelect().Model(&rows).
		Column("id", "alias", "account_number").
		Where("(r.alias = ? OR r.account_number = ?)", alias, accountNumber).
		Where("r.id <> ?", excludeID).
		Scan(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range rows {
		if m.Alias == alias {
			return "alias", nil
		}
	}
	if len(rows) > 0 {
		return "account_number", nil
	}
	return "", nil
}

// InsertRecipient inserts r and sets its generated ID. The caller must have
// made room at r.PriorityOrder.
func (q *Queries) InsertRecipient(ctx context.Context, r *model.Recipient) error {
	m := recipientFromModel(*r)
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	r.ID = m.ID
	return nil
}

// UpdateRecipient writes every attribute of r except priority_order and
// created_at.
func (q *Queries) UpdateRecipient(ctx context.Context, r model.Recipient) error {
	m := recipientFromModel(r)
	res, err := q.idb.NewUpdate().Model(&m).
		Column("name", "alias", "account_number", "bank_id", "max_amount", "is_recurring", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}

// SetRecipientPriority assigns priority_order for one recipient. Position 0
// parks the row outside the live sequence.
func (q *Queries) SetRecipientPriority(ctx context.Context, id int64, priority int) error {
	res, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = ? WHERE id = ?", priority, id)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}

// DeleteRecipient removes a recipient row. Payment history referencing it
// makes the delete fail with ErrReferenced.
func (q *Queries) DeleteRecipient(ctx context.Context, id int64) error {
	res, err := ExecRaw(ctx, q.idb, "DELETE FROM recipients WHERE id = ?", id)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}

// ShiftPriorities adds delta to every priority_order in [from, to] as a
// bulk operation. A non-positive to leaves the range open ended. The rows
// pass through negative values first so that the unique index holds after
// each statement regardless of the order in which rows are visited.
func (q *Queries) ShiftPriorities(ctx context.Context, from, to, delta int) (int64, error) {
	if delta == 0 {
		return 0, nil
	}
	stmt := "UPDATE recipients SET priority_order = -(priority_order + ?) WHERE priority_order >= ?"
	args := []any{delta, from}
	if to > 0 {
		stmt += " AND priority_order <= ?"
		args = append(args, to)
	}
	res, err := ExecRaw(ctx, q.idb, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("shift priorities: %w", MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("shift priorities: %w", err)
	}
	if _, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = -priority_order WHERE priority_order < 0"); err != nil {
		return 0, fmt.Errorf("shift priorities: %w", MapDBError(err))
	}
	dbLogf("db: shifted %d priorities in [%d,%d] by %d", n, from, to, delta)
	return n, nil
}

// ResequencePriorities renumbers all recipients 1..N keeping their relative
// order. Used after bulk imports that may leave gaps.
func (q *Queries) ResequencePriorities(ctx context.Context) error {
	var ids []int64
	if err := QueryRawInto(ctx, q.idb, &ids, "SELECT id FROM recipients ORDER BY priority_order, id"); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = ? WHERE id = ?", -(i + 1), id); err != nil {
			return MapDBError(err)
		}
	}
	if _, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = -priority_order WHERE priority_order < 0"); err != nil {
		return MapDBError(err)
	}
	return nil
}
