// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/paydesk/internal/model"
)

// InsertBank stores a bank and returns it with its generated ID.
func (q *Queries) InsertBank(ctx context.Context, name string) (model.Bank, error) {
	m := BankModel{Name: name}
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.Bank{}, MapDBError(err)
	}
	return model.Bank{ID: m.ID, Name: m.Name}, nil
}

// BankByID loads a bank.
func (q *Queries) BankByID(ctx context.Context, id int64) (model.Bank, error) {
	var m BankModel
	if err := q.idb.NewSelect().Model(&m).Where("b.id = ?", id).Limit(1).Scan(ctx); err != nil {
		return model.Bank{}, MapDBError(err)
	}
	return model.Bank{ID: m.ID, Name: m.Name}, nil
}

// BankByName loads a bank by its unique name.
func (q *Queries) BankByName(ctx context.Context, name string) (model.Bank, error) {
	var m BankModel
	if err := q.idb.NewSelect().Model(&m).Where("b.name = ?", name).Limit(1).Scan(ctx); err != nil {
		return model.Bank{}, MapDBError(err)
	}
	return model.Bank{ID: m.ID, Name: m.Name}, nil
}

// ListBanks returns all banks ordered by name.
func (q *Queries) ListBanks(ctx context.Context) ([]model.Bank, error) {
	var rows []BankModel
	if err := q.idb.NewSelect().Model(&rows).OrderExpr("b.name").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Bank, 0, len(rows))
	for _, m := range rows {
		out = append(out, model.Bank{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

// CountRecipientsForBank returns how many recipients reference bankID.
func (q *Queries) CountRecipientsForBank(ctx context.Context, bankID int64) (int, error) {
	return q.idb.NewSelect().Model((*RecipientModel)(nil)).Where("r.bank_id = ?", bankID).Count(ctx)
}

// DeleteBank removes a bank that no recipient references.
func (q *Queries) DeleteBank(ctx context.Context, id int64) error {
	res, err := ExecRaw(ctx, q.idb, "DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}
