// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/paydesk/internal/model"
)

// InsertOperator stores o and sets its generated ID.
func (q *Queries) InsertOperator(ctx context.Context, o *model.Operator) error {
	m := OperatorModel{
		Username:     o.Username,
		Role:         string(o.Role),
		PasswordHash: o.PasswordHash,
		CreatedAt:    o.CreatedAt.UTC(),
	}
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	o.ID = m.ID
	return nil
}

// OperatorByID loads an operator.
func (q *Queries) OperatorByID(ctx context.Context, id int64) (model.Operator, error) {
	var m OperatorModel
	if err := q.idb.NewSelect().Model(&m).Where("o.id = ?", id).Limit(1).Scan(ctx); err != nil {
		return model.Operator{}, MapDBError(err)
	}
	return operatorToModel(m), nil
}

// OperatorByUsername loads an operator by login name.
func (q *Queries) OperatorByUsername(ctx context.Context, username string) (model.Operator, error) {
	var m OperatorModel
	if err := q.idb.NewSelect().Model(&m).Where("o.username = ?", username).Limit(1).Scan(ctx); err != nil {
		return model.Operator{}, MapDBError(err)
	}
	return operatorToModel(m), nil
}

// ListOperators returns all operators ordered by username.
func (q *Queries) ListOperators(ctx context.Context) ([]model.Operator, error) {
	var rows []OperatorModel
	if err := q.idb.NewSelect().Model(&rows).OrderExpr("o.username").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Operator, 0, len(rows))
	for _, m := range rows {
		out = append(out, operatorToModel(m))
	}
	return out, nil
}

// SetOperatorPassword replaces the stored password hash.
func (q *Queries) SetOperatorPassword(ctx context.Context, id int64, hash string) error {
	res, err := ExecRaw(ctx, q.idb, "UPDATE operators SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return MapDBError(err)
	}
	return expectRow(res)
}
