// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/toeirei/paydesk/internal/model"
)

// LogAction records an audit trail event.
func (q *Queries) LogAction(ctx context.Context, at time.Time, actor, action, details string) error {
	m := AuditLogModel{Timestamp: at.UTC(), Actor: actor, Action: action, Details: details}
	if _, err := q.idb.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

// AuditLog returns audit entries, most recent first. A non-positive limit
// returns every entry.
func (q *Queries) AuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	var rows []AuditLogModel
	sel := q.idb.NewSelect().Model(&rows).OrderExpr("a.timestamp DESC, a.id DESC")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, auditToModel(m))
	}
	return out, nil
}
