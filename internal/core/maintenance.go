// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// PriorityCheck describes the state of the priority sequence.
type PriorityCheck struct {
	Count      int
	Contiguous bool
	Repaired   bool
}

// CheckPriorities verifies that priorities form 1..N. With repair set, a
// broken sequence is renumbered in its current order.
func (e *Engine) CheckPriorities(ctx context.Context, repair bool) (PriorityCheck, error) {
	var res PriorityCheck
	err := e.inTx(ctx, "check priorities", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		ps, err := q.RecipientPriorities(ctx)
		if err != nil {
			return err
		}
		res = PriorityCheck{Count: len(ps), Contiguous: contiguous(ps)}
		if res.Contiguous || !repair {
			return nil
		}
		if err := q.ResequencePriorities(ctx); err != nil {
			return err
		}
		res.Repaired = true
		e.log.Warn("priority sequence repaired", "recipients", len(ps))
		return e.audit(ctx, q, "", ActionPrioritiesRepaired, fmt.Sprintf("recipients=%d", len(ps)))
	})
	return res, err
}

// contiguous reports whether sorted ps equals 1..len(ps).
func contiguous(ps []int) bool {
	for i, p := range ps {
		if p != i+1 {
			return false
		}
	}
	return true
}

// Maintain runs engine-specific database housekeeping.
func (e *Engine) Maintain(ctx context.Context) error {
	e.log.Info("running database maintenance", "engine", e.store.Type())
	return e.store.RunMaintenance(ctx)
}

// AuditLog returns the newest audit entries.
func (e *Engine) AuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	return e.store.Queries().AuditLog(ctx, limit)
}
