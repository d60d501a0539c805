// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/paydesk/internal/db"
)

// ShiftRange is a pure description of one bulk priority shift: Delta is
// added to every priority in [From, To]. To == 0 means no upper bound.
type ShiftRange struct {
	From  int
	To    int
	Delta int
}

// Contains reports whether priority p falls inside the range.
func (s ShiftRange) Contains(p int) bool {
	return p >= s.From && (s.To <= 0 || p <= s.To)
}

// Apply returns the priority p ends up with after the shift.
func (s ShiftRange) Apply(p int) int {
	if s.Contains(p) {
		return p + s.Delta
	}
	return p
}

// PlanInsert opens a slot at p: everything at p or below moves down one.
func PlanInsert(p int) ShiftRange {
	return ShiftRange{From: p, Delta: +1}
}

// PlanRemove closes the slot left at p.
func PlanRemove(p int) ShiftRange {
	return ShiftRange{From: p + 1, Delta: -1}
}

// PlanMove describes the shift of the other recipients when one moves from
// oldP to newP. It returns false when the positions are equal.
func PlanMove(oldP, newP int) (ShiftRange, bool) {
	switch {
	case newP < oldP:
		return ShiftRange{From: newP, To: oldP - 1, Delta: +1}, true
	case newP > oldP:
		return ShiftRange{From: oldP + 1, To: newP, Delta: -1}, true
	default:
		return ShiftRange{}, false
	}
}

// createPriority resolves the requested position for a new recipient among
// n existing ones. nil appends; positions beyond the end are clamped.
func createPriority(requested *int, n int) (int, error) {
	if requested == nil {
		return n + 1, nil
	}
	if *requested <= 0 {
		return 0, &ValidationError{Field: "priority_order", Reason: "must be a positive integer"}
	}
	if *requested > n+1 {
		return n + 1, nil
	}
	return *requested, nil
}

// movePriority resolves a requested position for an existing recipient
// among n; positions beyond the end are clamped to n.
func movePriority(requested, n int) (int, error) {
	if requested <= 0 {
		return 0, &ValidationError{Field: "priority_order", Reason: "must be a positive integer"}
	}
	if requested > n {
		return n, nil
	}
	return requested, nil
}

// PriorityReindexer applies shift plans to the store. It must be used
// inside a transaction holding the recipient table lock.
type PriorityReindexer struct {
	q *db.Queries
}

func (r PriorityReindexer) apply(ctx context.Context, s ShiftRange) error {
	if _, err := r.q.ShiftPriorities(ctx, s.From, s.To, s.Delta); err != nil {
		return err
	}
	return nil
}

// OpenSlot makes position p free for an insert.
func (r PriorityReindexer) OpenSlot(ctx context.Context, p int) error {
	return r.apply(ctx, PlanInsert(p))
}

// CloseSlot closes the gap left by a recipient removed from position p.
func (r PriorityReindexer) CloseSlot(ctx context.Context, p int) error {
	return r.apply(ctx, PlanRemove(p))
}

// Move relocates recipient id from oldP to newP. The recipient is parked at
// position 0 while the others shift so the unique index is never violated.
func (r PriorityReindexer) Move(ctx context.Context, id int64, oldP, newP int) error {
	plan, ok := PlanMove(oldP, newP)
	if !ok {
		return nil
	}
	if err := r.q.SetRecipientPriority(ctx, id, 0); err != nil {
		return fmt.Errorf("park recipient %d: %w", id, err)
	}
	if err := r.apply(ctx, plan); err != nil {
		return err
	}
	if err := r.q.SetRecipientPriority(ctx, id, newP); err != nil {
		return fmt.Errorf("place recipient %d at %d: %w", id, newP, err)
	}
	return nil
}
