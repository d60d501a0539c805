// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// AccountNumberLength is the exact number of digits of an account number.
const AccountNumberLength = 22

var accountNumberPattern = regexp.MustCompile(`^[0-9]{22}$`)

// RecipientInput carries the writable attributes of a recipient. On update
// every attribute is replaced; a nil PriorityOrder keeps the current
// position on update and appends on create.
type RecipientInput struct {
	Alias         string
	Name          string
	BankID        int64
	AccountNumber string
	MaxAmount     int64
	IsRecurring   bool
	IsActive      bool
	PriorityOrder *int
}

func (in RecipientInput) normalized() RecipientInput {
	in.Alias = strings.TrimSpace(in.Alias)
	in.Name = strings.TrimSpace(in.Name)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	return in
}

// ValidateRecipientInput performs the checks that need no database access.
func ValidateRecipientInput(in RecipientInput) error {
	in = in.normalized()
	if in.Alias == "" {
		return &ValidationError{Field: "alias", Reason: "cannot be empty"}
	}
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if !accountNumberPattern.MatchString(in.AccountNumber) {
		return &ValidationError{Field: "account_number", Reason: fmt.Sprintf("must be exactly %d digits", AccountNumberLength)}
	}
	if in.MaxAmount <= 0 {
		return &ValidationError{Field: "max_amount", Reason: "must be greater than zero"}
	}
	if in.BankID < 0 {
		return &ValidationError{Field: "bank_id", Reason: "must not be negative"}
	}
	if in.PriorityOrder != nil && *in.PriorityOrder <= 0 {
		return &ValidationError{Field: "priority_order", Reason: "must be a positive integer"}
	}
	return nil
}

// checkRecipientReferences verifies uniqueness and the bank reference
// inside the caller's transaction.
func checkRecipientReferences(ctx context.Context, q *db.Queries, in RecipientInput, selfID int64) error {
	field, err := q.RecipientConflict(ctx, in.Alias, in.AccountNumber, selfID)
	if err != nil {
		return err
	}
	if field != "" {
		return &ValidationError{Field: field, Reason: "already in use by another recipient"}
	}
	if in.BankID != 0 {
		if _, err := q.BankByID(ctx, in.BankID); err != nil {
			return storeError(err, "bank", strconv.FormatInt(in.BankID, 10))
		}
	}
	return nil
}

// storeError turns db sentinels into typed engine errors.
func storeError(err error, kind, key string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return &NotFoundError{Kind: kind, Key: key}
	case errors.Is(err, db.ErrDuplicate):
		return &ConflictError{Reason: fmt.Sprintf("%s %q violates a uniqueness constraint", kind, key)}
	case errors.Is(err, db.ErrReferenced):
		return &ConflictError{Reason: fmt.Sprintf("%s %q is referenced by other records", kind, key)}
	}
	return err
}

// CreateRecipient validates in, opens a slot at the requested priority and
// inserts the recipient, all in one transaction.
func (e *Engine) CreateRecipient(ctx context.Context, in RecipientInput) (model.Recipient, error) {
	in = in.normalized()
	if err := ValidateRecipientInput(in); err != nil {
		return model.Recipient{}, err
	}

	var created model.Recipient
	err := e.inTx(ctx, "create recipient", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		if err := checkRecipientReferences(ctx, q, in, 0); err != nil {
			return err
		}
		n, err := q.CountRecipients(ctx, false)
		if err != nil {
			return err
		}
		p, err := createPriority(in.PriorityOrder, n)
		if err != nil {
			return err
		}
		if err := (PriorityReindexer{q: q}).OpenSlot(ctx, p); err != nil {
			return err
		}
		now := e.now()
		r := model.Recipient{
			Alias:         in.Alias,
			Name:          in.Name,
			BankID:        in.BankID,
			AccountNumber: in.AccountNumber,
			MaxAmount:     in.MaxAmount,
			IsRecurring:   in.IsRecurring,
			PriorityOrder: p,
			IsActive:      in.IsActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := q.InsertRecipient(ctx, &r); err != nil {
			return storeError(err, "recipient", in.Alias)
		}
		if err := e.audit(ctx, q, "", ActionRecipientCreated, fmt.Sprintf("alias=%s priority=%d max=%d recurring=%t", r.Alias, p, r.MaxAmount, r.IsRecurring)); err != nil {
			return err
		}
		created, err = q.RecipientByID(ctx, r.ID)
		return err
	})
	if err != nil {
		return model.Recipient{}, err
	}
	e.log.Info("recipient created", "alias", created.Alias, "priority", created.PriorityOrder)
	return created, nil
}

// UpdateRecipient replaces the attributes of recipient id. A changed
// priority moves the recipient and shifts the rows in between.
func (e *Engine) UpdateRecipient(ctx context.Context, id int64, in RecipientInput) (model.Recipient, error) {
	in = in.normalized()
	if err := ValidateRecipientInput(in); err != nil {
		return model.Recipient{}, err
	}

	var updated model.Recipient
	err := e.inTx(ctx, "update recipient", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		existing, err := q.RecipientByID(ctx, id)
		if err != nil {
			return storeError(err, "recipient", strconv.FormatInt(id, 10))
		}
		if err := checkRecipientReferences(ctx, q, in, id); err != nil {
			return err
		}
		r := existing
		r.Alias = in.Alias
		r.Name = in.Name
		r.BankID = in.BankID
		r.AccountNumber = in.AccountNumber
		r.MaxAmount = in.MaxAmount
		r.IsRecurring = in.IsRecurring
		r.IsActive = in.IsActive
		r.UpdatedAt = e.now()
		if err := q.UpdateRecipient(ctx, r); err != nil {
			return storeError(err, "recipient", in.Alias)
		}

		details := fmt.Sprintf("alias=%s max=%d recurring=%t active=%t", r.Alias, r.MaxAmount, r.IsRecurring, r.IsActive)
		if in.PriorityOrder != nil {
			moved, err := e.move(ctx, q, existing, *in.PriorityOrder)
			if err != nil {
				return err
			}
			if moved != existing.PriorityOrder {
				details += fmt.Sprintf(" priority=%d->%d", existing.PriorityOrder, moved)
			}
		}
		if err := e.audit(ctx, q, "", ActionRecipientUpdated, details); err != nil {
			return err
		}
		updated, err = q.RecipientByID(ctx, id)
		return err
	})
	if err != nil {
		return model.Recipient{}, err
	}
	e.log.Info("recipient updated", "alias", updated.Alias, "priority", updated.PriorityOrder)
	return updated, nil
}

// move relocates r to the requested priority and returns the position it
// ended up at.
func (e *Engine) move(ctx context.Context, q *db.Queries, r model.Recipient, requested int) (int, error) {
	n, err := q.CountRecipients(ctx, false)
	if err != nil {
		return 0, err
	}
	newP, err := movePriority(requested, n)
	if err != nil {
		return 0, err
	}
	if err := (PriorityReindexer{q: q}).Move(ctx, r.ID, r.PriorityOrder, newP); err != nil {
		return 0, err
	}
	return newP, nil
}

// MoveRecipient changes only the priority of the recipient with alias.
func (e *Engine) MoveRecipient(ctx context.Context, alias string, priority int) (model.Recipient, error) {
	alias = strings.TrimSpace(alias)
	if priority <= 0 {
		return model.Recipient{}, &ValidationError{Field: "priority_order", Reason: "must be a positive integer"}
	}
	var moved model.Recipient
	err := e.inTx(ctx, "move recipient", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		r, err := q.RecipientByAlias(ctx, alias)
		if err != nil {
			return storeError(err, "recipient", alias)
		}
		newP, err := e.move(ctx, q, r, priority)
		if err != nil {
			return err
		}
		if newP != r.PriorityOrder {
			if err := e.audit(ctx, q, "", ActionRecipientMoved, fmt.Sprintf("alias=%s priority=%d->%d", alias, r.PriorityOrder, newP)); err != nil {
				return err
			}
		}
		moved, err = q.RecipientByID(ctx, r.ID)
		return err
	})
	if err != nil {
		return model.Recipient{}, err
	}
	return moved, nil
}

// SetRecipientActive toggles whether a recipient takes part in allocation.
func (e *Engine) SetRecipientActive(ctx context.Context, alias string, active bool) (model.Recipient, error) {
	r, err := e.GetRecipientByAlias(ctx, alias)
	if err != nil {
		return model.Recipient{}, err
	}
	return e.UpdateRecipient(ctx, r.ID, InputFromRecipient(r, active))
}

// InputFromRecipient copies r's attributes into a RecipientInput that keeps
// its priority, with the given active flag.
func InputFromRecipient(r model.Recipient, active bool) RecipientInput {
	return RecipientInput{
		Alias:         r.Alias,
		Name:          r.Name,
		BankID:        r.BankID,
		AccountNumber: r.AccountNumber,
		MaxAmount:     r.MaxAmount,
		IsRecurring:   r.IsRecurring,
		IsActive:      active,
	}
}

// DeleteRecipient removes recipient id and closes its priority slot. A
// recipient with payments cannot be deleted.
func (e *Engine) DeleteRecipient(ctx context.Context, id int64) error {
	var alias string
	err := e.inTx(ctx, "delete recipient", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		r, err := q.RecipientByID(ctx, id)
		if err != nil {
			return storeError(err, "recipient", strconv.FormatInt(id, 10))
		}
		alias = r.Alias
		payments, err := q.CountPaymentsForRecipient(ctx, id)
		if err != nil {
			return err
		}
		if payments > 0 {
			return &ConflictError{Reason: fmt.Sprintf("recipient %q has %d payment(s) and cannot be deleted", r.Alias, payments)}
		}
		if err := q.DeleteRecipient(ctx, id); err != nil {
			return storeError(err, "recipient", r.Alias)
		}
		if err := (PriorityReindexer{q: q}).CloseSlot(ctx, r.PriorityOrder); err != nil {
			return err
		}
		return e.audit(ctx, q, "", ActionRecipientDeleted, fmt.Sprintf("alias=%s priority=%d", r.Alias, r.PriorityOrder))
	})
	if err != nil {
		return err
	}
	e.log.Info("recipient deleted", "alias", alias)
	return nil
}

// GetRecipient loads a recipient by ID.
func (e *Engine) GetRecipient(ctx context.Context, id int64) (model.Recipient, error) {
	r, err := e.store.Queries().RecipientByID(ctx, id)
	if err != nil {
		return model.Recipient{}, storeError(err, "recipient", strconv.FormatInt(id, 10))
	}
	return r, nil
}

// GetRecipientByAlias loads a recipient by alias, active or not.
func (e *Engine) GetRecipientByAlias(ctx context.Context, alias string) (model.Recipient, error) {
	r, err := e.store.Queries().RecipientByAlias(ctx, strings.TrimSpace(alias))
	if err != nil {
		return model.Recipient{}, storeError(err, "recipient", alias)
	}
	return r, nil
}

// ListRecipients returns recipients ordered by priority (then name) or by
// name.
func (e *Engine) ListRecipients(ctx context.Context, activeOnly, orderedByPriority bool) ([]model.Recipient, error) {
	return e.store.Queries().ListRecipients(ctx, activeOnly, orderedByPriority)
}

// ListActive returns the active recipients.
func (e *Engine) ListActive(ctx context.Context, orderedByPriority bool) ([]model.Recipient, error) {
	return e.ListRecipients(ctx, true, orderedByPriority)
}
