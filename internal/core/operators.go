// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or
// a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// MinPasswordLength is the shortest accepted operator password.
const MinPasswordLength = 8

// CreateOperator registers an operator with a bcrypt-hashed password.
func (e *Engine) CreateOperator(ctx context.Context, username, password string, role model.Role) (model.Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.Operator{}, &ValidationError{Field: "username", Reason: "cannot be empty"}
	}
	if role == "" {
		role = model.RoleOperator
	}
	if !role.Valid() {
		return model.Operator{}, &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	if len(password) < MinPasswordLength {
		return model.Operator{}, &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Operator{}, fmt.Errorf("hash password: %w", err)
	}

	op := model.Operator{Username: username, Role: role, PasswordHash: string(hash), CreatedAt: e.now()}
	err = e.inTx(ctx, "create operator", func(ctx context.Context, q *db.Queries) error {
		if err := q.InsertOperator(ctx, &op); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return &ValidationError{Field: "username", Reason: "already in use", Err: err}
			}
			return err
		}
		return e.audit(ctx, q, "", ActionOperatorCreated, fmt.Sprintf("username=%s role=%s", op.Username, op.Role))
	})
	if err != nil {
		return model.Operator{}, err
	}
	return op, nil
}

// ListOperators returns all operators.
func (e *Engine) ListOperators(ctx context.Context) ([]model.Operator, error) {
	return e.store.Queries().ListOperators(ctx)
}

// GetOperator loads an operator by username.
func (e *Engine) GetOperator(ctx context.Context, username string) (model.Operator, error) {
	op, err := e.store.Queries().OperatorByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.Operator{}, storeError(err, "operator", username)
	}
	return op, nil
}

// Authenticate checks a username/password pair.
func (e *Engine) Authenticate(ctx context.Context, username, password string) (model.Operator, error) {
	op, err := e.store.Queries().OperatorByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Operator{}, ErrInvalidCredentials
		}
		return model.Operator{}, err
	}
	if op.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return model.Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

// SetOperatorPassword replaces an operator's password.
func (e *Engine) SetOperatorPassword(ctx context.Context, username, password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return e.inTx(ctx, "set operator password", func(ctx context.Context, q *db.Queries) error {
		op, err := q.OperatorByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return storeError(err, "operator", username)
		}
		return q.SetOperatorPassword(ctx, op.ID, string(hash))
	})
}
