// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Nothing was written.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown (or, for allocation, inactive) entity.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// CapacityExceededError is a business-rule rejection: the recipient cannot
// take the requested amount. Remaining may be negative.
type CapacityExceededError struct {
	Alias     string
	Remaining int64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("recipient %q cannot receive this amount (remaining %d)", e.Alias, e.Remaining)
}

// ConflictError reports a write blocked by other records, such as deleting
// a recipient that still has payments.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// TransactionError wraps a storage failure that persisted after the
// automatic retry.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// isBusinessError reports whether err is one of the typed rejections that
// must reach the caller unchanged.
func isBusinessError(err error) bool {
	var (
		ve *ValidationError
		ne *NotFoundError
		ce *CapacityExceededError
		co *ConflictError
	)
	return errors.As(err, &ve) || errors.As(err, &ne) || errors.As(err, &ce) || errors.As(err, &co)
}
