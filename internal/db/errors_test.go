// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'x' for key 'alias'")},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"recipients_alias_key\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: recipients.alias (2067)")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if mapped := MapDBError(c.err); !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate for case %s, got: %v", c.name, mapped)
			}
		})
	}
}

func TestMapDBError_ForeignKeys(t *testing.T) {
	cases := []error{
		errors.New("constraint failed: FOREIGN KEY constraint failed (787)"),
		errors.New("ERROR: update or delete on table \"recipients\" violates foreign key constraint (SQLSTATE 23503)"),
		errors.New("Error 1451: Cannot delete or update a parent row"),
	}
	for _, err := range cases {
		if mapped := MapDBError(err); !errors.Is(mapped, ErrReferenced) {
			t.Errorf("expected ErrReferenced for %q, got %v", err, mapped)
		}
	}
}

func TestMapDBError_NoRowsAndPassthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
	if !errors.Is(MapDBError(fmt.Errorf("scan: %w", sql.ErrNoRows)), ErrNotFound) {
		t.Fatal("expected ErrNotFound for wrapped sql.ErrNoRows")
	}
	e := errors.New("some network error")
	if mapped := MapDBError(e); mapped != e {
		t.Fatalf("expected original error to be returned unchanged, got: %v", mapped)
	}
}

func TestIsRetryable(t *testing.T) {
	retry := []error{
		errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"),
		errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"),
		errors.New("Error 1213: Deadlock found when trying to get lock"),
		errors.New("Error 1205: Lock wait timeout exceeded"),
		errors.New("database is locked (5) (SQLITE_BUSY)"),
	}
	for _, err := range retry {
		if !IsRetryable(err) {
			t.Errorf("expected %q to be retryable", err)
		}
	}
	for _, err := range []error{nil, ErrDuplicate, errors.New("syntax error")} {
		if IsRetryable(err) {
			t.Errorf("expected %v not to be retryable", err)
		}
	}
}
