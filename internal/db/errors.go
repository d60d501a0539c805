// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrReferenced is returned when a delete or update would break a
	// foreign key held by another row.
	ErrReferenced = errors.New("record is referenced by other records")
)

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors. The mapping is string based
// so that this file does not depend on driver packages.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	// SQLite "FOREIGN KEY constraint failed", Postgres 23503, MySQL 1451/1452
	if strings.Contains(le, "foreign key") || strings.Contains(le, "23503") || strings.Contains(le, "1451") || strings.Contains(le, "1452") {
		return ErrReferenced
	}
	return err
}

// IsRetryable reports whether err is a transient concurrency failure after
// which the whole transaction may be retried: serialization failures and
// deadlocks on server engines, busy or locked databases on SQLite.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	le := strings.ToLower(err.Error())
	for _, marker := range []string{
		"40001", "40p01", // postgres serialization_failure, deadlock_detected
		"error 1213", "error 1205", // mysql deadlock, lock wait timeout
		"database is locked", "database table is locked", "sqlite_busy", "sqlite_locked",
		"deadlock",
	} {
		if strings.Contains(le, marker) {
			return true
		}
	}
	return false
}
