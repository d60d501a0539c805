// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Store owns the database handle. All reads and writes go through the
// Queries it hands out.
type Store struct {
	bun    *bun.DB
	dbType string
}

// Queries runs statements against either the pooled database or an open
// transaction. A Queries obtained from RunInTx must not be used after the
// callback returns.
type Queries struct {
	idb bun.IDB
}

var (
	defaultMu    sync.RWMutex
	defaultStore *Store
)

// New opens a Store for dbType/dsn and makes it the package default used by
// the CLI.
func New(dbType, dsn string) (*Store, error) {
	s, err := NewStoreFromDSN(dbType, dsn)
	if err != nil {
		return nil, err
	}
	defaultMu.Lock()
	defaultStore = s
	defaultMu.Unlock()
	return s, nil
}

// Default returns the store opened by New, or nil.
func Default() *Store {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultStore
}

// SetDefault replaces the package default store. Passing nil clears it.
func SetDefault(s *Store) {
	defaultMu.Lock()
	defaultStore = s
	defaultMu.Unlock()
}

// IsInitialized reports whether New has set the package default.
func IsInitialized() bool {
	return Default() != nil
}

// Type returns the database type the store was opened with.
func (s *Store) Type() string { return s.dbType }

// BunDB exposes the underlying bun handle.
func (s *Store) BunDB() *bun.DB { return s.bun }

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	return s.bun.Close()
}

// Queries returns a Queries bound to the connection pool. Statements run in
// autocommit mode.
func (s *Store) Queries() *Queries {
	return &Queries{idb: s.bun}
}

// RunInTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, q *Queries) error) error {
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Queries{idb: tx})
	})
}

// WithTx begins a transaction on bdb, runs fn and commits or rolls back
// depending on the returned error. Panics roll back and re-panic.
func WithTx(ctx context.Context, bdb *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) (err error) {
	tx, err := bdb.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			dbLogf("db: rollback failed: %v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (q *Queries) dialect() dialect.Name {
	return q.idb.Dialect().Name()
}
