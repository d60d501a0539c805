// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the persistence layer for Paydesk. It hides the SQL engine
// (SQLite, PostgreSQL or MySQL) behind a bun-backed Store whose Queries run
// either directly or inside a transaction opened with Store.RunInTx.
//
// Every query that mutates priority_order keeps the column's UNIQUE
// constraint satisfied at statement level, so callers can move rows around
// without deferring constraints.
package db // import "github.com/toeirei/paydesk/internal/db"
