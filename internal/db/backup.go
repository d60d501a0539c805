// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/toeirei/paydesk/internal/model"
	"github.com/uptrace/bun/dialect"
)

// backupTables lists tables in foreign-key order: parents first.
var backupTables = []string{"banks", "operators", "recipients", "payments", "monthly_balances", "audit_log"}

// ExportAll reads every table into a BackupData. Run it inside RunInTx for
// a consistent snapshot.
func (q *Queries) ExportAll(ctx context.Context) (*model.BackupData, error) {
	out := &model.BackupData{SchemaVersion: model.BackupSchemaVersion}
	var err error
	if out.Banks, err = q.ListBanks(ctx); err != nil {
		return nil, fmt.Errorf("export banks: %w", err)
	}
	if out.Operators, err = q.ListOperators(ctx); err != nil {
		return nil, fmt.Errorf("export operators: %w", err)
	}
	if out.Recipients, err = q.ListRecipients(ctx, false, true); err != nil {
		return nil, fmt.Errorf("export recipients: %w", err)
	}
	if out.Payments, err = q.ListPayments(ctx, PaymentFilter{}); err != nil {
		return nil, fmt.Errorf("export payments: %w", err)
	}
	if out.MonthlyBalances, err = q.ListMonthlyBalances(ctx, 0, 0); err != nil {
		return nil, fmt.Errorf("export monthly balances: %w", err)
	}
	if out.AuditLogEntries, err = q.AuditLog(ctx, 0); err != nil {
		return nil, fmt.Errorf("export audit log: %w", err)
	}
	return out, nil
}

// ImportAll wipes every table and loads data with its original IDs.
// Recipient priorities are renumbered 1..N in their stored order. Must run
// inside RunInTx.
func (q *Queries) ImportAll(ctx context.Context, data *model.BackupData) error {
	for i := len(backupTables) - 1; i >= 0; i-- {
		if _, err := ExecRaw(ctx, q.idb, fmt.Sprintf("DELETE FROM %s", backupTables[i])); err != nil {
			return fmt.Errorf("wipe %s: %w", backupTables[i], err)
		}
	}

	for _, b := range data.Banks {
		if _, err := ExecRaw(ctx, q.idb, "INSERT INTO banks (id, name) VALUES (?, ?)", b.ID, b.Name); err != nil {
			return MapDBError(err)
		}
	}
	for _, o := range data.Operators {
		if _, err := ExecRaw(ctx, q.idb,
			"INSERT INTO operators (id, username, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
			o.ID, o.Username, string(o.Role), o.PasswordHash, o.CreatedAt.UTC()); err != nil {
			return MapDBError(err)
		}
	}

	recipients := append([]model.Recipient(nil), data.Recipients...)
	sort.SliceStable(recipients, func(i, j int) bool {
		if recipients[i].PriorityOrder != recipients[j].PriorityOrder {
			return recipients[i].PriorityOrder < recipients[j].PriorityOrder
		}
		return recipients[i].ID < recipients[j].ID
	})
	for i, r := range recipients {
		m := recipientFromModel(r)
		if _, err := ExecRaw(ctx, q.idb,
			"INSERT INTO recipients (id, name, alias, account_number, bank_id, max_amount, is_recurring, priority_order, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			m.ID, m.Name, m.Alias, m.AccountNumber, m.BankID, m.MaxAmount, m.IsRecurring, -(i + 1), m.IsActive, m.CreatedAt, m.UpdatedAt); err != nil {
			return MapDBError(err)
		}
	}
	if _, err := ExecRaw(ctx, q.idb, "UPDATE recipients SET priority_order = -priority_order WHERE priority_order < 0"); err != nil {
		return MapDBError(err)
	}

	for _, p := range data.Payments {
		if _, err := ExecRaw(ctx, q.idb,
			"INSERT INTO payments (id, reference, amount, recipient_id, operator_id, proof_ref, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Reference, p.Amount, p.RecipientID, p.OperatorID, p.ProofRef, p.Notes, p.CreatedAt.UTC()); err != nil {
			return MapDBError(err)
		}
	}
	for _, b := range data.MonthlyBalances {
		if err := q.SaveMonthlyBalance(ctx, b); err != nil {
			return err
		}
	}
	for _, a := range data.AuditLogEntries {
		if _, err := ExecRaw(ctx, q.idb,
			"INSERT INTO audit_log (id, timestamp, actor, action, details) VALUES (?, ?, ?, ?, ?)",
			a.ID, a.Timestamp.UTC(), a.Actor, a.Action, a.Details); err != nil {
			return MapDBError(err)
		}
	}

	if q.dialect() == dialect.PG {
		for _, t := range backupTables {
			stmt := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", t, t)
			if _, err := ExecRaw(ctx, q.idb, stmt); err != nil {
				return fmt.Errorf("reset sequence for %s: %w", t, err)
			}
		}
	}
	return nil
}
