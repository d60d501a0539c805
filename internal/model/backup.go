// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is written into every exported snapshot.
const BackupSchemaVersion = 1

// BackupData is a container for all data exported for a backup.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Banks           []Bank           `json:"banks"`
	Operators       []Operator       `json:"operators"`
	Recipients      []Recipient      `json:"recipients"`
	Payments        []Payment        `json:"payments"`
	MonthlyBalances []MonthlyBalance `json:"monthly_balances"`
	AuditLogEntries []AuditLogEntry  `json:"audit_log_entries"`
}
