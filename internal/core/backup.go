// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

// Backup exports every table as one consistent snapshot.
func (e *Engine) Backup(ctx context.Context) (*model.BackupData, error) {
	var data *model.BackupData
	err := e.inTx(ctx, "backup", func(ctx context.Context, q *db.Queries) error {
		var err error
		data, err = q.ExportAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Restore replaces the whole database with data. Recipient priorities are
// renumbered 1..N in their stored order.
func (e *Engine) Restore(ctx context.Context, data *model.BackupData) error {
	if data == nil {
		return &ValidationError{Field: "backup", Reason: "is empty"}
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return &ValidationError{Field: "schema_version", Reason: fmt.Sprintf("backup version %d is newer than supported version %d", data.SchemaVersion, model.BackupSchemaVersion)}
	}
	err := e.inTx(ctx, "restore", func(ctx context.Context, q *db.Queries) error {
		if err := q.LockRecipientTable(ctx); err != nil {
			return err
		}
		if err := q.ImportAll(ctx, data); err != nil {
			return err
		}
		return e.audit(ctx, q, "", ActionRestore, fmt.Sprintf("recipients=%d payments=%d", len(data.Recipients), len(data.Payments)))
	})
	if err != nil {
		return err
	}
	e.log.Info("database restored", "recipients", len(data.Recipients), "payments", len(data.Payments))
	return nil
}

// WriteBackup streams data as indented JSON through a zstd encoder.
func WriteBackup(w io.Writer, data *model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not flush zstd writer: %w", err)
	}
	return nil
}

// ReadBackup decodes a zstd-compressed JSON backup.
func ReadBackup(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	return &data, nil
}
