// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/model"
)

func sampleBackup(t *testing.T) *bytes.Buffer {
	t.Helper()
	data := &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		Banks:         []model.Bank{{ID: 1, Name: "Banco Uno"}},
		Recipients: []model.Recipient{
			{ID: 1, Alias: "acc1", MaxAmount: 1000, IsRecurring: true, IsActive: true, PriorityOrder: 1},
			{ID: 2, Alias: "once", MaxAmount: 500, IsActive: true, PriorityOrder: 2},
		},
		Payments: []model.Payment{{ID: 1, RecipientID: 1, Amount: 300}, {ID: 2, RecipientID: 2, Amount: 500}},
	}
	var buf bytes.Buffer
	if err := core.WriteBackup(&buf, data); err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}
	return &buf
}

func TestInspect_Summary(t *testing.T) {
	var out bytes.Buffer
	if err := inspect(sampleBackup(t), &out, false); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"banks: 1", "recipients: 2", "payments: 2 (total 800)", "#1 acc1 max=1000 recurring=true", "#2 once max=500 recurring=false"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestInspect_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := inspect(sampleBackup(t), &out, true); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out.String(), `"alias": "acc1"`) || !strings.Contains(out.String(), `"schema_version": 1`) {
		t.Fatalf("unexpected JSON output:\n%s", out.String())
	}
}

func TestInspect_Garbage(t *testing.T) {
	if err := inspect(strings.NewReader("not a backup"), &bytes.Buffer{}, false); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
