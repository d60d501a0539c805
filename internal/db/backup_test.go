// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/toeirei/paydesk/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()
	q := src.Queries()

	bank, _ := q.InsertBank(ctx, "Banco Uno")
	rs := seedRecipients(t, src, 3)
	rs[2].BankID = bank.ID
	if err := q.UpdateRecipient(ctx, rs[2]); err != nil {
		t.Fatal(err)
	}
	op := seedOperator(t, src)
	p := insertPayment(t, q, rs[0].ID, op.ID, 120, testNow)
	if err := q.SaveMonthlyBalance(ctx, model.MonthlyBalance{RecipientID: rs[0].ID, Year: 2026, Month: time.March, TotalReceived: 120, PaymentCount: 1, LastUpdated: testNow}); err != nil {
		t.Fatal(err)
	}
	if err := q.LogAction(ctx, testNow, "cashier", "PAYMENT_CREATED", p.Reference); err != nil {
		t.Fatal(err)
	}

	var data *model.BackupData
	if err := src.RunInTx(ctx, func(ctx context.Context, q *Queries) error {
		var err error
		data, err = q.ExportAll(ctx)
		return err
	}); err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if data.SchemaVersion != model.BackupSchemaVersion || len(data.Recipients) != 3 || len(data.Payments) != 1 {
		t.Fatalf("unexpected export: %+v", data)
	}

	// Gaps in the stored priorities are closed on import.
	data.Recipients[1].PriorityOrder = 7
	data.Recipients[2].PriorityOrder = 12

	dst := newTestStore(t)
	seedRecipients(t, dst, 1) // wiped by the import
	if err := dst.RunInTx(ctx, func(ctx context.Context, q *Queries) error {
		return q.ImportAll(ctx, data)
	}); err != nil {
		t.Fatalf("ImportAll failed: %v", err)
	}

	want := map[string]int{"r1": 1, "r2": 2, "r3": 3}
	if got := priorityByAlias(t, dst); !reflect.DeepEqual(got, want) {
		t.Fatalf("priorities after import = %v, want %v", got, want)
	}
	r3, err := dst.Queries().RecipientByAlias(ctx, "r3")
	if err != nil || r3.BankName != "Banco Uno" || r3.ID != rs[2].ID {
		t.Fatalf("unexpected restored recipient: %+v, %v", r3, err)
	}
	gotPay, err := dst.Queries().PaymentByReference(ctx, p.Reference)
	if err != nil || gotPay.Amount != 120 || gotPay.RecipientID != rs[0].ID {
		t.Fatalf("unexpected restored payment: %+v, %v", gotPay, err)
	}
	if _, err := dst.Queries().MonthlyBalance(ctx, rs[0].ID, 2026, 3); err != nil {
		t.Fatalf("expected restored balance: %v", err)
	}
	entries, _ := dst.Queries().AuditLog(ctx, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 restored audit entry, got %d", len(entries))
	}

	// New rows continue after the restored IDs.
	next := model.Recipient{Alias: "r4", Name: "R4", AccountNumber: "0000000000000000000404", MaxAmount: 1, PriorityOrder: 4, IsActive: true, CreatedAt: testNow, UpdatedAt: testNow}
	if err := dst.Queries().InsertRecipient(ctx, &next); err != nil {
		t.Fatalf("insert after import failed: %v", err)
	}
	if next.ID <= rs[2].ID {
		t.Fatalf("expected new ID above restored ones, got %d", next.ID)
	}
}
