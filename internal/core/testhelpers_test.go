// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/paydesk/internal/clock"
	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

var storeSeq atomic.Int64

type fixture struct {
	t    *testing.T
	ctx  context.Context
	e    *Engine
	clk  *clock.Manual
	op   model.Operator
	acct int
}

// newFixture returns an engine over a private in-memory SQLite store with a
// manual clock set to testNow and one registered operator.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:core_%s_%d?mode=memory&cache=shared", name, storeSeq.Add(1))
	store, err := db.NewStoreFromDSN(db.TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var seq atomic.Int64
	clk := clock.NewManual(testNow)
	e := NewEngine(store,
		WithClock(clk),
		WithActor("tester"),
		WithLogger(clog.New(io.Discard)),
		WithReferenceGenerator(func() string { return fmt.Sprintf("ref-%04d", seq.Add(1)) }),
	)
	f := &fixture{t: t, ctx: context.Background(), e: e, clk: clk}
	f.op, err = e.CreateOperator(f.ctx, "cashier", "correct-horse", model.RoleOperator)
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}
	return f
}

func (f *fixture) input(alias string, max int64, recurring bool) RecipientInput {
	f.acct++
	return RecipientInput{
		Alias:         alias,
		Name:          "Recipient " + alias,
		AccountNumber: fmt.Sprintf("%022d", f.acct),
		MaxAmount:     max,
		IsRecurring:   recurring,
		IsActive:      true,
	}
}

// add appends an active recipient.
func (f *fixture) add(alias string, max int64, recurring bool) model.Recipient {
	f.t.Helper()
	r, err := f.e.CreateRecipient(f.ctx, f.input(alias, max, recurring))
	if err != nil {
		f.t.Fatalf("CreateRecipient(%s) failed: %v", alias, err)
	}
	return r
}

// addAt creates an active recurring recipient at priority p.
func (f *fixture) addAt(alias string, max int64, p int) model.Recipient {
	f.t.Helper()
	in := f.input(alias, max, true)
	in.PriorityOrder = &p
	r, err := f.e.CreateRecipient(f.ctx, in)
	if err != nil {
		f.t.Fatalf("CreateRecipient(%s@%d) failed: %v", alias, p, err)
	}
	return r
}

func (f *fixture) pay(alias string, amount int64) (model.Payment, error) {
	return f.e.RecordPayment(f.ctx, PaymentRequest{
		Amount:     amount,
		Alias:      alias,
		OperatorID: f.op.ID,
		ProofRef:   "receipt.jpg",
	})
}

func (f *fixture) mustPay(alias string, amount int64) model.Payment {
	f.t.Helper()
	p, err := f.pay(alias, amount)
	if err != nil {
		f.t.Fatalf("RecordPayment(%s, %d) failed: %v", alias, amount, err)
	}
	return p
}

func (f *fixture) recipient(alias string) model.Recipient {
	f.t.Helper()
	r, err := f.e.GetRecipientByAlias(f.ctx, alias)
	if err != nil {
		f.t.Fatalf("GetRecipientByAlias(%s) failed: %v", alias, err)
	}
	return r
}

// priorities maps alias to priority_order.
func (f *fixture) priorities() map[string]int {
	f.t.Helper()
	rs, err := f.e.ListRecipients(f.ctx, false, true)
	if err != nil {
		f.t.Fatalf("ListRecipients failed: %v", err)
	}
	out := make(map[string]int, len(rs))
	for _, r := range rs {
		out[r.Alias] = r.PriorityOrder
	}
	return out
}

// assertContiguous fails unless priorities are exactly 1..N.
func (f *fixture) assertContiguous() {
	f.t.Helper()
	ps, err := f.e.Store().Queries().RecipientPriorities(f.ctx)
	if err != nil {
		f.t.Fatalf("RecipientPriorities failed: %v", err)
	}
	if !contiguous(ps) {
		f.t.Fatalf("priorities are not 1..N: %v", ps)
	}
}

func (f *fixture) auditActions() []string {
	f.t.Helper()
	entries, err := f.e.AuditLog(f.ctx, 0)
	if err != nil {
		f.t.Fatalf("AuditLog failed: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, a := range entries {
		out = append(out, a.Action)
	}
	return out
}

func countAction(actions []string, action string) int {
	n := 0
	for _, a := range actions {
		if a == action {
			n++
		}
	}
	return n
}

func assertErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("expected %T, got %v (%T)", target, err, err)
	}
	return target
}
