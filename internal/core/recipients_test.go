// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestCreateRecipient_InsertAtTopShiftsOthers(t *testing.T) {
	f := newFixture(t)
	f.add("old1", 1000, true)
	f.add("old2", 1000, true)

	created := f.addAt("new", 1000, 1)
	if created.PriorityOrder != 1 {
		t.Fatalf("new recipient at %d, want 1", created.PriorityOrder)
	}
	got := f.priorities()
	want := map[string]int{"new": 1, "old1": 2, "old2": 3}
	for alias, p := range want {
		if got[alias] != p {
			t.Fatalf("priorities = %v, want %v", got, want)
		}
	}
}

func TestCreateRecipient_AppendsAndClamps(t *testing.T) {
	f := newFixture(t)
	a := f.add("a", 1000, true)
	if a.PriorityOrder != 1 {
		t.Fatalf("first recipient at %d", a.PriorityOrder)
	}
	far := f.addAt("far", 1000, 50)
	if far.PriorityOrder != 2 {
		t.Fatalf("clamped priority = %d, want 2", far.PriorityOrder)
	}
	f.assertContiguous()
}

func TestCreateRecipient_Validation(t *testing.T) {
	f := newFixture(t)
	f.add("taken", 1000, true)

	zero := 0
	cases := []struct {
		name  string
		mut   func(*RecipientInput)
		field string
	}{
		{"empty alias", func(in *RecipientInput) { in.Alias = "  " }, "alias"},
		{"empty name", func(in *RecipientInput) { in.Name = "" }, "name"},
		{"short account", func(in *RecipientInput) { in.AccountNumber = "123" }, "account_number"},
		{"letters in account", func(in *RecipientInput) { in.AccountNumber = "00000000000000000000ab" }, "account_number"},
		{"zero max", func(in *RecipientInput) { in.MaxAmount = 0 }, "max_amount"},
		{"zero priority", func(in *RecipientInput) { in.PriorityOrder = &zero }, "priority_order"},
		{"duplicate alias", func(in *RecipientInput) { in.Alias = "taken" }, "alias"},
		{"duplicate account", func(in *RecipientInput) { in.AccountNumber = fmt.Sprintf("%022d", 1) }, "account_number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input("fresh", 1000, true)
			tc.mut(&in)
			_, err := f.e.CreateRecipient(f.ctx, in)
			ve := assertErrorAs[*ValidationError](t, err)
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
	if n := len(f.priorities()); n != 1 {
		t.Fatalf("rejected inputs must not be stored, have %d recipients", n)
	}
}

func TestCreateRecipient_UnknownBank(t *testing.T) {
	f := newFixture(t)
	in := f.input("a", 1000, true)
	in.BankID = 42
	_, err := f.e.CreateRecipient(f.ctx, in)
	nf := assertErrorAs[*NotFoundError](t, err)
	if nf.Kind != "bank" {
		t.Fatalf("unexpected kind %q", nf.Kind)
	}
}

func TestCreateRecipient_WithBank(t *testing.T) {
	f := newFixture(t)
	bank, err := f.e.CreateBank(f.ctx, "Brubank")
	if err != nil {
		t.Fatalf("CreateBank failed: %v", err)
	}
	in := f.input("a", 1000, true)
	in.BankID = bank.ID
	r, err := f.e.CreateRecipient(f.ctx, in)
	if err != nil {
		t.Fatalf("CreateRecipient failed: %v", err)
	}
	if r.BankName != "Brubank" {
		t.Fatalf("bank name = %q", r.BankName)
	}
}

func TestDeleteRecipient_ClosesGap(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	b := f.add("b", 1000, true)
	f.add("c", 1000, true)

	if err := f.e.DeleteRecipient(f.ctx, b.ID); err != nil {
		t.Fatalf("DeleteRecipient failed: %v", err)
	}
	got := f.priorities()
	if len(got) != 2 || got["a"] != 1 || got["c"] != 2 {
		t.Fatalf("priorities after delete = %v", got)
	}
	if countAction(f.auditActions(), ActionRecipientDeleted) != 1 {
		t.Fatalf("expected one delete audit entry")
	}
}

func TestDeleteRecipient_WithPaymentsIsConflict(t *testing.T) {
	f := newFixture(t)
	a := f.add("a", 1000, true)
	f.mustPay("a", 100)
	err := f.e.DeleteRecipient(f.ctx, a.ID)
	assertErrorAs[*ConflictError](t, err)
	if _, err := f.e.GetRecipient(f.ctx, a.ID); err != nil {
		t.Fatalf("recipient must survive: %v", err)
	}
}

func TestDeleteRecipient_Unknown(t *testing.T) {
	f := newFixture(t)
	assertErrorAs[*NotFoundError](t, f.e.DeleteRecipient(f.ctx, 999))
}

func TestUpdateRecipient_MovesAndReplacesAttributes(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	f.add("b", 1000, true)
	c := f.add("c", 1000, true)

	in := InputFromRecipient(c, true)
	in.Name = "Carla"
	in.MaxAmount = 2500
	top := 1
	in.PriorityOrder = &top
	updated, err := f.e.UpdateRecipient(f.ctx, c.ID, in)
	if err != nil {
		t.Fatalf("UpdateRecipient failed: %v", err)
	}
	if updated.Name != "Carla" || updated.MaxAmount != 2500 || updated.PriorityOrder != 1 {
		t.Fatalf("unexpected updated recipient: %+v", updated)
	}
	got := f.priorities()
	if got["c"] != 1 || got["a"] != 2 || got["b"] != 3 {
		t.Fatalf("priorities = %v", got)
	}
}

func TestUpdateRecipient_DuplicateAliasRejected(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	b := f.add("b", 1000, true)
	in := InputFromRecipient(b, true)
	in.Alias = "a"
	_, err := f.e.UpdateRecipient(f.ctx, b.ID, in)
	ve := assertErrorAs[*ValidationError](t, err)
	if ve.Field != "alias" {
		t.Fatalf("field = %q", ve.Field)
	}
	// Keeping its own alias and account is not a conflict.
	if _, err := f.e.UpdateRecipient(f.ctx, b.ID, InputFromRecipient(b, true)); err != nil {
		t.Fatalf("self update failed: %v", err)
	}
}

func TestMoveRecipient(t *testing.T) {
	f := newFixture(t)
	for _, alias := range []string{"a", "b", "c", "d"} {
		f.add(alias, 1000, true)
	}
	if _, err := f.e.MoveRecipient(f.ctx, "a", 3); err != nil {
		t.Fatalf("MoveRecipient failed: %v", err)
	}
	got := f.priorities()
	if got["b"] != 1 || got["c"] != 2 || got["a"] != 3 || got["d"] != 4 {
		t.Fatalf("priorities = %v", got)
	}
	moved, err := f.e.MoveRecipient(f.ctx, "b", 100)
	if err != nil {
		t.Fatalf("MoveRecipient clamp failed: %v", err)
	}
	if moved.PriorityOrder != 4 {
		t.Fatalf("clamped move = %d, want 4", moved.PriorityOrder)
	}
	f.assertContiguous()

	moved, err = f.e.MoveRecipient(f.ctx, " d ", 1)
	if err != nil {
		t.Fatalf("MoveRecipient with padded alias failed: %v", err)
	}
	if moved.Alias != "d" || moved.PriorityOrder != 1 {
		t.Fatalf("moved = %s@%d, want d@1", moved.Alias, moved.PriorityOrder)
	}

	_, err = f.e.MoveRecipient(f.ctx, "a", 0)
	assertErrorAs[*ValidationError](t, err)
	_, err = f.e.MoveRecipient(f.ctx, "nobody", 1)
	assertErrorAs[*NotFoundError](t, err)
}

func TestSetRecipientActive_KeepsPriority(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	f.add("b", 1000, true)
	r, err := f.e.SetRecipientActive(f.ctx, "b", false)
	if err != nil {
		t.Fatalf("SetRecipientActive failed: %v", err)
	}
	if r.IsActive || r.PriorityOrder != 2 {
		t.Fatalf("unexpected recipient %+v", r)
	}
	active, err := f.e.ListActive(f.ctx, true)
	if err != nil || len(active) != 1 || active[0].Alias != "a" {
		t.Fatalf("ListActive = %v, %v", active, err)
	}
}

// Random create/move/delete sequences must always leave priorities 1..N.
func TestPriorities_StayContiguousUnderRandomOperations(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))
	next := 0
	for step := 0; step < 60; step++ {
		rs, err := f.e.ListRecipients(f.ctx, false, true)
		if err != nil {
			t.Fatalf("ListRecipients failed: %v", err)
		}
		switch op := rng.Intn(3); {
		case op == 0 || len(rs) < 2:
			next++
			p := rng.Intn(len(rs)+3) + 1
			f.addAt(fmt.Sprintf("x%d", next), 1000, p)
		case op == 1:
			r := rs[rng.Intn(len(rs))]
			if _, err := f.e.MoveRecipient(f.ctx, r.Alias, rng.Intn(len(rs)+2)+1); err != nil {
				t.Fatalf("step %d: MoveRecipient failed: %v", step, err)
			}
		default:
			r := rs[rng.Intn(len(rs))]
			if err := f.e.DeleteRecipient(f.ctx, r.ID); err != nil {
				t.Fatalf("step %d: DeleteRecipient failed: %v", step, err)
			}
		}
		f.assertContiguous()
	}
}

func TestCheckPriorities_RepairsGaps(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	b := f.add("b", 1000, true)
	if err := f.e.Store().Queries().SetRecipientPriority(f.ctx, b.ID, 7); err != nil {
		t.Fatalf("SetRecipientPriority failed: %v", err)
	}

	res, err := f.e.CheckPriorities(f.ctx, false)
	if err != nil || res.Contiguous || res.Repaired {
		t.Fatalf("CheckPriorities(false) = %+v, %v", res, err)
	}
	res, err = f.e.CheckPriorities(f.ctx, true)
	if err != nil || !res.Repaired {
		t.Fatalf("CheckPriorities(true) = %+v, %v", res, err)
	}
	f.assertContiguous()
	if got := f.priorities(); got["b"] != 2 {
		t.Fatalf("priorities = %v", got)
	}
}
