// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"testing"
	"time"

	"github.com/toeirei/paydesk/internal/model"
)

func TestCanReceive_RecurringBoundary(t *testing.T) {
	f := newFixture(t)
	r1 := f.add("R1", 1000, true)
	calc := f.e.Capacity()

	ok, err := calc.CanReceive(f.ctx, r1, 1000, 0)
	if err != nil || !ok {
		t.Fatalf("CanReceive(1000) = %v, %v; want true", ok, err)
	}
	ok, err = calc.CanReceive(f.ctx, r1, 1001, 0)
	if err != nil || ok {
		t.Fatalf("CanReceive(1001) = %v, %v; want false", ok, err)
	}
}

func TestCanReceive_InactiveNeverReceives(t *testing.T) {
	f := newFixture(t)
	f.add("a", 1000, true)
	r, err := f.e.SetRecipientActive(f.ctx, "a", false)
	if err != nil {
		t.Fatalf("SetRecipientActive failed: %v", err)
	}
	calc := f.e.Capacity()
	if ok, _ := calc.CanReceive(f.ctx, r, 1, 0); ok {
		t.Fatalf("inactive recipient must not receive")
	}
	if s, _ := calc.Status(f.ctx, r); s != model.StatusInactive {
		t.Fatalf("status = %s", s)
	}
	if m, _ := calc.SuggestMaxPayment(f.ctx, r); m != 0 {
		t.Fatalf("suggest = %d", m)
	}
}

func TestCapacity_RecurringUsageAndStatus(t *testing.T) {
	f := newFixture(t)
	r := f.add("a", 1000, true)
	f.mustPay("a", 400)
	calc := f.e.Capacity()

	if got, _ := calc.ReceivedThisMonth(f.ctx, r, 0); got != 400 {
		t.Fatalf("ReceivedThisMonth = %d", got)
	}
	if got, _ := calc.RemainingCapacity(f.ctx, r, 0); got != 600 {
		t.Fatalf("RemainingCapacity = %d", got)
	}
	if got, _ := calc.SuggestMaxPayment(f.ctx, r); got != 600 {
		t.Fatalf("SuggestMaxPayment = %d", got)
	}
	if got, _ := calc.CapacityPercentage(f.ctx, r); got != 40 {
		t.Fatalf("CapacityPercentage = %v", got)
	}
	if s, _ := calc.Status(f.ctx, r); s != model.StatusAvailable {
		t.Fatalf("Status = %s", s)
	}

	f.mustPay("a", 600)
	calc = f.e.Capacity()
	if s, _ := calc.Status(f.ctx, r); s != model.StatusCompletedMonthly {
		t.Fatalf("Status after filling = %s", s)
	}
	if got, _ := calc.SuggestMaxPayment(f.ctx, r); got != 0 {
		t.Fatalf("SuggestMaxPayment when full = %d", got)
	}
}

func TestCapacity_RemainingGoesNegativeAfterLimitDrops(t *testing.T) {
	f := newFixture(t)
	r := f.add("a", 1000, true)
	f.mustPay("a", 900)
	in := InputFromRecipient(r, true)
	in.MaxAmount = 500
	r, err := f.e.UpdateRecipient(f.ctx, r.ID, in)
	if err != nil {
		t.Fatalf("UpdateRecipient failed: %v", err)
	}
	calc := f.e.Capacity()
	if got, _ := calc.RemainingCapacity(f.ctx, r, 0); got != -400 {
		t.Fatalf("RemainingCapacity = %d, want -400", got)
	}
	if got, _ := calc.SuggestMaxPayment(f.ctx, r); got != 0 {
		t.Fatalf("SuggestMaxPayment = %d, want 0", got)
	}
	if s, _ := calc.Status(f.ctx, r); s != model.StatusCompletedMonthly {
		t.Fatalf("Status = %s", s)
	}
}

func TestCapacity_ResetsAtMonthBoundary(t *testing.T) {
	f := newFixture(t)
	r := f.add("a", 1000, true)
	f.clk.Set(time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC))
	f.mustPay("a", 1000)
	if ok, _ := f.e.Capacity().CanReceive(f.ctx, r, 1, 0); ok {
		t.Fatalf("full recipient must not receive in March")
	}

	f.clk.Set(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	calc := f.e.Capacity()
	if got, _ := calc.ReceivedThisMonth(f.ctx, r, 0); got != 0 {
		t.Fatalf("ReceivedThisMonth in April = %d", got)
	}
	if ok, _ := calc.CanReceive(f.ctx, r, 1000, 0); !ok {
		t.Fatalf("capacity must be back in April")
	}
	if got, _ := calc.ReceivedLifetime(f.ctx, r, 0); got != 1000 {
		t.Fatalf("ReceivedLifetime = %d", got)
	}
}

func TestCapacity_MonthFollowsClockZone(t *testing.T) {
	f := newFixture(t)
	r := f.add("a", 1000, true)
	art := time.FixedZone("ART", -3*60*60)
	// 2026-04-01 01:00 UTC is still March 31 in ART.
	f.clk.Set(time.Date(2026, time.April, 1, 1, 0, 0, 0, time.UTC))
	f.mustPay("a", 300)

	f.clk.Set(time.Date(2026, time.March, 31, 23, 0, 0, 0, art))
	if got, _ := f.e.Capacity().ReceivedThisMonth(f.ctx, r, 0); got != 300 {
		t.Fatalf("ReceivedThisMonth in ART March = %d, want 300", got)
	}
}

func TestCapacity_OneTime(t *testing.T) {
	f := newFixture(t)
	r := f.add("once", 10000, false)
	calc := f.e.Capacity()
	if s, _ := calc.Status(f.ctx, r); s != model.StatusAvailableOneTime {
		t.Fatalf("Status = %s", s)
	}
	if ok, _ := calc.CanReceive(f.ctx, r, 10001, 0); ok {
		t.Fatalf("one-time recipient must respect max amount")
	}
	if got, _ := calc.SuggestMaxPayment(f.ctx, r); got != 10000 {
		t.Fatalf("SuggestMaxPayment = %d", got)
	}

	p := f.mustPay("once", 5000)
	calc = f.e.Capacity()
	if s, _ := calc.Status(f.ctx, r); s != model.StatusCompletedOneTime {
		t.Fatalf("Status = %s", s)
	}
	if ok, _ := calc.CanReceive(f.ctx, r, 1, 0); ok {
		t.Fatalf("one-time recipient must not receive twice")
	}
	if ok, _ := calc.CanReceive(f.ctx, r, 7000, p.ID); !ok {
		t.Fatalf("excluding the only payment must free the recipient")
	}

	// Still exhausted next month.
	f.clk.Set(time.Date(2026, time.May, 2, 9, 0, 0, 0, time.UTC))
	if ok, _ := f.e.Capacity().CanReceive(f.ctx, r, 1, 0); ok {
		t.Fatalf("one-time recipient reset by month change")
	}
}

func TestStatus_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	r := f.add("a", 1000, true)
	f.mustPay("a", 1000)
	calc := f.e.Capacity()
	first, err := calc.Status(f.ctx, r)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if s, _ := calc.Status(f.ctx, r); s != first {
			t.Fatalf("Status changed between calls: %s vs %s", s, first)
		}
	}
	stored := f.recipient("a")
	if !stored.UpdatedAt.Equal(r.UpdatedAt) {
		t.Fatalf("Status must not write")
	}
}

func TestCapacityPercentage_Pure(t *testing.T) {
	if got := capacityPercentage(0, 10); got != 100 {
		t.Fatalf("zero max = %v", got)
	}
	if got := capacityPercentage(200, 50); got != 25 {
		t.Fatalf("25%% case = %v", got)
	}
	if got := capacityPercentage(100, 150); got != 150 {
		t.Fatalf("over limit = %v", got)
	}
}
