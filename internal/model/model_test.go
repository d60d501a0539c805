// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"testing"
	"time"
)

func TestPaymentString(t *testing.T) {
	p := Payment{Amount: 5000, RecipientAlias: "juan.mp", CreatedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
	if got := p.String(); got != "$5000 to juan.mp on 2026-03-04" {
		t.Fatalf("unexpected String(): %q", got)
	}
	p.RecipientAlias = ""
	p.RecipientID = 7
	if got := p.String(); got != "$5000 to #7 on 2026-03-04" {
		t.Fatalf("unexpected String() without alias: %q", got)
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []Status{StatusCompletedOneTime, StatusCompletedMonthly} {
		if !s.IsCompleted() || s.IsAvailable() {
			t.Fatalf("%s should be completed only", s)
		}
	}
	for _, s := range []Status{StatusAvailable, StatusAvailableOneTime} {
		if s.IsCompleted() || !s.IsAvailable() {
			t.Fatalf("%s should be available only", s)
		}
	}
	if StatusInactive.IsCompleted() || StatusInactive.IsAvailable() {
		t.Fatalf("inactive is neither available nor completed")
	}
}

func TestSummaryUsagePercent(t *testing.T) {
	if got := (Summary{}).UsagePercent(); got != 0 {
		t.Fatalf("zero capacity should yield 0, got %v", got)
	}
	s := Summary{TotalCapacity: 2000, TotalUsed: 500}
	if got := s.UsagePercent(); got != 25 {
		t.Fatalf("UsagePercent = %v, want 25", got)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdministrator.Valid() || !RoleOperator.Valid() {
		t.Fatalf("built-in roles must be valid")
	}
	if Role("auditor").Valid() {
		t.Fatalf("unknown role reported valid")
	}
	if !(Operator{Role: RoleAdministrator}).IsAdministrator() {
		t.Fatalf("administrator not recognised")
	}
}
