// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/toeirei/paydesk/internal/model"
)

var storeSeq atomic.Int64

// newTestStore opens a private in-memory SQLite store. Every call gets its
// own database, also within one test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, storeSeq.Add(1))
	s, err := NewStoreFromDSN(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// seedRecipients appends n recipients at priorities 1..n named r1..rn.
func seedRecipients(t *testing.T, s *Store, n int) []model.Recipient {
	t.Helper()
	ctx := context.Background()
	out := make([]model.Recipient, 0, n)
	for i := 1; i <= n; i++ {
		r := model.Recipient{
			Alias:         fmt.Sprintf("r%d", i),
			Name:          fmt.Sprintf("Recipient %d", i),
			AccountNumber: fmt.Sprintf("%022d", i),
			MaxAmount:     1000,
			IsRecurring:   true,
			PriorityOrder: i,
			IsActive:      true,
			CreatedAt:     testNow,
			UpdatedAt:     testNow,
		}
		if err := s.Queries().InsertRecipient(ctx, &r); err != nil {
			t.Fatalf("InsertRecipient(%s) failed: %v", r.Alias, err)
		}
		out = append(out, r)
	}
	return out
}

func seedOperator(t *testing.T, s *Store) model.Operator {
	t.Helper()
	o := model.Operator{Username: "cashier", Role: model.RoleOperator, CreatedAt: testNow}
	if err := s.Queries().InsertOperator(context.Background(), &o); err != nil {
		t.Fatalf("InsertOperator failed: %v", err)
	}
	return o
}

// priorityByAlias maps alias to priority_order.
func priorityByAlias(t *testing.T, s *Store) map[string]int {
	t.Helper()
	rs, err := s.Queries().ListRecipients(context.Background(), false, true)
	if err != nil {
		t.Fatalf("ListRecipients failed: %v", err)
	}
	out := make(map[string]int, len(rs))
	for _, r := range rs {
		out[r.Alias] = r.PriorityOrder
	}
	return out
}
