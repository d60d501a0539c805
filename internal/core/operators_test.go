// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"errors"
	"testing"

	"github.com/toeirei/paydesk/internal/model"
)

func TestCreateOperatorAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	admin, err := f.e.CreateOperator(f.ctx, "boss", "s3cret-pass", model.RoleAdministrator)
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}
	if !admin.IsAdministrator() || admin.PasswordHash == "s3cret-pass" {
		t.Fatalf("unexpected operator %+v", admin)
	}

	got, err := f.e.Authenticate(f.ctx, "boss", "s3cret-pass")
	if err != nil || got.ID != admin.ID {
		t.Fatalf("Authenticate = %+v, %v", got, err)
	}
	if _, err := f.e.Authenticate(f.ctx, "boss", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := f.e.Authenticate(f.ctx, "nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}

	ops, err := f.e.ListOperators(f.ctx)
	if err != nil || len(ops) != 2 {
		t.Fatalf("ListOperators = %v, %v", ops, err)
	}
}

func TestCreateOperator_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name, user, pass string
		role             model.Role
	}{
		{"empty user", "", "long-enough", model.RoleOperator},
		{"short password", "x", "short", model.RoleOperator},
		{"bad role", "x", "long-enough", model.Role("root")},
		{"duplicate", "cashier", "long-enough", model.RoleOperator},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.e.CreateOperator(f.ctx, tc.user, tc.pass, tc.role)
			assertErrorAs[*ValidationError](t, err)
		})
	}
}

func TestSetOperatorPassword(t *testing.T) {
	f := newFixture(t)
	if err := f.e.SetOperatorPassword(f.ctx, "cashier", "brand-new-pass"); err != nil {
		t.Fatalf("SetOperatorPassword failed: %v", err)
	}
	if _, err := f.e.Authenticate(f.ctx, "cashier", "brand-new-pass"); err != nil {
		t.Fatalf("Authenticate with new password: %v", err)
	}
	if _, err := f.e.Authenticate(f.ctx, "cashier", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	assertErrorAs[*ValidationError](t, f.e.SetOperatorPassword(f.ctx, "cashier", "short"))
	assertErrorAs[*NotFoundError](t, f.e.SetOperatorPassword(f.ctx, "ghost", "long-enough"))
}
