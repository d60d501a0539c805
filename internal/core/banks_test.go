// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"strings"
	"testing"
)

func TestImportBanks_Idempotent(t *testing.T) {
	f := newFixture(t)
	res, err := f.e.ImportBanks(f.ctx, []string{"Prex", " Lemon ", "", "Prex"})
	if err != nil {
		t.Fatalf("ImportBanks failed: %v", err)
	}
	if len(res.Created) != 2 || len(res.Skipped) != 0 {
		t.Fatalf("first import = %+v", res)
	}
	res, err = f.e.ImportBanks(f.ctx, []string{"Lemon", "Modo"})
	if err != nil {
		t.Fatalf("second ImportBanks failed: %v", err)
	}
	if len(res.Created) != 1 || res.Created[0] != "Modo" || len(res.Skipped) != 1 {
		t.Fatalf("second import = %+v", res)
	}
	banks, _ := f.e.ListBanks(f.ctx)
	if len(banks) != 3 {
		t.Fatalf("banks = %v", banks)
	}
}

func TestImportBanks_Defaults(t *testing.T) {
	f := newFixture(t)
	res, err := f.e.ImportBanks(f.ctx, DefaultBankNames)
	if err != nil {
		t.Fatalf("ImportBanks failed: %v", err)
	}
	if len(res.Created) != len(DefaultBankNames) {
		t.Fatalf("created %d of %d default banks", len(res.Created), len(DefaultBankNames))
	}
}

func TestCreateAndDeleteBank(t *testing.T) {
	f := newFixture(t)
	bank, err := f.e.CreateBank(f.ctx, "Ualá")
	if err != nil {
		t.Fatalf("CreateBank failed: %v", err)
	}
	_, err = f.e.CreateBank(f.ctx, "Ualá")
	assertErrorAs[*ValidationError](t, err)
	_, err = f.e.CreateBank(f.ctx, " ")
	assertErrorAs[*ValidationError](t, err)

	in := f.input("a", 1000, true)
	in.BankID = bank.ID
	r, err := f.e.CreateRecipient(f.ctx, in)
	if err != nil {
		t.Fatalf("CreateRecipient failed: %v", err)
	}
	assertErrorAs[*ConflictError](t, f.e.DeleteBank(f.ctx, "Ualá"))

	if err := f.e.DeleteRecipient(f.ctx, r.ID); err != nil {
		t.Fatalf("DeleteRecipient failed: %v", err)
	}
	if err := f.e.DeleteBank(f.ctx, "Ualá"); err != nil {
		t.Fatalf("DeleteBank failed: %v", err)
	}
	assertErrorAs[*NotFoundError](t, f.e.DeleteBank(f.ctx, "Ualá"))
}

func TestReadBankNames(t *testing.T) {
	cases := []struct {
		name, in string
		want     []string
	}{
		{"sequence", "- Prex\n- Lemon\n", []string{"Prex", "Lemon"}},
		{"mapping", "banks:\n  - Modo\n  - Reba\n", []string{"Modo", "Reba"}},
		{"lines", "Banco Galicia\n\n  Brubank  \n", []string{"Banco Galicia", "Brubank"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadBankNames(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("ReadBankNames failed: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
