// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/toeirei/paydesk/internal/core"
)

// TestRecipientCommands_BasicFlow walks a recipient through its lifecycle.
func TestRecipientCommands_BasicFlow(t *testing.T) {
	setupTestDB(t)

	out := mustExecute(t, "recipient", "add", "acc1", "--name", "Ana", "--account", account(1), "--max", "$1,000")
	if !strings.Contains(out, "Recipient acc1 added at priority 1") {
		t.Fatalf("unexpected add output: %s", out)
	}
	out = mustExecute(t, "recipient", "add", "acc2", "--name", "Beto", "--account", account(2), "--max", "2000", "--priority", "1")
	if !strings.Contains(out, "Recipient acc2 added at priority 1") {
		t.Fatalf("unexpected add output: %s", out)
	}

	out = mustExecute(t, "recipient", "list")
	i1, i2 := strings.Index(out, "acc1"), strings.Index(out, "acc2")
	if i1 < 0 || i2 < 0 || i2 > i1 {
		t.Fatalf("expected acc2 listed before acc1, got: %s", out)
	}

	out = mustExecute(t, "recipient", "show", "acc1")
	if !strings.Contains(out, "Prio: 2") || !strings.Contains(out, "Max: $1,000") || !strings.Contains(out, "Status: Available") {
		t.Fatalf("unexpected show output: %s", out)
	}

	mustExecute(t, "recipient", "update", "acc1", "--max", "1500", "--name", "Ana Maria")
	out = mustExecute(t, "recipient", "show", "acc1")
	if !strings.Contains(out, "Max: $1,500") || !strings.Contains(out, "Ana Maria") {
		t.Fatalf("update not applied: %s", out)
	}

	out = mustExecute(t, "recipient", "move", "acc1", "1")
	if !strings.Contains(out, "Recipient acc1 moved to priority 1") {
		t.Fatalf("unexpected move output: %s", out)
	}
	out = mustExecute(t, "recipient", "show", "acc2")
	if !strings.Contains(out, "Prio: 2") {
		t.Fatalf("acc2 should have shifted to 2: %s", out)
	}

	out = mustExecute(t, "recipient", "deactivate", "acc2")
	if !strings.Contains(out, "Recipient acc2 deactivated") {
		t.Fatalf("unexpected deactivate output: %s", out)
	}
	if out = mustExecute(t, "recipient", "list"); strings.Contains(out, "acc2") {
		t.Fatalf("inactive recipient listed without --all: %s", out)
	}
	if out = mustExecute(t, "recipient", "list", "--all"); !strings.Contains(out, "acc2") || !strings.Contains(out, "Inactive") {
		t.Fatalf("inactive recipient missing with --all: %s", out)
	}
	out = mustExecute(t, "recipient", "activate", "acc2")
	if !strings.Contains(out, "Recipient acc2 activated") {
		t.Fatalf("unexpected activate output: %s", out)
	}

	out = mustExecute(t, "recipient", "delete", "acc2")
	if !strings.Contains(out, "Recipient acc2 deleted") {
		t.Fatalf("unexpected delete output: %s", out)
	}
	out = mustExecute(t, "db", "check-priorities")
	if !strings.Contains(out, "1 priorities, no gaps") {
		t.Fatalf("unexpected priority check: %s", out)
	}
}

func TestRecipientAdd_Validation(t *testing.T) {
	setupTestDB(t)

	_, err := executeCommand(t, nil, "recipient", "add", "bad", "--name", "X", "--account", "123", "--max", "100")
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "account_number" {
		t.Fatalf("expected account_number validation error, got %v", err)
	}

	_, err = executeCommand(t, nil, "recipient", "add", "bad", "--name", "X", "--account", account(1), "--max", "-5")
	if err == nil || !strings.Contains(err.Error(), "invalid amount") {
		t.Fatalf("expected invalid amount error, got %v", err)
	}

	if _, err = executeCommand(t, nil, "recipient", "add", "bad", "--account", account(1), "--max", "100"); err == nil {
		t.Fatalf("expected error for missing --name")
	}

	addRecipient(t, "dup", 1, "100")
	_, err = executeCommand(t, nil, "recipient", "add", "dup", "--name", "Y", "--account", account(2), "--max", "100")
	if !errors.As(err, &ve) || ve.Field != "alias" {
		t.Fatalf("expected duplicate alias error, got %v", err)
	}
}

func TestRecipientAdd_WithBank(t *testing.T) {
	setupTestDB(t)

	if _, err := executeCommand(t, nil, "recipient", "add", "acc1", "--name", "A", "--account", account(1), "--max", "100", "--bank", "Nowhere"); err == nil {
		t.Fatalf("expected error for unknown bank")
	}

	mustExecute(t, "bank", "add", "Banco Nación")
	addRecipient(t, "acc1", 1, "100", "--bank", "Banco Nación")
	out := mustExecute(t, "recipient", "show", "acc1")
	if !strings.Contains(out, "Bank: Banco Nación") {
		t.Fatalf("bank not shown: %s", out)
	}

	_, err := executeCommand(t, nil, "bank", "delete", "Banco Nación")
	var ce *core.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict deleting a referenced bank, got %v", err)
	}

	mustExecute(t, "recipient", "update", "acc1", "--bank", "")
	out = mustExecute(t, "bank", "delete", "Banco Nación")
	if !strings.Contains(out, "Bank Banco Nación deleted") {
		t.Fatalf("unexpected delete output: %s", out)
	}
}

func TestRecipientShow_NotFound(t *testing.T) {
	setupTestDB(t)
	_, err := executeCommand(t, nil, "recipient", "show", "ghost")
	var ne *core.NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if msg := describeError(err); !strings.Contains(msg, `"ghost" not found`) {
		t.Fatalf("unexpected description: %s", msg)
	}
}
