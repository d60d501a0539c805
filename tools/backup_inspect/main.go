// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// backup_inspect prints the contents of a backup written by `paydesk backup`
// without restoring it: a per-table count, or the decompressed JSON with
// -json.
//
// Usage:
//
//	go run ./tools/backup_inspect [-json] <file>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/model"
	"github.com/toeirei/paydesk/util/slicest"
)

func main() {
	asJSON := flag.Bool("json", false, "Print the decompressed snapshot as JSON")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: backup_inspect [-json] <file>")
		os.Exit(2)
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	if err := inspect(f, os.Stdout, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func inspect(r io.Reader, w io.Writer, asJSON bool) error {
	data, err := core.ReadBackup(r)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	paid := slicest.ReduceD(data.Payments, int64(0), func(p model.Payment, sum int64) int64 { return sum + p.Amount })
	fmt.Fprintf(w, "schema version: %d\n", data.SchemaVersion)
	fmt.Fprintf(w, "banks: %d\n", len(data.Banks))
	fmt.Fprintf(w, "operators: %d\n", len(data.Operators))
	fmt.Fprintf(w, "recipients: %d\n", len(data.Recipients))
	fmt.Fprintf(w, "payments: %d (total %d)\n", len(data.Payments), paid)
	fmt.Fprintf(w, "monthly balances: %d\n", len(data.MonthlyBalances))
	fmt.Fprintf(w, "audit entries: %d\n", len(data.AuditLogEntries))
	for _, r := range data.Recipients {
		fmt.Fprintf(w, "  #%d %s max=%d recurring=%t active=%t\n", r.PriorityOrder, r.Alias, r.MaxAmount, r.IsRecurring, r.IsActive)
	}
	return nil
}
