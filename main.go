// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Paydesk.
//
// Usage:
//
//	go run . [flags] <command>
//	./paydesk [flags] <command>
//
// This launches the Paydesk CLI. See --help for options.
package main

import (
	"fmt"
	"os"

	"github.com/toeirei/paydesk/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "paydesk: %v\n", err)
		os.Exit(1)
	}
}
