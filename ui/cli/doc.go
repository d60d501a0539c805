// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the paydesk command-line interface with cobra.
// Every command is a thin wrapper that parses arguments, calls the
// allocation engine and renders the result.
package cli
