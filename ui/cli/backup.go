// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a compressed snapshot of the whole database",
		Long: `Exports banks, operators, recipients, payments, balances and the audit log
as zstd-compressed JSON. Without a file the snapshot goes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := engine.Backup(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				return core.WriteBackup(cmd.OutOrStdout(), data)
			}
			f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			if err := core.WriteBackup(f, data); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("backup.written", args[0], len(data.Recipients), len(data.Payments)))
			return nil
		},
	}
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), question+" [y/N] ")
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a snapshot written by 'backup'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}
			data, err := core.ReadBackup(r)
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				if args[0] == "-" || !confirm(cmd, i18n.T("restore.confirm", len(data.Recipients), len(data.Payments))) {
					return errors.New(i18n.T("restore.aborted"))
				}
			}
			if err := engine.Restore(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.done", len(data.Recipients), len(data.Payments)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database housekeeping",
	}

	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run engine-specific maintenance (VACUUM, ANALYZE, OPTIMIZE)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.Maintain(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("db.maintained", engine.Store().Type()))
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check-priorities",
		Short: "Verify that recipient priorities are 1..N without gaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			repair, _ := cmd.Flags().GetBool("repair")
			res, err := engine.CheckPriorities(cmd.Context(), repair)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case res.Repaired:
				fmt.Fprintln(out, i18n.T("db.priorities_repaired", res.Count))
			case res.Contiguous:
				fmt.Fprintln(out, i18n.T("db.priorities_ok", res.Count))
			default:
				return errors.New(i18n.T("db.priorities_broken", res.Count))
			}
			return nil
		},
	}
	check.Flags().Bool("repair", false, "Renumber priorities when a gap is found")

	cmd.AddCommand(maintain, check)
	return cmd
}
