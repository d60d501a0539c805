// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
)

func newBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bank",
		Aliases: []string{"banks"},
		Short:   "Manage the banks and wallets recipients belong to",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := engine.CreateBank(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("bank.created", b.Name))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			banks, err := engine.ListBanks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(banks) == 0 {
				fmt.Fprintln(out, i18n.T("bank.none"))
				return nil
			}
			rows := make([][]string, 0, len(banks))
			for _, b := range banks {
				rows = append(rows, []string{strconv.FormatInt(b.ID, 10), b.Name})
			}
			renderTable(out, []string{i18n.T("column.id"), i18n.T("column.name")}, rows)
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank names from a file, stdin or the built-in list",
		Long: `Reads bank names from a YAML list, a YAML mapping with a 'banks' key or a
plain text file with one name per line. Use '-' for stdin and --defaults for
the built-in list. Names that already exist are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			if defaults, _ := cmd.Flags().GetBool("defaults"); defaults {
				names = core.DefaultBankNames
			} else {
				if len(args) == 0 {
					return errors.New(i18n.T("bank.import_source_required"))
				}
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return err
					}
					defer func() { _ = f.Close() }()
					r = f
				}
				var err error
				if names, err = core.ReadBankNames(r); err != nil {
					return err
				}
			}
			res, err := engine.ImportBanks(cmd.Context(), names)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("bank.imported", len(res.Created), len(res.Skipped)))
			return nil
		},
	}
	importCmd.Flags().Bool("defaults", false, "Import the built-in bank list")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a bank that no recipient references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.DeleteBank(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("bank.deleted", args[0]))
			return nil
		},
	}

	cmd.AddCommand(add, list, importCmd, del)
	return cmd
}
