// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/i18n"
	"github.com/toeirei/paydesk/internal/model"
)

// passwordArg reads --password or prompts for it.
func passwordArg(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	return readPassword(cmd)
}

func newOperatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operator",
		Aliases: []string{"operators"},
		Short:   "Manage the operators allowed to record payments",
	}

	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Add an operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd)
			if err != nil {
				return err
			}
			role, _ := cmd.Flags().GetString("role")
			op, err := engine.CreateOperator(cmd.Context(), args[0], password, model.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("operator.created", op.Username, string(op.Role)))
			return nil
		},
	}
	add.Flags().String("role", string(model.RoleOperator), "Role: operator or administrator")
	add.Flags().String("password", "", "Password (prompted when omitted)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := engine.ListOperators(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ops) == 0 {
				fmt.Fprintln(out, i18n.T("operator.none"))
				return nil
			}
			loc := engine.Clock().Now().Location()
			rows := make([][]string, 0, len(ops))
			for _, o := range ops {
				rows = append(rows, []string{o.Username, string(o.Role), o.CreatedAt.In(loc).Format("2006-01-02")})
			}
			renderTable(out, []string{i18n.T("column.username"), i18n.T("column.role"), i18n.T("column.created")}, rows)
			return nil
		},
	}

	passwd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change an operator's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd)
			if err != nil {
				return err
			}
			if err := engine.SetOperatorPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("operator.password_changed", args[0]))
			return nil
		},
	}
	passwd.Flags().String("password", "", "New password (prompted when omitted)")

	cmd.AddCommand(add, list, passwd)
	return cmd
}
