// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
)

// newRecipientCmd is the root command for recipient management.
func newRecipientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipient",
		Aliases: []string{"recipients"},
		Short:   "Manage recipient accounts (list, add, update, move, delete)",
		Long: `The 'recipient' command group manages the accounts that receive payments:
  - List recipients in priority order with their capacity this month
  - Add recipients at a given priority (the others shift down)
  - Update limits, bank or account data
  - Move a recipient to another priority
  - Activate, deactivate or delete recipients`,
	}
	cmd.AddCommand(
		newRecipientAddCmd(),
		newRecipientListCmd(),
		newRecipientShowCmd(),
		newRecipientUpdateCmd(),
		newRecipientMoveCmd(),
		newRecipientActiveCmd("activate", true),
		newRecipientActiveCmd("deactivate", false),
		newRecipientDeleteCmd(),
	)
	return cmd
}

// resolveBankID maps a --bank name to its ID. An empty name means no bank.
func resolveBankID(cmd *cobra.Command, name string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	b, err := engine.GetBank(cmd.Context(), name)
	if err != nil {
		return 0, err
	}
	return b.ID, nil
}

func newRecipientAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <alias>",
		Short: "Add a recipient",
		Long: `Adds a recipient. Without --priority it is appended at the end of the list;
with --priority it is inserted there and everyone from that position down
moves one place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			account, _ := cmd.Flags().GetString("account")
			maxStr, _ := cmd.Flags().GetString("max")
			oneTime, _ := cmd.Flags().GetBool("one-time")
			inactive, _ := cmd.Flags().GetBool("inactive")
			bankName, _ := cmd.Flags().GetString("bank")

			maxAmount, err := parseAmount(maxStr)
			if err != nil {
				return err
			}
			bankID, err := resolveBankID(cmd, bankName)
			if err != nil {
				return err
			}
			in := core.RecipientInput{
				Alias:         args[0],
				Name:          name,
				BankID:        bankID,
				AccountNumber: account,
				MaxAmount:     maxAmount,
				IsRecurring:   !oneTime,
				IsActive:      !inactive,
			}
			if cmd.Flags().Changed("priority") {
				p, _ := cmd.Flags().GetInt("priority")
				in.PriorityOrder = &p
			}
			r, err := engine.CreateRecipient(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("recipient.created", r.Alias, r.PriorityOrder))
			return nil
		},
	}
	cmd.Flags().String("name", "", "Account holder name")
	cmd.Flags().String("account", "", "22-digit account number")
	cmd.Flags().String("max", "", "Maximum amount (per month, or in total with --one-time)")
	cmd.Flags().Bool("one-time", false, "Accept a single payment ever instead of a monthly limit")
	cmd.Flags().Bool("inactive", false, "Create the recipient inactive")
	cmd.Flags().Int("priority", 0, "Priority position (1 = first choice)")
	cmd.Flags().String("bank", "", "Bank name")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func newRecipientListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipients with their capacity this month",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			reports, err := engine.DescribeRecipients(cmd.Context(), !all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(out, i18n.T("recipient.none"))
				return nil
			}
			rows := make([][]string, 0, len(reports))
			for _, rep := range reports {
				r := rep.Recipient
				rows = append(rows, []string{
					strconv.Itoa(r.PriorityOrder),
					r.Alias,
					r.Name,
					r.BankName,
					recurrenceLabel(r.IsRecurring),
					money(r.MaxAmount),
					money(rep.ReceivedThisMonth),
					money(rep.SuggestedMax),
					statusLabel(out, rep.Status),
				})
			}
			renderTable(out, []string{
				i18n.T("column.priority"), i18n.T("column.alias"), i18n.T("column.name"),
				i18n.T("column.bank"), i18n.T("column.type"), i18n.T("column.max"),
				i18n.T("column.received"), i18n.T("column.available"), i18n.T("column.status"),
			}, rows)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "Include inactive recipients")
	return cmd
}

func newRecipientShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <alias>",
		Short: "Show one recipient in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := engine.DescribeRecipient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r := rep.Recipient
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.alias"), r.Alias)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.name"), r.Name)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.account"), r.AccountNumber)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.bank"), r.BankName)
			fmt.Fprintf(out, "%s: %d\n", i18n.T("column.priority"), r.PriorityOrder)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.type"), recurrenceLabel(r.IsRecurring))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.active"), yesNo(r.IsActive))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.max"), money(r.MaxAmount))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.received"), money(rep.ReceivedThisMonth))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.available"), money(rep.SuggestedMax))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.usage"), percent(rep.CapacityPercent))
			fmt.Fprintf(out, "%s: %s\n", i18n.T("column.status"), statusLabel(out, rep.Status))
			return nil
		},
	}
}

func newRecipientUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <alias>",
		Short: "Change a recipient's attributes",
		Long:  `Only the flags given are changed. --priority moves the recipient and shifts the rows in between.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := engine.GetRecipientByAlias(ctx, args[0])
			if err != nil {
				return err
			}
			in := core.InputFromRecipient(r, r.IsActive)
			flags := cmd.Flags()
			if flags.Changed("alias") {
				in.Alias, _ = flags.GetString("alias")
			}
			if flags.Changed("name") {
				in.Name, _ = flags.GetString("name")
			}
			if flags.Changed("account") {
				in.AccountNumber, _ = flags.GetString("account")
			}
			if flags.Changed("max") {
				maxStr, _ := flags.GetString("max")
				if in.MaxAmount, err = parseAmount(maxStr); err != nil {
					return err
				}
			}
			if flags.Changed("recurring") {
				in.IsRecurring, _ = flags.GetBool("recurring")
			}
			if flags.Changed("bank") {
				name, _ := flags.GetString("bank")
				if in.BankID, err = resolveBankID(cmd, name); err != nil {
					return err
				}
			}
			if flags.Changed("priority") {
				p, _ := flags.GetInt("priority")
				in.PriorityOrder = &p
			}
			updated, err := engine.UpdateRecipient(ctx, r.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("recipient.updated", updated.Alias, updated.PriorityOrder))
			return nil
		},
	}
	cmd.Flags().String("alias", "", "New alias")
	cmd.Flags().String("name", "", "Account holder name")
	cmd.Flags().String("account", "", "22-digit account number")
	cmd.Flags().String("max", "", "Maximum amount")
	cmd.Flags().Bool("recurring", true, "Monthly limit (false = one-time)")
	cmd.Flags().Int("priority", 0, "New priority position")
	cmd.Flags().String("bank", "", "Bank name (empty clears it)")
	return cmd
}

func newRecipientMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <alias> <priority>",
		Short: "Move a recipient to another priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := strconv.Atoi(args[1])
			if err != nil {
				return &core.ValidationError{Field: "priority_order", Reason: "must be a positive integer", Err: err}
			}
			r, err := engine.MoveRecipient(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("recipient.moved", r.Alias, r.PriorityOrder))
			return nil
		},
	}
}

func newRecipientActiveCmd(use string, active bool) *cobra.Command {
	short := "Deactivate a recipient (it keeps its priority)"
	if active {
		short = "Activate a recipient"
	}
	return &cobra.Command{
		Use:   use + " <alias>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := engine.SetRecipientActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			key := "recipient.deactivated"
			if r.IsActive {
				key = "recipient.activated"
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T(key, r.Alias))
			return nil
		},
	}
}

func newRecipientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <alias>",
		Short: "Delete a recipient without payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := engine.GetRecipientByAlias(ctx, args[0])
			if err != nil {
				return err
			}
			if err := engine.DeleteRecipient(ctx, r.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("recipient.deleted", r.Alias))
			return nil
		},
	}
}
