// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
	"github.com/toeirei/paydesk/internal/logging"
	"github.com/toeirei/paydesk/internal/model"
	"github.com/toeirei/paydesk/util/slicest"
	"golang.org/x/term"
)

func newSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <amount>",
		Short: "Show which recipient should receive a payment",
		Long: `Picks the first active recipient, in priority order, that can take the
whole amount. Nothing is recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			r, err := engine.SelectBest(cmd.Context(), amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("suggest.result", money(amount), r.Alias))
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("column.name"), r.Name)
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("column.bank"), r.BankName)
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("column.account"), r.AccountNumber)
			if copyAlias, _ := cmd.Flags().GetBool("copy"); copyAlias {
				if err := clipboard.WriteAll(r.AccountNumber); err != nil {
					logging.Warnf("could not copy to clipboard: %v", err)
				} else {
					fmt.Fprintln(out, i18n.T("suggest.copied"))
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("copy", false, "Copy the account number to the clipboard")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <amount> <alias>",
		Short: "Check that a recipient can take an amount without recording it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			r, err := engine.ValidateAndAssign(cmd.Context(), amount, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("validate.ok", r.Alias, money(amount)))
			return nil
		},
	}
}

// readPassword prompts on the terminal when stdin is one.
func readPassword(cmd *cobra.Command) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), i18n.T("operator.password_prompt"))
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolveOperator identifies the operator recording a payment. With a
// password (flag or prompt) the credentials are checked.
func resolveOperator(cmd *cobra.Command) (model.Operator, error) {
	username := appConfig.Operator
	if username == "" {
		return model.Operator{}, &core.ValidationError{Field: "operator", Reason: i18n.T("operator.required")}
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		if password, err = readPassword(cmd); err != nil {
			return model.Operator{}, err
		}
	}
	if password == "" {
		return engine.GetOperator(cmd.Context(), username)
	}
	return engine.Authenticate(cmd.Context(), username, password)
}

func newPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <amount> <alias>",
		Short: "Record a payment to a recipient",
		Long: `Records a payment after checking, under lock, that the recipient can still
take it. The operator comes from --operator or the config file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			op, err := resolveOperator(cmd)
			if err != nil {
				return err
			}
			proof, _ := cmd.Flags().GetString("proof")
			notes, _ := cmd.Flags().GetString("notes")
			p, err := engine.RecordPayment(cmd.Context(), core.PaymentRequest{
				Amount:     amount,
				Alias:      args[1],
				OperatorID: op.ID,
				ProofRef:   proof,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("pay.recorded", money(p.Amount), p.RecipientAlias, p.Reference))
			return nil
		},
	}
	cmd.Flags().String("proof", "", "Proof of payment (receipt file or transfer id)")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().String("password", "", "Operator password (prompted on a terminal when omitted)")
	return cmd
}

func newAmendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amend <payment-id>",
		Short: "Correct the amount, recipient or notes of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return &core.ValidationError{Field: "payment_id", Reason: "must be a number", Err: err}
			}
			p, err := engine.GetPayment(ctx, id)
			if err != nil {
				return err
			}
			am := core.PaymentAmendment{Amount: p.Amount, Alias: p.RecipientAlias, Notes: p.Notes}
			flags := cmd.Flags()
			if flags.Changed("amount") {
				s, _ := flags.GetString("amount")
				if am.Amount, err = parseAmount(s); err != nil {
					return err
				}
			}
			if flags.Changed("alias") {
				am.Alias, _ = flags.GetString("alias")
			}
			if flags.Changed("notes") {
				am.Notes, _ = flags.GetString("notes")
			}
			amended, err := engine.AmendPayment(ctx, id, am)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("amend.done", amended.Reference, money(amended.Amount), amended.RecipientAlias))
			return nil
		},
	}
	cmd.Flags().String("amount", "", "New amount")
	cmd.Flags().String("alias", "", "New recipient alias")
	cmd.Flags().String("notes", "", "New notes")
	return cmd
}

// monthFlags reads --year/--month, defaulting to the current month.
func monthFlags(cmd *cobra.Command) (int, time.Month) {
	now := engine.Clock().Now()
	year, month := now.Year(), now.Month()
	if cmd.Flags().Changed("year") {
		year, _ = cmd.Flags().GetInt("year")
	}
	if cmd.Flags().Changed("month") {
		m, _ := cmd.Flags().GetInt("month")
		month = time.Month(m)
	}
	return year, month
}

func addMonthFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year", 0, "Year (default: current)")
	cmd.Flags().Int("month", 0, "Month 1-12 (default: current)")
}

func newPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List payments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month := 0, time.Month(0)
			if all, _ := cmd.Flags().GetBool("all"); !all {
				year, month = monthFlags(cmd)
			}
			alias, _ := cmd.Flags().GetString("alias")
			payments, err := engine.ListPayments(cmd.Context(), year, month, alias)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(payments) == 0 {
				fmt.Fprintln(out, i18n.T("payments.none"))
				return nil
			}
			loc := engine.Clock().Now().Location()
			rows := make([][]string, 0, len(payments))
			total := slicest.ReduceD(payments, int64(0), func(p model.Payment, sum int64) int64 { return sum + p.Amount })
			for _, p := range payments {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					p.CreatedAt.In(loc).Format("2006-01-02 15:04"),
					p.RecipientAlias,
					money(p.Amount),
					p.Reference,
					p.ProofRef,
					p.Notes,
				})
			}
			renderTable(out, []string{
				i18n.T("column.id"), i18n.T("column.date"), i18n.T("column.alias"), i18n.T("column.amount"),
				i18n.T("column.reference"), i18n.T("column.proof"), i18n.T("column.notes"),
			}, rows)
			fmt.Fprintln(out, i18n.T("payments.total", len(payments), money(total)))
			return nil
		},
	}
	addMonthFlags(cmd)
	cmd.Flags().Bool("all", false, "List payments of every month")
	cmd.Flags().String("alias", "", "Only payments to this recipient")
	return cmd
}
