// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
	"github.com/toeirei/paydesk/internal/model"
	"github.com/toeirei/paydesk/util/mapst"
	"github.com/toeirei/paydesk/util/slicest"
)

func printSummary(out io.Writer, s model.Summary) {
	fmt.Fprintln(out, i18n.T("summary.title"))
	fmt.Fprintf(out, "  %s: %d\n", i18n.T("summary.total_recipients"), s.TotalRecipients)
	fmt.Fprintf(out, "  %s: %d\n", i18n.T("summary.active_recipients"), s.ActiveRecipients)
	fmt.Fprintf(out, "  %s: %d\n", i18n.T("summary.available_recipients"), s.AvailableRecipients)
	fmt.Fprintf(out, "  %s: %d\n", i18n.T("summary.completed_this_month"), s.CompletedThisMonth)
	fmt.Fprintf(out, "  %s: %s\n", i18n.T("summary.total_capacity"), money(s.TotalCapacity))
	fmt.Fprintf(out, "  %s: %s (%s)\n", i18n.T("summary.total_used"), money(s.TotalUsed), percent(s.UsagePercent()))

	for _, st := range mapst.SortedKeys(s.CountsByStatus) {
		fmt.Fprintf(out, "    %s: %d\n", statusLabel(out, st), s.CountsByStatus[st])
	}
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show recipient availability and capacity usage this month",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := engine.Summary(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newTotalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show payment totals for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month := monthFlags(cmd)
			t, err := engine.MonthlyTotals(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("totals.title", fmt.Sprintf("%04d-%02d", t.Year, t.Month)))
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("totals.amount"), money(t.TotalAmount))
			fmt.Fprintf(out, "  %s: %d\n", i18n.T("totals.payments"), t.PaymentCount)
			fmt.Fprintf(out, "  %s: %d\n", i18n.T("totals.recipients"), t.UniqueRecipients)
			fmt.Fprintf(out, "  %s: %d\n", i18n.T("totals.operators"), t.UniqueOperators)
			return nil
		},
	}
	addMonthFlags(cmd)
	return cmd
}

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <alias>",
		Short: "Show the cached monthly balance of a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			year, month := monthFlags(cmd)
			if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
				if _, err := engine.RebuildBalances(ctx, year, month); err != nil {
					return err
				}
			}
			b, err := engine.MonthlyBalance(ctx, args[0], year, month)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("balance.line", args[0], fmt.Sprintf("%04d-%02d", b.Year, int(b.Month)), money(b.TotalReceived), b.PaymentCount))
			return nil
		},
	}
	addMonthFlags(cmd)
	cmd.Flags().Bool("rebuild", false, "Recompute the month's balances from payments first")
	return cmd
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Dry-run recipient selection for a set of amounts",
		Long: `For each amount, lists the recipients that could take it, the one that
would be chosen and how much of its capacity would be left over.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetStringArray("amount")
			amounts, err := slicest.MapX(raw, parseAmount)
			if err != nil {
				return err
			}
			rep, err := engine.Probe(cmd.Context(), amounts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(rep.Recipients))
			for _, r := range rep.Recipients {
				rows = append(rows, []string{
					strconv.Itoa(r.Recipient.PriorityOrder), r.Recipient.Alias,
					money(r.Recipient.MaxAmount), money(r.ReceivedThisMonth), money(r.SuggestedMax),
					statusLabel(out, r.Status),
				})
			}
			renderTable(out, []string{
				i18n.T("column.priority"), i18n.T("column.alias"), i18n.T("column.max"),
				i18n.T("column.received"), i18n.T("column.available"), i18n.T("column.status"),
			}, rows)

			rows = rows[:0]
			for _, res := range rep.Results {
				aliases := slicest.Map(res.Eligible, func(c core.ProbeCandidate) string { return c.Alias })
				best, waste := i18n.T("probe.none"), "-"
				if res.Best != nil {
					best = res.Best.Alias
					waste = fmt.Sprintf("%s (%s)", money(res.Waste), percent(res.WastePercent))
				}
				rows = append(rows, []string{money(res.Amount), strconv.Itoa(len(res.Eligible)), strings.Join(aliases, ", "), best, waste})
			}
			renderTable(out, []string{
				i18n.T("column.amount"), i18n.T("column.eligible"), i18n.T("column.candidates"),
				i18n.T("column.best"), i18n.T("column.waste"),
			}, rows)
			printSummary(out, rep.Summary)
			return nil
		},
	}
	cmd.Flags().StringArray("amount", nil, "Amount to probe (repeatable; default: a built-in set)")
	return cmd
}

func newRolloverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Close the previous month and report recurring recipients",
		Long: `Run on the 1st of the month. Recurring capacity resets by itself because it
is counted per calendar month; rollover rebuilds last month's balances,
reports them and writes an audit entry. Use --force on another day and
--dry-run to only report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dry, _ := cmd.Flags().GetBool("dry-run")
			force, _ := cmd.Flags().GetBool("force")
			rep, err := engine.Rollover(cmd.Context(), core.RolloverOptions{DryRun: dry, Force: force})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rep.DryRun {
				fmt.Fprintln(out, i18n.T("rollover.dry_run"))
			}
			rows := make([][]string, 0, len(rep.Lines))
			for _, l := range rep.Lines {
				prev := "-"
				if l.HasPreviousBalance {
					prev = money(l.PreviousAmount)
				}
				rows = append(rows, []string{l.Alias, prev, money(l.CurrentReceived), money(l.Remaining), money(l.MaxAmount)})
			}
			renderTable(out, []string{
				i18n.T("column.alias"), i18n.T("column.previous"), i18n.T("column.received"),
				i18n.T("column.available"), i18n.T("column.max"),
			}, rows)
			fmt.Fprintln(out, i18n.T("rollover.result", rep.RecipientsWithBalances, money(rep.TotalPreviousAmount), rep.RecipientsReset))
			printSummary(out, rep.Summary)
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report without writing anything")
	cmd.Flags().Bool("force", false, "Run even if today is not the 1st")
	return cmd
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := engine.AuditLog(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, i18n.T("audit.none"))
				return nil
			}
			loc := engine.Clock().Now().Location()
			rows := make([][]string, 0, len(entries))
			for _, a := range entries {
				rows = append(rows, []string{a.Timestamp.In(loc).Format("2006-01-02 15:04:05"), a.Actor, a.Action, a.Details})
			}
			renderTable(out, []string{i18n.T("column.date"), i18n.T("column.actor"), i18n.T("column.action"), i18n.T("column.details")}, rows)
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "Number of entries (0 = all)")
	return cmd
}
