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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/toeirei/paydesk/internal/core"
	"github.com/toeirei/paydesk/internal/i18n"
	"github.com/toeirei/paydesk/internal/model"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// printer formats numbers with the digit grouping of the active language.
func printer() *message.Printer {
	tag, err := language.Parse(appConfig.Language)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

func money(amount int64) string {
	return printer().Sprintf("$%d", amount)
}

func percent(v float64) string {
	return printer().Sprintf("%.1f%%", v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes a bordered table. Colours are only used on a terminal.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if isTerminal(w) {
		t = t.BorderStyle(borderStyle).StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	}
	fmt.Fprintln(w, t.Render())
}

// statusLabel translates a derived status, highlighted on a terminal.
func statusLabel(w io.Writer, s model.Status) string {
	label := i18n.T("status." + string(s))
	if !isTerminal(w) {
		return label
	}
	switch {
	case s.IsAvailable():
		return okStyle.Render(label)
	case s.IsCompleted():
		return warnStyle.Render(label)
	}
	return label
}

func yesNo(b bool) string {
	if b {
		return i18n.T("common.yes")
	}
	return i18n.T("common.no")
}

func recurrenceLabel(recurring bool) string {
	if recurring {
		return i18n.T("recipient.recurring")
	}
	return i18n.T("recipient.one_time")
}

// parseAmount accepts whole amounts such as "1500", "$1,500" or "1_500".
func parseAmount(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New(i18n.T("error.invalid_amount", s))
	}
	return v, nil
}

// describeError renders engine errors as a translated sentence.
func describeError(err error) string {
	var (
		ve *core.ValidationError
		ne *core.NotFoundError
		ce *core.CapacityExceededError
		co *core.ConflictError
		te *core.TransactionError
	)
	switch {
	case errors.As(err, &ve):
		return i18n.T("error.validation", ve.Field, ve.Reason)
	case errors.As(err, &ne):
		return i18n.T("error.not_found", ne.Kind, ne.Key)
	case errors.As(err, &ce):
		return i18n.T("error.capacity_exceeded", ce.Alias, money(ce.Remaining))
	case errors.As(err, &co):
		return i18n.T("error.conflict", co.Reason)
	case errors.Is(err, core.ErrInvalidCredentials):
		return i18n.T("error.invalid_credentials")
	case errors.Is(err, core.ErrNotMonthStart):
		return i18n.T("rollover.not_month_start")
	case errors.As(err, &te):
		return i18n.T("error.transaction", te.Op, te.Err)
	}
	return err.Error()
}
