// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the plain data types shared by the storage layer, the
// allocation engine and the CLI.
package model

import (
	"fmt"
	"time"
)

// Recipient is an account that may receive payments up to MaxAmount.
// Recurring recipients get their capacity back every calendar month, one-time
// recipients accept a single payment ever.
type Recipient struct {
	ID            int64     `json:"id"`
	Alias         string    `json:"alias"`
	Name          string    `json:"name"`
	BankID        int64     `json:"bank_id,omitempty"` // 0 when no bank is referenced
	BankName      string    `json:"bank_name,omitempty"`
	AccountNumber string    `json:"account_number"`
	MaxAmount     int64     `json:"max_amount"`
	IsRecurring   bool      `json:"is_recurring"`
	PriorityOrder int       `json:"priority_order"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// String returns the alias, which is how operators refer to a recipient.
func (r Recipient) String() string {
	return r.Alias
}

// Payment is a declared transfer to a recipient, recorded by an operator.
type Payment struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	Amount         int64     `json:"amount"`
	RecipientID    int64     `json:"recipient_id"`
	RecipientAlias string    `json:"recipient_alias,omitempty"`
	OperatorID     int64     `json:"operator_id"`
	ProofRef       string    `json:"proof_ref,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// String renders a short human description of the payment.
func (p Payment) String() string {
	alias := p.RecipientAlias
	if alias == "" {
		alias = fmt.Sprintf("#%d", p.RecipientID)
	}
	return fmt.Sprintf("$%d to %s on %s", p.Amount, alias, p.CreatedAt.Format("2006-01-02"))
}

// Bank is a bank or virtual wallet a recipient account belongs to.
type Bank struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Role is the permission level of an operator.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleOperator      Role = "operator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleOperator
}

// Operator is a person allowed to record payments.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdministrator reports whether the operator has the administrator role.
func (o Operator) IsAdministrator() bool {
	return o.Role == RoleAdministrator
}

// MonthlyBalance is the cached aggregate of a recipient's payments in one
// calendar month. It can always be recomputed from payments.
type MonthlyBalance struct {
	RecipientID   int64      `json:"recipient_id"`
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	TotalReceived int64      `json:"total_received"`
	PaymentCount  int        `json:"payment_count"`
	LastUpdated   time.Time  `json:"last_updated"`
}

// AuditLogEntry is one recorded mutation.
type AuditLogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
