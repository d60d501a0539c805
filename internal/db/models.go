// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"time"

	"github.com/toeirei/paydesk/internal/model"
	"github.com/uptrace/bun"
)

// RecipientModel is the bun mapping of the recipients table.
type RecipientModel struct {
	bun.BaseModel `bun:"table:recipients,alias:r"`
	ID            int64          `bun:"id,pk,autoincrement"`
	Name          string         `bun:"name"`
	Alias         string         `bun:"alias"`
	AccountNumber string         `bun:"account_number"`
	BankID        sql.NullInt64  `bun:"bank_id"`
	MaxAmount     int64          `bun:"max_amount"`
	IsRecurring   bool           `bun:"is_recurring"`
	PriorityOrder int            `bun:"priority_order"`
	IsActive      bool           `bun:"is_active"`
	CreatedAt     time.Time      `bun:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at"`
	BankName      sql.NullString `bun:"bank_name,scanonly"`
}

// PaymentModel is the bun mapping of the payments table.
type PaymentModel struct {
	bun.BaseModel  `bun:"table:payments,alias:p"`
	ID             int64          `bun:"id,pk,autoincrement"`
	Reference      string         `bun:"reference"`
	Amount         int64          `bun:"amount"`
	RecipientID    int64          `bun:"recipient_id"`
	OperatorID     int64          `bun:"operator_id"`
	ProofRef       string         `bun:"proof_ref"`
	Notes          string         `bun:"notes"`
	CreatedAt      time.Time      `bun:"created_at"`
	RecipientAlias sql.NullString `bun:"recipient_alias,scanonly"`
}

// BankModel is the bun mapping of the banks table.
type BankModel struct {
	bun.BaseModel `bun:"table:banks,alias:b"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name"`
}

// OperatorModel is the bun mapping of the operators table.
type OperatorModel struct {
	bun.BaseModel `bun:"table:operators,alias:o"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Username      string    `bun:"username"`
	Role          string    `bun:"role"`
	PasswordHash  string    `bun:"password_hash"`
	CreatedAt     time.Time `bun:"created_at"`
}

// MonthlyBalanceModel is the bun mapping of the monthly_balances table.
type MonthlyBalanceModel struct {
	bun.BaseModel `bun:"table:monthly_balances,alias:mb"`
	ID            int64     `bun:"id,pk,autoincrement"`
	RecipientID   int64     `bun:"recipient_id"`
	Year          int       `bun:"year"`
	Month         int       `bun:"month"`
	TotalReceived int64     `bun:"total_received"`
	PaymentCount  int       `bun:"payment_count"`
	LastUpdated   time.Time `bun:"last_updated"`
}

// AuditLogModel is the bun mapping of the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log,alias:a"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp"`
	Actor         string    `bun:"actor"`
	Action        string    `bun:"action"`
	Details       string    `bun:"details"`
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func recipientToModel(m RecipientModel) model.Recipient {
	r := model.Recipient{
		ID:            m.ID,
		Alias:         m.Alias,
		Name:          m.Name,
		AccountNumber: m.AccountNumber,
		MaxAmount:     m.MaxAmount,
		IsRecurring:   m.IsRecurring,
		PriorityOrder: m.PriorityOrder,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
	if m.BankID.Valid {
		r.BankID = m.BankID.Int64
	}
	if m.BankName.Valid {
		r.BankName = m.BankName.String
	}
	return r
}

func recipientFromModel(r model.Recipient) RecipientModel {
	return RecipientModel{
		ID:            r.ID,
		Name:          r.Name,
		Alias:         r.Alias,
		AccountNumber: r.AccountNumber,
		BankID:        nullInt64(r.BankID),
		MaxAmount:     r.MaxAmount,
		IsRecurring:   r.IsRecurring,
		PriorityOrder: r.PriorityOrder,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func paymentToModel(m PaymentModel) model.Payment {
	p := model.Payment{
		ID:          m.ID,
		Reference:   m.Reference,
		Amount:      m.Amount,
		RecipientID: m.RecipientID,
		OperatorID:  m.OperatorID,
		ProofRef:    m.ProofRef,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.RecipientAlias.Valid {
		p.RecipientAlias = m.RecipientAlias.String
	}
	return p
}

func paymentFromModel(p model.Payment) PaymentModel {
	return PaymentModel{
		ID:          p.ID,
		Reference:   p.Reference,
		Amount:      p.Amount,
		RecipientID: p.RecipientID,
		OperatorID:  p.OperatorID,
		ProofRef:    p.ProofRef,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func operatorToModel(m OperatorModel) model.Operator {
	return model.Operator{
		ID:           m.ID,
		Username:     m.Username,
		Role:         model.Role(m.Role),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func balanceToModel(m MonthlyBalanceModel) model.MonthlyBalance {
	return model.MonthlyBalance{
		RecipientID:   m.RecipientID,
		Year:          m.Year,
		Month:         time.Month(m.Month),
		TotalReceived: m.TotalReceived,
		PaymentCount:  m.PaymentCount,
		LastUpdated:   m.LastUpdated.UTC(),
	}
}

func auditToModel(m AuditLogModel) model.AuditLogEntry {
	return model.AuditLogEntry{
		ID:        m.ID,
		Timestamp: m.Timestamp.UTC(),
		Actor:     m.Actor,
		Action:    m.Action,
		Details:   m.Details,
	}
}
