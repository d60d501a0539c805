// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// Status is the derived availability of a recipient. It is never stored.
type Status string

const (
	StatusInactive         Status = "inactive"
	StatusAvailable        Status = "available"
	StatusAvailableOneTime Status = "available_onetime"
	StatusCompletedOneTime Status = "completed_onetime"
	// StatusCompletedMonthly marks a recurring recipient whose remaining
	// capacity for the current month is zero or less.
	StatusCompletedMonthly Status = "completed_monthly"
)

// IsCompleted reports whether the status is one of the completed states.
func (s Status) IsCompleted() bool {
	return s == StatusCompletedOneTime || s == StatusCompletedMonthly
}

// IsAvailable reports whether the status is one of the available states.
func (s Status) IsAvailable() bool {
	return s == StatusAvailable || s == StatusAvailableOneTime
}

// Summary aggregates the state of all recipients for the current month.
type Summary struct {
	TotalRecipients     int            `json:"total_recipients"`
	ActiveRecipients    int            `json:"active_recipients"`
	AvailableRecipients int            `json:"available_recipients"`
	CompletedThisMonth  int            `json:"completed_this_month"`
	TotalCapacity       int64          `json:"total_capacity"`
	TotalUsed           int64          `json:"total_used"`
	CountsByStatus      map[Status]int `json:"counts_by_status"`
}

// UsagePercent returns TotalUsed as a percentage of TotalCapacity.
func (s Summary) UsagePercent() float64 {
	if s.TotalCapacity <= 0 {
		return 0
	}
	return float64(s.TotalUsed) / float64(s.TotalCapacity) * 100
}

// MonthlyTotals aggregates all payments recorded in one calendar month.
type MonthlyTotals struct {
	Year             int   `json:"year"`
	Month            int   `json:"month"`
	TotalAmount      int64 `json:"total_amount"`
	PaymentCount     int   `json:"payment_count"`
	UniqueRecipients int   `json:"unique_recipients"`
	UniqueOperators  int   `json:"unique_operators"`
}
