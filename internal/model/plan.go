// Package model defines the domain types for installment plans.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/aqsat/internal/calendar"
)

// UnspecifiedCreditor is stored when a plan is created without a creditor.
const UnspecifiedCreditor = "unspecified"

// Status is the plan-level lifecycle state.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusPast     Status = "past"
	StatusPaid     Status = "paid"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusUpcoming, StatusPast, StatusPaid:
		return st, nil
	case "overdue":
		return StatusPast, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
}

// Label is the human-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusUpcoming:
		return "Upcoming"
	case StatusPast:
		return "Overdue"
	case StatusPaid:
		return "Paid"
	}
	return "Unknown"
}

// PlanID identifies a plan. New ids are time-ordered UUIDs. Snapshots from
// older versions carry millisecond timestamps, which decode as their decimal
// text; their Jalali installment dates are converted by calendar.ParseISO.
type PlanID string

// NewPlanID returns a fresh, time-ordered identifier.
func NewPlanID() PlanID {
	id, err := uuid.NewV7()
	if err != nil {
		return PlanID(uuid.NewString())
	}
	return PlanID(id.String())
}

// Short returns a prefix suitable for display and for typing back in.
func (id PlanID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// UnmarshalJSON accepts a JSON string or number.
func (id *PlanID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlanID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("plan id must be a string or number: %w", err)
	}
	*id = PlanID(n.String())
	return nil
}

// Installment is one dated, amount-bearing unit of a plan.
type Installment struct {
	DueDate calendar.Date `json:"date"`
	Amount  int64         `json:"amount"`
}

// Plan is a payment obligation split into installments.
type Plan struct {
	ID           PlanID        `json:"id"`
	Name         string        `json:"name"`
	Creditor     string        `json:"creditor"`
	TotalAmount  int64         `json:"totalAmount"`
	Description  string        `json:"description"`
	Installments []Installment `json:"installments"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Clone returns a deep copy of p.
func (p Plan) Clone() Plan {
	c := p
	c.Installments = append([]Installment(nil), p.Installments...)
	return c
}

// IsPaid reports whether the plan reached its terminal state.
func (p Plan) IsPaid() bool { return p.Status == StatusPaid }

// InstallmentSum is the sum of all installment amounts.
func (p Plan) InstallmentSum() int64 {
	var sum int64
	for _, inst := range p.Installments {
		sum += inst.Amount
	}
	return sum
}

// Validate checks every invariant a stored plan must satisfy.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.TotalAmount <= 0 {
		return &ValidationError{Field: "totalAmount", Reason: "must be positive"}
	}
	if len(p.Installments) == 0 {
		return &InvalidScheduleError{Total: p.TotalAmount, Count: 0}
	}
	for i, inst := range p.Installments {
		if inst.DueDate.IsZero() {
			return &IncompleteScheduleError{Index: i}
		}
		if inst.Amount <= 0 {
			return &ValidationError{Field: fmt.Sprintf("installments[%d].amount", i), Reason: "must be positive"}
		}
		if i > 0 && inst.DueDate.Before(p.Installments[i-1].DueDate) {
			return &ValidationError{Field: "installments", Reason: "must be in chronological order"}
		}
	}
	if sum := p.InstallmentSum(); sum != p.TotalAmount {
		return &AmountMismatchError{Expected: p.TotalAmount, Actual: sum}
	}
	switch p.Status {
	case StatusUpcoming, StatusPast, StatusPaid:
	default:
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", p.Status)}
	}
	return nil
}
