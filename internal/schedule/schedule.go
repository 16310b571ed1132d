// Package schedule generates and validates installment schedules.
package schedule

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/aqsat/internal/calendar"
	"github.com/theirongolddev/aqsat/internal/model"
)

// Build splits total into count installments spaced one unit apart, the
// first falling one unit after start. Every installment gets
// floor(total/count); the last one also absorbs the remainder.
func Build(svc *calendar.Service, total int64, count int, start calendar.Date, unit calendar.Unit) ([]model.Installment, error) {
	if count <= 0 || total <= 0 {
		return nil, &model.InvalidScheduleError{Total: total, Count: count}
	}
	if start.IsZero() {
		return nil, &model.ValidationError{Field: "startDate", Reason: "is required"}
	}
	if unit == "" {
		unit = calendar.UnitMonth
	}

	base := total / int64(count)
	remainder := total % int64(count)

	out := make([]model.Installment, count)
	for i := range out {
		// Offsetting from start each time keeps month-end clamping from drifting.
		due, err := svc.AddUnits(start, unit, i+1)
		if err != nil {
			return nil, fmt.Errorf("scheduling installment %d: %w", i+1, err)
		}
		amount := base
		if i == count-1 {
			amount += remainder
		}
		out[i] = model.Installment{DueDate: due, Amount: amount}
	}
	return out, nil
}

// ValidateManual checks a hand-entered schedule against the plan total.
func ValidateManual(installments []model.Installment, total int64) error {
	var sum int64
	for i, inst := range installments {
		if inst.DueDate.IsZero() {
			return &model.IncompleteScheduleError{Index: i}
		}
		if inst.Amount <= 0 {
			return &model.ValidationError{
				Field:  fmt.Sprintf("installment %d amount", i+1),
				Reason: "must be positive",
			}
		}
		sum += inst.Amount
	}
	if sum != total {
		return &model.AmountMismatchError{Expected: total, Actual: sum}
	}
	return nil
}

// Row is one manually entered schedule line. A zero Amount takes the
// default share floor(total/count).
type Row struct {
	Date   calendar.Date
	Amount int64
}

// Resolve turns rows into a validated, chronologically ordered schedule.
// count is the requested installment count used for the default share;
// when it is not positive the number of rows is used instead.
func Resolve(rows []Row, total int64, count int) ([]model.Installment, error) {
	if len(rows) == 0 {
		return nil, &model.InvalidScheduleError{Total: total, Count: 0}
	}
	if total <= 0 {
		return nil, &model.ValidationError{Field: "totalAmount", Reason: "must be positive"}
	}
	if count <= 0 {
		count = len(rows)
	}
	share := total / int64(count)

	out := make([]model.Installment, len(rows))
	for i, r := range rows {
		if r.Amount < 0 {
			return nil, &model.ValidationError{
				Field:  fmt.Sprintf("installment %d amount", i+1),
				Reason: "must not be negative",
			}
		}
		amount := r.Amount
		if amount == 0 {
			amount = share
		}
		out[i] = model.Installment{DueDate: r.Date, Amount: amount}
	}

	for i, inst := range out {
		if inst.DueDate.IsZero() {
			return nil, &model.IncompleteScheduleError{Index: i}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})

	if err := ValidateManual(out, total); err != nil {
		return nil, err
	}
	return out, nil
}
