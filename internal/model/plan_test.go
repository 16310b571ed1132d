package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/calendar"
)

func validPlan() Plan {
	return Plan{
		ID:          "p1",
		Name:        "Laptop",
		Creditor:    "Shop",
		TotalAmount: 1000,
		Installments: []Installment{
			{DueDate: calendar.MustParseISO("2024-05-01"), Amount: 500},
			{DueDate: calendar.MustParseISO("2024-06-01"), Amount: 500},
		},
		Status:    StatusUpcoming,
		CreatedAt: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPlanValidate(t *testing.T) {
	require.NoError(t, validPlan().Validate())

	tests := []struct {
		name   string
		mutate func(*Plan)
		target any
	}{
		{"missing name", func(p *Plan) { p.Name = "  " }, new(*ValidationError)},
		{"zero total", func(p *Plan) { p.TotalAmount = 0 }, new(*ValidationError)},
		{"no installments", func(p *Plan) { p.Installments = nil }, new(*InvalidScheduleError)},
		{"undated installment", func(p *Plan) { p.Installments[1].DueDate = calendar.Date{} }, new(*IncompleteScheduleError)},
		{"sum mismatch", func(p *Plan) { p.Installments[1].Amount = 400 }, new(*AmountMismatchError)},
		{"out of order", func(p *Plan) {
			p.Installments[0], p.Installments[1] = p.Installments[1], p.Installments[0]
		}, new(*ValidationError)},
		{"bad status", func(p *Plan) { p.Status = "late" }, new(*ValidationError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan().Clone()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorAs(t, err, tt.target)
		})
	}
}

func TestAmountMismatchCarriesBothSums(t *testing.T) {
	p := validPlan()
	p.Installments[0].Amount = 300
	var mismatch *AmountMismatchError
	require.ErrorAs(t, p.Validate(), &mismatch)
	assert.Equal(t, int64(1000), mismatch.Expected)
	assert.Equal(t, int64(800), mismatch.Actual)
}

func TestCloneIsDeep(t *testing.T) {
	p := validPlan()
	c := p.Clone()
	c.Installments[0].Amount = 1
	assert.Equal(t, int64(500), p.Installments[0].Amount)
}

func TestPlanJSONWireFormat(t *testing.T) {
	data, err := json.Marshal(validPlan())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "p1",
		"name": "Laptop",
		"creditor": "Shop",
		"totalAmount": 1000,
		"description": "",
		"installments": [
			{"date": "2024-05-01", "amount": 500},
			{"date": "2024-06-01", "amount": 500}
		],
		"status": "upcoming",
		"createdAt": "2024-04-01T09:00:00Z"
	}`, string(data))
}

func TestPlanDecodesLegacySnapshot(t *testing.T) {
	legacy := `{"id":1714550400000,"name":"Phone","creditor":"unspecified","totalAmount":900,
		"installments":[{"date":"2024-05-01","amount":900}],"status":"past","createdAt":"2024-04-01T09:00:00.000Z"}`

	var p Plan
	require.NoError(t, json.Unmarshal([]byte(legacy), &p))
	assert.Equal(t, PlanID("1714550400000"), p.ID)
	assert.Equal(t, StatusPast, p.Status)
	assert.Equal(t, "", p.Description)
	require.NoError(t, p.Validate())
}

func TestPlanDecodesJalaliInstallmentDates(t *testing.T) {
	legacy := `{"id":1730000000000,"name":"Fridge","creditor":"Shop","totalAmount":200,
		"installments":[{"date":"1403-08-15","amount":100},{"date":"1403-09-15","amount":100}],
		"status":"upcoming","createdAt":"2024-10-27T03:33:20.000Z"}`

	var p Plan
	require.NoError(t, json.Unmarshal([]byte(legacy), &p))
	assert.Equal(t, "2024-11-05", p.Installments[0].DueDate.String())
	assert.Equal(t, "2024-12-05", p.Installments[1].DueDate.String())
	require.NoError(t, p.Validate())

	out, err := json.Marshal(p.Installments[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-11-05","amount":100}`, string(out))
}

func TestNewPlanIDIsUniqueAndOrdered(t *testing.T) {
	a, b := NewPlanID(), NewPlanID()
	assert.NotEqual(t, a, b)
	assert.Less(t, string(a), string(b))
	assert.Len(t, a.Short(), 8)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("Overdue")
	require.NoError(t, err)
	assert.Equal(t, StatusPast, st)

	_, err = ParseStatus("cancelled")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.NotificationDays = -1
	assert.ErrorIs(t, s.Validate(), ErrValidation)

	s = DefaultSettings()
	s.Theme = "solarized"
	assert.ErrorIs(t, s.Validate(), ErrValidation)

	s = DefaultSettings()
	s.Font = "comic"
	assert.ErrorIs(t, s.Validate(), ErrValidation)
}

func TestStorageErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Op: "put", Key: "payments", Err: cause})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
}
