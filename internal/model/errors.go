package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks across the error taxonomy.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AmountMismatchError reports a schedule whose amounts do not add up to the plan total.
type AmountMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("installment amounts sum to %d, plan total is %d", e.Actual, e.Expected)
}

func (e *AmountMismatchError) Unwrap() error { return ErrValidation }

// IncompleteScheduleError reports an installment without a due date.
type IncompleteScheduleError struct {
	Index int
}

func (e *IncompleteScheduleError) Error() string {
	return fmt.Sprintf("installment %d has no due date", e.Index+1)
}

func (e *IncompleteScheduleError) Unwrap() error { return ErrValidation }

// InvalidScheduleError reports a schedule that cannot be generated.
type InvalidScheduleError struct {
	Total int64
	Count int
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("cannot schedule total %d over %d installments", e.Total, e.Count)
}

func (e *InvalidScheduleError) Unwrap() error { return ErrValidation }

// NotFoundError reports an operation on a plan id that does not exist.
type NotFoundError struct {
	ID PlanID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan %q not found", string(e.ID))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousIDError reports an id prefix matching more than one plan.
type AmbiguousIDError struct {
	Prefix  string
	Matches []PlanID
}

func (e *AmbiguousIDError) Error() string {
	ids := make([]string, len(e.Matches))
	for i, id := range e.Matches {
		ids[i] = id.Short()
	}
	return fmt.Sprintf("id prefix %q is ambiguous: %s", e.Prefix, strings.Join(ids, ", "))
}

func (e *AmbiguousIDError) Unwrap() error { return ErrValidation }

// StorageError reports a failed read or write against the key-value store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
