package store

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps is the default number of synchronous follow-up actions one
// queued action may produce, transitively.
const DefaultMaxSteps = 1000

// quota counts follow-up reductions for one queued action.
//
// Follow-ups are reduced before anything else in the queue, so a delegate
// that keeps sending itself would starve the store. The quota turns that
// into a logged StepsExceededError and drops the remaining follow-ups.
type quota struct {
	maxSteps int
	current  int
}

func newQuota(maxSteps int) *quota {
	return &quota{maxSteps: maxSteps}
}

// Check counts one step and fails once the limit is passed.
func (q *quota) Check(root string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{Action: root, Steps: q.current, Limit: q.maxSteps}
	}
	return nil
}

// StepsExceededError reports a queued action whose follow-ups exceeded the
// step quota.
type StepsExceededError struct {
	Action string // The queued action that started the chain
	Steps  int    // Steps taken when the quota tripped
	Limit  int    // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("action %s exceeded max steps quota: %d steps > %d limit",
		e.Action, e.Steps, e.Limit)
}

// IsStepsExceededError reports whether err is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
