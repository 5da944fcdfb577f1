package workflow

import "fmt"

// InvalidTransitionError rejects a status change that violates the state
// machine or the order-line progression. Never coerced, never queued.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// InvalidVisitStateError rejects an operation against a visit whose
// current status forbids it.
type InvalidVisitStateError struct {
	Op     string
	Status VisitStatus
	Detail string
}

func (e *InvalidVisitStateError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s not allowed: visit is %s (%s)", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s not allowed: visit is %s", e.Op, e.Status)
}

// NotAssignedError rejects an actor completing work assigned to someone else.
type NotAssignedError struct {
	ActorID    string
	AssigneeID string
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("actor %s is not the assignee (%s)", e.ActorID, e.AssigneeID)
}

// ConcurrentModificationError signals an optimistic-concurrency write
// conflict. The caller should retry the whole read-modify-write operation.
type ConcurrentModificationError struct {
	Entity string
	ID     string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently, retry the operation", e.Entity, e.ID)
}

// StaleGateDecisionError rejects a prescription write whose advisory gate
// check passed but whose in-transaction re-check did not. Not retried
// automatically; the clinician must be informed.
type StaleGateDecisionError struct {
	Reason string
}

func (e *StaleGateDecisionError) Error() string {
	return fmt.Sprintf("medication gate closed between check and write: %s", e.Reason)
}
