// Package workflow holds the pure decision core of the visit lifecycle:
// status enums, the visit state machine, batch-order aggregation, the
// medication gate and worklist ranking. Nothing in this package touches
// the database or the transport layer; services call into it inside their
// own transactions.
package workflow

import "strings"

// VisitStatus is the stored base status of a visit. Concurrent
// "sent to lab / radiology / nurse" situations are not stored as statuses;
// they are pending-reason flags (see PendingReasons) and only surface in
// the derived display status.
type VisitStatus string

const (
	VisitWaitingForTriage VisitStatus = "waiting_for_triage"
	VisitTriaged          VisitStatus = "triaged"
	VisitWaitingForDoctor VisitStatus = "waiting_for_doctor"
	VisitUnderReview      VisitStatus = "under_doctor_review"
	VisitNurseCompleted   VisitStatus = "nurse_services_completed"
	VisitAwaitingResults  VisitStatus = "awaiting_results_review"
	VisitSentToPharmacy   VisitStatus = "sent_to_pharmacy"
	VisitCompleted        VisitStatus = "completed"
	VisitCancelled        VisitStatus = "cancelled"
)

// Display-only statuses derived from pending-reason flags.
const (
	VisitSentToLab       VisitStatus = "sent_to_lab"
	VisitSentToRadiology VisitStatus = "sent_to_radiology"
	VisitSentToBoth      VisitStatus = "sent_to_both"
	VisitNursePending    VisitStatus = "nurse_services_pending"
)

// Terminal reports whether the status ends the visit lifecycle.
func (s VisitStatus) Terminal() bool {
	return s == VisitCompleted || s == VisitCancelled
}

// PendingReasons is a bitmask of the unresolved work blocking a visit.
// A visit can be simultaneously waiting on lab, radiology and nurse work.
type PendingReasons uint8

const (
	PendingLab PendingReasons = 1 << iota
	PendingRadiology
	PendingNurse
)

// Has reports whether reason r is set.
func (p PendingReasons) Has(r PendingReasons) bool { return p&r != 0 }

// With returns p with reason r set.
func (p PendingReasons) With(r PendingReasons) PendingReasons { return p | r }

// Without returns p with reason r cleared.
func (p PendingReasons) Without(r PendingReasons) PendingReasons { return p &^ r }

// DisplayStatus derives the status shown to staff from the stored base
// status and the pending flags. Nurse work takes visual precedence over
// lab/radiology: it blocks the patient at the bedside, so it wins the
// single display slot when several reasons are open at once.
func DisplayStatus(base VisitStatus, pending PendingReasons) VisitStatus {
	if base.Terminal() {
		return base
	}
	switch {
	case pending.Has(PendingNurse):
		return VisitNursePending
	case pending.Has(PendingLab) && pending.Has(PendingRadiology):
		return VisitSentToBoth
	case pending.Has(PendingLab):
		return VisitSentToLab
	case pending.Has(PendingRadiology):
		return VisitSentToRadiology
	}
	return base
}

// Condition is the discrete severity tag of a vitals snapshot.
type Condition string

const (
	ConditionCritical Condition = "critical"
	ConditionUrgent   Condition = "urgent"
	ConditionStable   Condition = "stable"
	ConditionGood     Condition = "good"
)

// ValidCondition reports whether c is one of the known severity tags.
func ValidCondition(c Condition) bool {
	switch c {
	case ConditionCritical, ConditionUrgent, ConditionStable, ConditionGood:
		return true
	}
	return false
}

// OrderType distinguishes the department a batch order is sent to.
type OrderType string

const (
	OrderTypeLab       OrderType = "lab"
	OrderTypeRadiology OrderType = "radiology"
	OrderTypeNurse     OrderType = "nurse"
)

// ValidOrderType reports whether t is a known order type.
func ValidOrderType(t OrderType) bool {
	return t == OrderTypeLab || t == OrderTypeRadiology || t == OrderTypeNurse
}

// PendingReason maps an order type to the visit pending flag it raises.
func (t OrderType) PendingReason() PendingReasons {
	switch t {
	case OrderTypeLab:
		return PendingLab
	case OrderTypeRadiology:
		return PendingRadiology
	case OrderTypeNurse:
		return PendingNurse
	}
	return 0
}

// Diagnostic reports whether the order type gates medication (lab/radiology).
func (t OrderType) Diagnostic() bool {
	return t == OrderTypeLab || t == OrderTypeRadiology
}

// LineStatus is the status of a single order line.
type LineStatus string

const (
	LinePending    LineStatus = "pending"
	LineQueued     LineStatus = "queued"
	LineInProgress LineStatus = "in_progress"
	LineCompleted  LineStatus = "completed"
	LineCancelled  LineStatus = "cancelled"
)

var lineRank = map[LineStatus]int{
	LinePending:    0,
	LineQueued:     1,
	LineInProgress: 2,
	LineCompleted:  3,
}

// Terminal reports whether the line status is final. Terminal lines are
// immutable.
func (s LineStatus) Terminal() bool {
	return s == LineCompleted || s == LineCancelled
}

// ValidLineStatus reports whether s is a known order-line status.
func ValidLineStatus(s LineStatus) bool {
	if s == LineCancelled {
		return true
	}
	_, ok := lineRank[s]
	return ok
}

// ValidateLineTransition enforces the one-way order-line progression
// pending → queued → in_progress → completed. Cancellation is reachable
// from any non-terminal status. Every other edge is rejected.
func ValidateLineTransition(from, to LineStatus) error {
	if from.Terminal() {
		return &InvalidTransitionError{Entity: "order line", From: string(from), To: string(to)}
	}
	if to == LineCancelled {
		return nil
	}
	fr, ok := lineRank[from]
	if !ok {
		return &InvalidTransitionError{Entity: "order line", From: string(from), To: string(to)}
	}
	tr, ok := lineRank[to]
	if !ok || tr != fr+1 {
		return &InvalidTransitionError{Entity: "order line", From: string(from), To: string(to)}
	}
	return nil
}

// BatchStatus is the aggregate status of a batch order. It is always
// computed from the order lines, never stored.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
	BatchCancelled  BatchStatus = "cancelled"
)

// Resolved reports whether the batch needs no further work. A cancelled
// batch is resolved but never counts as completed.
func (s BatchStatus) Resolved() bool {
	return s == BatchCompleted || s == BatchCancelled
}

// AssignmentStatus is the status of a nurse service assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Terminal reports whether the assignment status is final.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

func upperTypes(types []OrderType) string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = strings.ToUpper(string(t))
	}
	return strings.Join(out, ", ")
}
