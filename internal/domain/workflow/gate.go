package workflow

import "fmt"

// GateDecision is the answer of the medication gate.
type GateDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// EvaluateGate decides whether a clinician may prescribe medication for a
// visit, given the computed aggregates of all its batch orders. Prescribing
// is allowed iff no lab or radiology batch order has outstanding work; a
// visit without such orders is always allowed. Cancelled batches are
// resolved, never outstanding. Nurse batches never gate medication.
//
// The decision must be recomputed on every prescription attempt: an
// "allowed" answer is advisory the moment it leaves the transaction that
// produced it.
func EvaluateGate(batches []BatchInfo) GateDecision {
	var outstanding []OrderType
	seen := map[OrderType]bool{}
	for _, b := range batches {
		if !b.Type.Diagnostic() {
			continue
		}
		if !b.Status.Resolved() && !seen[b.Type] {
			outstanding = append(outstanding, b.Type)
			seen[b.Type] = true
		}
	}
	if len(outstanding) == 0 {
		return GateDecision{Allowed: true, Reason: "no outstanding diagnostic orders"}
	}
	return GateDecision{
		Allowed: false,
		Reason:  fmt.Sprintf("outstanding %s orders must complete before prescribing", upperTypes(outstanding)),
	}
}
