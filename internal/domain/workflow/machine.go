package workflow

// BatchInfo is the slice of a batch order the state machine cares about:
// its department and its computed aggregate status.
type BatchInfo struct {
	Type   OrderType
	Status BatchStatus
}

// OrderSnapshot summarizes all outstanding work attached to a visit. It is
// assembled inside the same transaction as the mutation that triggered
// recomputation, so the state machine always decides on consistent data.
type OrderSnapshot struct {
	Batches     []BatchInfo
	Assignments []AssignmentStatus
}

// Pending derives the unresolved-work flags from the snapshot.
func (s OrderSnapshot) Pending() PendingReasons {
	var p PendingReasons
	for _, b := range s.Batches {
		if !b.Status.Resolved() {
			p = p.With(b.Type.PendingReason())
		}
	}
	for _, a := range s.Assignments {
		if !a.Terminal() {
			p = p.With(PendingNurse)
		}
	}
	return p
}

// AllResolved reports whether every batch order and assignment is terminal.
func (s OrderSnapshot) AllResolved() bool {
	return s.Pending() == 0
}

func (s OrderSnapshot) hasDiagnostics() bool {
	for _, b := range s.Batches {
		if b.Type.Diagnostic() {
			return true
		}
	}
	return false
}

func (s OrderSnapshot) hasNurseWork() bool {
	if len(s.Assignments) > 0 {
		return true
	}
	for _, b := range s.Batches {
		if b.Type == OrderTypeNurse {
			return true
		}
	}
	return false
}

// Triage records the triage event. Vitals are attached in the same
// operation, so the visit passes through TRIAGED straight to
// WAITING_FOR_DOCTOR.
func Triage(current VisitStatus) (VisitStatus, error) {
	if current != VisitWaitingForTriage {
		return current, &InvalidTransitionError{Entity: "visit", From: string(current), To: string(VisitTriaged)}
	}
	return VisitWaitingForDoctor, nil
}

// Open moves the visit under doctor review when a clinician opens it.
func Open(current VisitStatus) (VisitStatus, error) {
	if current.Terminal() {
		return current, &InvalidVisitStateError{Op: "open visit", Status: current}
	}
	if current == VisitWaitingForTriage {
		return current, &InvalidVisitStateError{Op: "open visit", Status: current, Detail: "triage not recorded"}
	}
	return VisitUnderReview, nil
}

// AllowOrdering checks that new orders or assignments may be attached to a
// visit in the given status.
func AllowOrdering(current VisitStatus) error {
	if current.Terminal() {
		return &InvalidVisitStateError{Op: "create order", Status: current}
	}
	return nil
}

// Recompute derives the visit's base status and pending flags after any
// order line, batch order or nurse assignment changed. It is the single
// place that decides when a visit advances to AWAITING_RESULTS_REVIEW or
// NURSE_SERVICES_COMPLETED.
func Recompute(base VisitStatus, snap OrderSnapshot) (VisitStatus, PendingReasons) {
	pending := snap.Pending()
	if base.Terminal() {
		return base, pending
	}
	if pending != 0 {
		return base, pending
	}
	// Everything resolved: results trump nurse completion, because resolved
	// diagnostics always leave the clinician something to review.
	switch {
	case snap.hasDiagnostics():
		return VisitAwaitingResults, 0
	case snap.hasNurseWork():
		return VisitNurseCompleted, 0
	}
	return base, 0
}

// Complete finalizes the visit after diagnosis. It fails while any batch
// order or nurse assignment is non-terminal. Pending prescriptions route
// the visit through pharmacy instead of completing it outright.
func Complete(base VisitStatus, snap OrderSnapshot, hasPendingPrescriptions bool) (VisitStatus, error) {
	if base.Terminal() {
		return base, &InvalidVisitStateError{Op: "complete visit", Status: base}
	}
	if !snap.AllResolved() {
		return base, &InvalidVisitStateError{
			Op:     "complete visit",
			Status: base,
			Detail: "outstanding orders or nurse services",
		}
	}
	if hasPendingPrescriptions {
		return VisitSentToPharmacy, nil
	}
	return VisitCompleted, nil
}

// Dispense records the pharmacy collaborator's dispensation-done event.
func Dispense(base VisitStatus) (VisitStatus, error) {
	if base != VisitSentToPharmacy {
		return base, &InvalidTransitionError{Entity: "visit", From: string(base), To: string(VisitCompleted)}
	}
	return VisitCompleted, nil
}

// Cancel administratively cancels a visit from any non-terminal state.
func Cancel(base VisitStatus) (VisitStatus, error) {
	if base.Terminal() {
		return base, &InvalidVisitStateError{Op: "cancel visit", Status: base}
	}
	return VisitCancelled, nil
}
