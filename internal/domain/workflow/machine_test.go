package workflow

import (
	"errors"
	"testing"
)

func TestTriage(t *testing.T) {
	got, err := Triage(VisitWaitingForTriage)
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if got != VisitWaitingForDoctor {
		t.Errorf("triage = %s, want %s", got, VisitWaitingForDoctor)
	}

	for _, s := range []VisitStatus{VisitWaitingForDoctor, VisitUnderReview, VisitCompleted, VisitCancelled} {
		if _, err := Triage(s); err == nil {
			t.Errorf("triage from %s should fail", s)
		}
	}
}

func TestOpen(t *testing.T) {
	for _, s := range []VisitStatus{VisitWaitingForDoctor, VisitAwaitingResults, VisitNurseCompleted} {
		got, err := Open(s)
		if err != nil {
			t.Fatalf("open from %s: %v", s, err)
		}
		if got != VisitUnderReview {
			t.Errorf("open from %s = %s, want %s", s, got, VisitUnderReview)
		}
	}

	var ivs *InvalidVisitStateError
	if _, err := Open(VisitCompleted); !errors.As(err, &ivs) {
		t.Errorf("open completed visit: want InvalidVisitStateError, got %v", err)
	}
	if _, err := Open(VisitWaitingForTriage); err == nil {
		t.Error("open before triage should fail")
	}
}

func TestRecomputeAdvancesToResultsReview(t *testing.T) {
	snap := OrderSnapshot{Batches: []BatchInfo{{Type: OrderTypeLab, Status: BatchCompleted}}}
	base, pending := Recompute(VisitUnderReview, snap)
	if base != VisitAwaitingResults {
		t.Errorf("base = %s, want %s", base, VisitAwaitingResults)
	}
	if pending != 0 {
		t.Errorf("pending = %b, want none", pending)
	}
}

func TestRecomputeKeepsBaseWhileWorkOutstanding(t *testing.T) {
	snap := OrderSnapshot{Batches: []BatchInfo{
		{Type: OrderTypeLab, Status: BatchInProgress},
		{Type: OrderTypeRadiology, Status: BatchPending},
	}}
	base, pending := Recompute(VisitUnderReview, snap)
	if base != VisitUnderReview {
		t.Errorf("base = %s, want unchanged", base)
	}
	if !pending.Has(PendingLab) || !pending.Has(PendingRadiology) {
		t.Errorf("pending = %b, want lab and radiology", pending)
	}
	if got := DisplayStatus(base, pending); got != VisitSentToBoth {
		t.Errorf("display = %s, want %s", got, VisitSentToBoth)
	}
}

func TestRecomputeNurseOnlyVisit(t *testing.T) {
	open := OrderSnapshot{Assignments: []AssignmentStatus{AssignmentPending}}
	base, pending := Recompute(VisitUnderReview, open)
	if base != VisitUnderReview || !pending.Has(PendingNurse) {
		t.Fatalf("base=%s pending=%b, want under review + nurse pending", base, pending)
	}
	if got := DisplayStatus(base, pending); got != VisitNursePending {
		t.Errorf("display = %s, want %s", got, VisitNursePending)
	}

	done := OrderSnapshot{Assignments: []AssignmentStatus{AssignmentCompleted}}
	base, pending = Recompute(base, done)
	if base != VisitNurseCompleted || pending != 0 {
		t.Errorf("base=%s pending=%b, want %s with no pending", base, pending, VisitNurseCompleted)
	}
}

// Nurse completion on a visit that also had diagnostics lands in results
// review, not nurse-completed.
func TestRecomputeNursePlusDiagnostics(t *testing.T) {
	snap := OrderSnapshot{
		Batches:     []BatchInfo{{Type: OrderTypeLab, Status: BatchCompleted}},
		Assignments: []AssignmentStatus{AssignmentCompleted},
	}
	base, _ := Recompute(VisitUnderReview, snap)
	if base != VisitAwaitingResults {
		t.Errorf("base = %s, want %s", base, VisitAwaitingResults)
	}
}

func TestNurseDisplayPrecedence(t *testing.T) {
	pending := PendingLab | PendingRadiology | PendingNurse
	if got := DisplayStatus(VisitUnderReview, pending); got != VisitNursePending {
		t.Errorf("display = %s, want nurse precedence", got)
	}
	if got := DisplayStatus(VisitUnderReview, PendingLab); got != VisitSentToLab {
		t.Errorf("display = %s, want %s", got, VisitSentToLab)
	}
	if got := DisplayStatus(VisitUnderReview, PendingRadiology); got != VisitSentToRadiology {
		t.Errorf("display = %s, want %s", got, VisitSentToRadiology)
	}
}

func TestComplete(t *testing.T) {
	resolved := OrderSnapshot{Batches: []BatchInfo{{Type: OrderTypeLab, Status: BatchCompleted}}}

	got, err := Complete(VisitAwaitingResults, resolved, false)
	if err != nil || got != VisitCompleted {
		t.Fatalf("complete = %s, %v; want %s", got, err, VisitCompleted)
	}

	got, err = Complete(VisitAwaitingResults, resolved, true)
	if err != nil || got != VisitSentToPharmacy {
		t.Fatalf("complete with prescriptions = %s, %v; want %s", got, err, VisitSentToPharmacy)
	}

	outstanding := OrderSnapshot{Batches: []BatchInfo{{Type: OrderTypeLab, Status: BatchInProgress}}}
	var ivs *InvalidVisitStateError
	if _, err := Complete(VisitUnderReview, outstanding, false); !errors.As(err, &ivs) {
		t.Errorf("complete with outstanding work: want InvalidVisitStateError, got %v", err)
	}

	pendingNurse := OrderSnapshot{Assignments: []AssignmentStatus{AssignmentPending}}
	if _, err := Complete(VisitUnderReview, pendingNurse, false); err == nil {
		t.Error("complete with pending nurse assignment should fail")
	}

	if _, err := Complete(VisitCompleted, resolved, false); err == nil {
		t.Error("complete on terminal visit should fail")
	}
}

func TestCompleteWithCancelledWork(t *testing.T) {
	// Cancelled batches and assignments are resolved for completion purposes.
	snap := OrderSnapshot{
		Batches:     []BatchInfo{{Type: OrderTypeRadiology, Status: BatchCancelled}},
		Assignments: []AssignmentStatus{AssignmentCancelled},
	}
	got, err := Complete(VisitUnderReview, snap, false)
	if err != nil || got != VisitCompleted {
		t.Errorf("complete = %s, %v; want %s", got, err, VisitCompleted)
	}
}

func TestDispense(t *testing.T) {
	got, err := Dispense(VisitSentToPharmacy)
	if err != nil || got != VisitCompleted {
		t.Fatalf("dispense = %s, %v", got, err)
	}
	var it *InvalidTransitionError
	if _, err := Dispense(VisitUnderReview); !errors.As(err, &it) {
		t.Errorf("dispense outside pharmacy: want InvalidTransitionError, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	for _, s := range []VisitStatus{VisitWaitingForTriage, VisitUnderReview, VisitSentToPharmacy} {
		got, err := Cancel(s)
		if err != nil || got != VisitCancelled {
			t.Errorf("cancel from %s = %s, %v", s, got, err)
		}
	}
	for _, s := range []VisitStatus{VisitCompleted, VisitCancelled} {
		if _, err := Cancel(s); err == nil {
			t.Errorf("cancel from terminal %s should fail", s)
		}
	}
}

func TestAllowOrdering(t *testing.T) {
	if err := AllowOrdering(VisitUnderReview); err != nil {
		t.Errorf("ordering under review: %v", err)
	}
	for _, s := range []VisitStatus{VisitCompleted, VisitCancelled} {
		if err := AllowOrdering(s); err == nil {
			t.Errorf("ordering on %s should fail", s)
		}
	}
}
