package nursing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/visit"
	"github.com/clinicore/clinicore/internal/domain/workflow"
)

type mockRepo struct {
	assignments map[uuid.UUID]*Assignment
}

func newMockRepo() *mockRepo {
	return &mockRepo{assignments: make(map[uuid.UUID]*Assignment)}
}

func (m *mockRepo) Create(_ context.Context, a *Assignment) error {
	a.ID = uuid.New()
	a.Status = workflow.AssignmentPending
	a.CreatedAt = time.Now()
	m.assignments[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*Assignment, error) {
	var out []*Assignment
	for _, a := range m.assignments {
		if a.VisitID == visitID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) StatusesByVisit(_ context.Context, visitID uuid.UUID) ([]workflow.AssignmentStatus, error) {
	var out []workflow.AssignmentStatus
	for _, a := range m.assignments {
		if a.VisitID == visitID {
			out = append(out, a.Status)
		}
	}
	return out, nil
}

func (m *mockRepo) Complete(_ context.Context, id uuid.UUID, notes string, at time.Time) error {
	a, ok := m.assignments[id]
	if !ok || a.Status != workflow.AssignmentPending {
		return &workflow.ConcurrentModificationError{Entity: "nurse_assignment", ID: id.String()}
	}
	a.Status = workflow.AssignmentCompleted
	a.CompletionNotes = &notes
	a.CompletedAt = &at
	return nil
}

func (m *mockRepo) Cancel(_ context.Context, id uuid.UUID) error {
	a, ok := m.assignments[id]
	if !ok || a.Status != workflow.AssignmentPending {
		return &workflow.ConcurrentModificationError{Entity: "nurse_assignment", ID: id.String()}
	}
	a.Status = workflow.AssignmentCancelled
	return nil
}

// mockVisits records workflow callbacks instead of driving a real visit.
type mockVisits struct {
	visit      *visit.Visit
	orderable  bool
	recomputes int
}

func (m *mockVisits) EnsureOrderable(_ context.Context, _ uuid.UUID) (*visit.Visit, error) {
	if !m.orderable {
		return nil, &workflow.InvalidVisitStateError{Op: "order", Status: m.visit.Status}
	}
	return m.visit, nil
}

func (m *mockVisits) RecomputeAfterOrders(_ context.Context, _ uuid.UUID) (*visit.Visit, error) {
	m.recomputes++
	return m.visit, nil
}

func newTestService(orderable bool) (*Service, *mockRepo, *mockVisits) {
	repo := newMockRepo()
	visits := &mockVisits{
		visit: &visit.Visit{
			ID:     uuid.New(),
			Status: workflow.VisitUnderReview,
		},
		orderable: orderable,
	}
	return NewService(repo, visits, nil), repo, visits
}

func TestAssignRaisesPendingWork(t *testing.T) {
	svc, repo, visits := newTestService(true)
	ctx := context.Background()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.Status != workflow.AssignmentPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if visits.recomputes != 1 {
		t.Errorf("recomputes = %d, want 1", visits.recomputes)
	}
	if _, ok := repo.assignments[a.ID]; !ok {
		t.Error("assignment not persisted")
	}
}

func TestAssignRejectedOnClosedVisit(t *testing.T) {
	svc, _, visits := newTestService(false)

	_, err := svc.Assign(context.Background(), visits.visit.ID, uuid.New(), uuid.New(), uuid.New(), nil)
	var stateErr *workflow.InvalidVisitStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want InvalidVisitStateError", err)
	}
}

func TestCompleteByAssignee(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()
	nurse := uuid.New()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), nurse, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	done, v, err := svc.Complete(ctx, a.ID, nurse, "vitals stable, dressing changed", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != workflow.AssignmentCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.CompletionNotes == nil || *done.CompletionNotes == "" {
		t.Error("completion notes not recorded")
	}
	if done.CompletedAt == nil {
		t.Error("completion time not recorded")
	}
	if v == nil {
		t.Error("Complete returned no visit")
	}
	if visits.recomputes != 2 {
		t.Errorf("recomputes = %d, want 2", visits.recomputes)
	}
}

func TestCompleteByOtherNurseRejected(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	_, _, err = svc.Complete(ctx, a.ID, uuid.New(), "done", false)
	var notAssigned *workflow.NotAssignedError
	if !errors.As(err, &notAssigned) {
		t.Fatalf("err = %v, want NotAssignedError", err)
	}
}

func TestCompleteWithOverride(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	done, _, err := svc.Complete(ctx, a.ID, uuid.New(), "completed on behalf of assigned nurse", true)
	if err != nil {
		t.Fatalf("Complete with override: %v", err)
	}
	if done.Status != workflow.AssignmentCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
}

func TestCompleteRequiresNotes(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()
	nurse := uuid.New()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), nurse, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	for _, notes := range []string{"", "   "} {
		if _, _, err := svc.Complete(ctx, a.ID, nurse, notes, false); err == nil {
			t.Errorf("Complete with notes %q succeeded, want error", notes)
		}
	}
}

func TestCompleteTwiceRejected(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()
	nurse := uuid.New()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), nurse, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, _, err := svc.Complete(ctx, a.ID, nurse, "first pass", false); err != nil {
		t.Fatalf("first Complete: %v", err)
	}

	_, _, err = svc.Complete(ctx, a.ID, nurse, "second pass", false)
	var transitionErr *workflow.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
}

func TestCancelPendingAssignment(t *testing.T) {
	svc, _, visits := newTestService(true)
	ctx := context.Background()

	a, err := svc.Assign(ctx, visits.visit.ID, uuid.New(), uuid.New(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != workflow.AssignmentCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if visits.recomputes != 2 {
		t.Errorf("recomputes = %d, want 2", visits.recomputes)
	}
}
