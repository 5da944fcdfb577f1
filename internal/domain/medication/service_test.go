package medication

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
	orders map[uuid.UUID]*Order
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: make(map[uuid.UUID]*Order)}
}

func (m *mockRepo) Create(_ context.Context, o *Order) error {
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	m.orders[o.ID] = o
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return o, nil
}

func (m *mockRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*Order, error) {
	var out []*Order
	for _, o := range m.orders {
		if o.VisitID == visitID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepo) CountByVisit(_ context.Context, visitID uuid.UUID) (int, error) {
	n := 0
	for _, o := range m.orders {
		if o.VisitID == visitID {
			n++
		}
	}
	return n, nil
}

// mockBatches serves a mutable batch set so tests can flip the gate
// between check and write.
type mockBatches struct {
	infos []workflow.BatchInfo
}

func (m *mockBatches) BatchInfos(_ context.Context, _ uuid.UUID) ([]workflow.BatchInfo, error) {
	return m.infos, nil
}

type mockVisits struct {
	orderable bool
}

func (m *mockVisits) EnsureOrderable(_ context.Context, id uuid.UUID) (*visit.Visit, error) {
	if !m.orderable {
		return nil, &workflow.InvalidVisitStateError{Op: "prescribe", Status: workflow.VisitCompleted}
	}
	return &visit.Visit{ID: id, Status: workflow.VisitUnderReview}, nil
}

func newTestService(infos []workflow.BatchInfo) (*Service, *mockRepo, *mockBatches) {
	repo := newMockRepo()
	batches := &mockBatches{infos: infos}
	return NewService(repo, batches, &mockVisits{orderable: true}, nil, nil), repo, batches
}

func input() OrderInput {
	return OrderInput{DrugName: "amoxicillin", Dosage: "500mg", Frequency: "q8h"}
}

func TestCheckGateOpenWithoutDiagnostics(t *testing.T) {
	svc, _, _ := newTestService(nil)

	d, err := svc.CheckGate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckGate: %v", err)
	}
	if !d.Allowed {
		t.Errorf("gate closed with no batches: %s", d.Reason)
	}
}

func TestCheckGateClosedOnOutstandingLab(t *testing.T) {
	svc, _, _ := newTestService([]workflow.BatchInfo{
		{Type: workflow.OrderTypeLab, Status: workflow.BatchInProgress},
	})

	d, err := svc.CheckGate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckGate: %v", err)
	}
	if d.Allowed {
		t.Error("gate open with lab work outstanding")
	}
}

func TestCheckGateIgnoresNurseBatches(t *testing.T) {
	svc, _, _ := newTestService([]workflow.BatchInfo{
		{Type: workflow.OrderTypeNurse, Status: workflow.BatchPending},
	})

	d, err := svc.CheckGate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckGate: %v", err)
	}
	if !d.Allowed {
		t.Errorf("nurse work closed the gate: %s", d.Reason)
	}
}

func TestPrescribeWhenGateOpen(t *testing.T) {
	svc, repo, _ := newTestService([]workflow.BatchInfo{
		{Type: workflow.OrderTypeLab, Status: workflow.BatchCompleted},
	})

	o, err := svc.Prescribe(context.Background(), uuid.New(), uuid.New(), input())
	if err != nil {
		t.Fatalf("Prescribe: %v", err)
	}
	if _, ok := repo.orders[o.ID]; !ok {
		t.Error("order not persisted")
	}
}

func TestPrescribeRejectedWhenGateCloses(t *testing.T) {
	// Gate looks open at check time, then a radiology batch lands
	// before the prescription writes.
	svc, repo, batches := newTestService(nil)
	ctx := context.Background()

	if d, err := svc.CheckGate(ctx, uuid.New()); err != nil || !d.Allowed {
		t.Fatalf("advisory check: allowed=%v err=%v", d.Allowed, err)
	}
	batches.infos = []workflow.BatchInfo{
		{Type: workflow.OrderTypeRadiology, Status: workflow.BatchPending},
	}

	_, err := svc.Prescribe(ctx, uuid.New(), uuid.New(), input())
	var stale *workflow.StaleGateDecisionError
	if !errors.As(err, &stale) {
		t.Fatalf("err = %v, want StaleGateDecisionError", err)
	}
	if len(repo.orders) != 0 {
		t.Error("order persisted despite closed gate")
	}
}

func TestPrescribeValidatesInput(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	cases := []OrderInput{
		{Dosage: "500mg", Frequency: "q8h"},
		{DrugName: "amoxicillin", Frequency: "q8h"},
		{DrugName: "amoxicillin", Dosage: "500mg"},
	}
	for _, in := range cases {
		if _, err := svc.Prescribe(ctx, uuid.New(), uuid.New(), in); err == nil {
			t.Errorf("Prescribe(%+v) succeeded, want validation error", in)
		}
	}
}

func TestPrescribeRejectedOnClosedVisit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockBatches{}, &mockVisits{orderable: false}, nil, nil)

	_, err := svc.Prescribe(context.Background(), uuid.New(), uuid.New(), input())
	var stateErr *workflow.InvalidVisitStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want InvalidVisitStateError", err)
	}
}

func TestHasPrescriptions(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()
	visitID := uuid.New()

	has, err := svc.HasPrescriptions(ctx, visitID)
	if err != nil || has {
		t.Fatalf("HasPrescriptions on empty visit = %v, %v", has, err)
	}
	if _, err := svc.Prescribe(ctx, visitID, uuid.New(), input()); err != nil {
		t.Fatalf("Prescribe: %v", err)
	}
	has, err = svc.HasPrescriptions(ctx, visitID)
	if err != nil || !has {
		t.Fatalf("HasPrescriptions after prescribe = %v, %v", has, err)
	}
}
