package importer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"starsoftflow/internal/importer"
	"starsoftflow/internal/model"
	memstore "starsoftflow/internal/service/store"
)

// scriptedResolver 按名称返回预设的标识
type scriptedResolver struct {
	resources map[string]string
	financing string
	finErr    error
	asked     []string
}

func (r *scriptedResolver) CreateResource(ctx context.Context, p importer.PendingResource) (string, error) {
	r.asked = append(r.asked, p.Name)
	id, ok := r.resources[p.Name]
	if !ok {
		return "", importer.ErrCancelled
	}
	return id, nil
}

func (r *scriptedResolver) CreateFinancing(ctx context.Context, terms model.FinancingTerms) (string, error) {
	if r.finErr != nil {
		return "", r.finErr
	}
	return r.financing, nil
}

func TestRunCompletesWithResolver(t *testing.T) {
	st := memstore.NewMemoryStore()
	s := newSession(st)
	res := &scriptedResolver{
		resources: map[string]string{"Alice": "u-a", "Bob": "u-b"},
		financing: "f-1",
	}

	sum, err := importer.Run(context.Background(), s, bytes.NewReader(twoWorkpackageWorkbook(t, "Portugal 2030")), "budget.xlsx", res)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.asked) != 2 || res.asked[0] != "Alice" || res.asked[1] != "Bob" {
		t.Fatalf("asked=%v", res.asked)
	}
	if sum.CreatedResources != 2 || !sum.FinancingLinked || sum.Workpackages != 2 {
		t.Fatalf("summary=%+v", sum)
	}
	if st.Draft().Project.FinancingID != "f-1" {
		t.Fatalf("FinancingID=%q", st.Draft().Project.FinancingID)
	}
}

func TestRunCancelledResourceDiscardsImport(t *testing.T) {
	st := memstore.NewMemoryStore()
	s := newSession(st)
	res := &scriptedResolver{resources: map[string]string{"Alice": "u-a"}}

	_, err := importer.Run(context.Background(), s, bytes.NewReader(twoWorkpackageWorkbook(t, "")), "budget.xlsx", res)
	if !errors.Is(err, importer.ErrCancelled) {
		t.Fatalf("err=%v", err)
	}
	if s.State() != importer.StateIdle {
		t.Fatalf("state=%s", s.State())
	}
	if len(st.Actions()) != 0 {
		t.Fatalf("actions dispatched: %d", len(st.Actions()))
	}
}

func TestRunFinancingCancelledContinues(t *testing.T) {
	st := memstore.NewMemoryStore()
	st.AddUser(model.User{ID: "u-a", DisplayName: "Alice"})
	st.AddUser(model.User{ID: "u-b", DisplayName: "Bob"})
	s := newSession(st)
	res := &scriptedResolver{finErr: importer.ErrCancelled}

	sum, err := importer.Run(context.Background(), s, bytes.NewReader(twoWorkpackageWorkbook(t, "Novo Programa")), "budget.xlsx", res)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.FinancingLinked {
		t.Fatalf("financing should not be linked")
	}
}

func TestRunFinancingFailureCancels(t *testing.T) {
	st := memstore.NewMemoryStore()
	st.AddUser(model.User{ID: "u-a", DisplayName: "Alice"})
	st.AddUser(model.User{ID: "u-b", DisplayName: "Bob"})
	s := newSession(st)
	boom := errors.New("catalog unavailable")
	res := &scriptedResolver{finErr: boom}

	_, err := importer.Run(context.Background(), s, bytes.NewReader(twoWorkpackageWorkbook(t, "Novo Programa")), "budget.xlsx", res)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if s.State() != importer.StateIdle || len(st.Actions()) != 0 {
		t.Fatalf("state=%s actions=%d", s.State(), len(st.Actions()))
	}
}

func TestRunBlankIdentifierStopsSession(t *testing.T) {
	st := memstore.NewMemoryStore()
	s := newSession(st)
	res := &scriptedResolver{resources: map[string]string{"Alice": " "}}

	_, err := importer.Run(context.Background(), s, bytes.NewReader(twoWorkpackageWorkbook(t, "")), "budget.xlsx", res)
	if !errors.Is(err, importer.ErrEmptyIdentifier) {
		t.Fatalf("err=%v", err)
	}
	if s.State() != importer.StateIdle {
		t.Fatalf("session left suspended in %s", s.State())
	}
}
