package store

import (
	"context"
	"testing"

	"starsoftflow/internal/model"
)

func TestMemoryStoreRequiresWorkpackageFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.AddAllocation(ctx, model.AllocationAction{WorkpackageKey: "A1", ResourceID: "u1"}); err == nil {
		t.Fatalf("expected error for unknown workpackage")
	}

	if err := s.AddWorkpackage(ctx, model.WorkpackageAction{Key: "A1", Name: "Design"}); err != nil {
		t.Fatalf("AddWorkpackage failed: %v", err)
	}
	if err := s.AddWorkpackage(ctx, model.WorkpackageAction{Key: "A1"}); err == nil {
		t.Fatalf("expected duplicate workpackage error")
	}
	if err := s.AddAllocation(ctx, model.AllocationAction{WorkpackageKey: "A1", ResourceID: "u1", Month: 1, Year: 2024, Occupancy: 5000}); err != nil {
		t.Fatalf("AddAllocation failed: %v", err)
	}
	if err := s.AddMaterial(ctx, model.MaterialAction{WorkpackageKey: "A1", Name: "Portátil"}); err != nil {
		t.Fatalf("AddMaterial failed: %v", err)
	}

	draft := s.Draft()
	if len(draft.Workpackages) != 1 || len(draft.Workpackages[0].Allocations) != 1 || len(draft.Workpackages[0].Materials) != 1 {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := len(s.Draft().Workpackages); got != 0 {
		t.Fatalf("workpackages after reset=%d", got)
	}
	if got := len(s.Actions()); got != 4 {
		t.Fatalf("actions=%d, want 4", got)
	}
}

func TestMemoryStoreCreateContractedResource(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	salary := 1800.0
	u, err := s.CreateContractedResource(ctx, "  Bob  ", &salary)
	if err != nil {
		t.Fatalf("CreateContractedResource failed: %v", err)
	}
	if u.ID == "" || u.DisplayName != "Bob" || !u.Contracted || u.Salary == nil || *u.Salary != 1800 {
		t.Fatalf("unexpected user: %+v", u)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 || users[0].ID != u.ID {
		t.Fatalf("users=%+v", users)
	}

	if _, err := s.CreateContractedResource(ctx, " ", nil); err == nil {
		t.Fatalf("expected error for blank name")
	}
}
