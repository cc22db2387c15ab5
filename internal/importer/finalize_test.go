package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"starsoftflow/internal/importer"
	"starsoftflow/internal/model"
	memstore "starsoftflow/internal/service/store"
)

func TestFinalizeRejectsUnresolved(t *testing.T) {
	st := &importer.ImportState{
		Workpackages: []model.WorkpackageDraft{{
			Code: "A1",
			Resources: []model.ResourceDraft{
				{DisplayName: "Alice", ResolvedID: "u-a"},
				{DisplayName: "Ghost"},
			},
		}},
	}
	if _, err := importer.Finalize(st); !errors.Is(err, importer.ErrUnresolvedResource) {
		t.Fatalf("err=%v", err)
	}
}

func TestFinalizeDuplicateCodesGetDistinctKeys(t *testing.T) {
	st := &importer.ImportState{
		ProjectName: "Dup",
		Workpackages: []model.WorkpackageDraft{
			{Code: "A1", Name: "A1 - Primeiro", Resources: []model.ResourceDraft{{DisplayName: "Alice", ResolvedID: "u-a", Allocations: []model.Allocation{{Month: 1, Year: 2024, Percentage: 12.5}}}}},
			{Code: "A1", Name: "A1 - Repetido", Materials: []model.MaterialDraft{{Name: "Cabo", UnitPrice: 3, Quantity: 4, UsageYear: 2024, Category: model.CategoryMaterials}}},
		},
	}
	actions, err := importer.Finalize(st)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	var keys []string
	for _, a := range actions {
		switch a.Kind {
		case model.ActionAddWorkpackage:
			keys = append(keys, a.Workpackage.Key)
		case model.ActionAddAllocation:
			if a.Allocation.WorkpackageKey != "A1" || a.Allocation.Occupancy != 1250 {
				t.Fatalf("allocation=%+v", a.Allocation)
			}
		case model.ActionAddMaterial:
			if a.Material.WorkpackageKey != "A1#2" {
				t.Fatalf("material key=%s", a.Material.WorkpackageKey)
			}
		}
	}
	if strings.Join(keys, ",") != "A1,A1#2" {
		t.Fatalf("keys=%v", keys)
	}

	sink := memstore.NewMemoryStore()
	if err := importer.Dispatch(context.Background(), sink, actions); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if n := len(sink.Draft().Workpackages); n != 2 {
		t.Fatalf("workpackages=%d", n)
	}
}

type brokenSink struct {
	*memstore.MemoryStore
}

func (brokenSink) AddMaterial(ctx context.Context, m model.MaterialAction) error {
	return errors.New("disk full")
}

func TestDispatchStopsAtFirstErrorAndRollsBack(t *testing.T) {
	ctx := context.Background()
	sink := brokenSink{memstore.NewMemoryStore()}
	before := []model.Action{
		{Kind: model.ActionReset},
		{Kind: model.ActionUpdateProject, Project: &model.ProjectPatch{Name: "Sapo"}},
		{Kind: model.ActionAddWorkpackage, Workpackage: &model.WorkpackageAction{Key: "A1", Name: "Design"}},
	}
	if err := importer.Dispatch(ctx, sink, before); err != nil {
		t.Fatalf("first Dispatch failed: %v", err)
	}

	actions := []model.Action{
		{Kind: model.ActionReset},
		{Kind: model.ActionAddWorkpackage, Workpackage: &model.WorkpackageAction{Key: "B1"}},
		{Kind: model.ActionAddMaterial, Material: &model.MaterialAction{WorkpackageKey: "B1", Name: "x"}},
		{Kind: model.ActionAddWorkpackage, Workpackage: &model.WorkpackageAction{Key: "B2"}},
	}
	err := importer.Dispatch(ctx, sink, actions)
	if err == nil || !strings.Contains(err.Error(), "dispatch action 2 (add-material)") {
		t.Fatalf("err=%v", err)
	}

	draft := sink.Draft()
	if draft.Project.Name != "Sapo" || len(draft.Workpackages) != 1 || draft.Workpackages[0].Key != "A1" {
		t.Fatalf("draft after failed dispatch=%+v", draft)
	}
	if n := len(sink.Actions()); n != len(before) {
		t.Fatalf("actions after failure=%d, want %d", n, len(before))
	}

	// 回滚后可以再次派发
	if err := importer.Dispatch(ctx, sink, before); err != nil {
		t.Fatalf("Dispatch after rollback failed: %v", err)
	}
}
