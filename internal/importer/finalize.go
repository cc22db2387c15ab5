package importer

import (
	"context"
	"fmt"

	"starsoftflow/internal/model"
)

// Finalize 将完成对账的导入状态转换为有序动作序列
// reset -> update-project -> 每个工作包：add-workpackage、其分配、其材料
func Finalize(st *ImportState) ([]model.Action, error) {
	for _, wp := range st.Workpackages {
		for _, r := range wp.Resources {
			if !r.Resolved() {
				return nil, fmt.Errorf("%w: %q in %s", ErrUnresolvedResource, r.DisplayName, wp.Code)
			}
		}
	}

	actions := []model.Action{
		{Kind: model.ActionReset},
		{Kind: model.ActionUpdateProject, Project: projectPatch(st)},
	}

	used := make(map[string]int, len(st.Workpackages))
	for _, wp := range st.Workpackages {
		key := workpackageKey(wp.Code, used)

		actions = append(actions, model.Action{
			Kind: model.ActionAddWorkpackage,
			Workpackage: &model.WorkpackageAction{
				Key:   key,
				Name:  wp.Name,
				Start: copyTime(wp.PeriodStart),
				End:   copyTime(wp.PeriodEnd),
			},
		})

		for _, r := range wp.Resources {
			for _, a := range r.Allocations {
				actions = append(actions, model.Action{
					Kind: model.ActionAddAllocation,
					Allocation: &model.AllocationAction{
						WorkpackageKey: key,
						ResourceID:     r.ResolvedID,
						Month:          a.Month,
						Year:           a.Year,
						Occupancy:      model.OccupancyFromPercentage(a.Percentage),
					},
				})
			}
		}

		for _, m := range wp.Materials {
			actions = append(actions, model.Action{
				Kind: model.ActionAddMaterial,
				Material: &model.MaterialAction{
					WorkpackageKey: key,
					Name:           m.Name,
					UnitPrice:      m.UnitPrice,
					Quantity:       m.Quantity,
					Year:           m.UsageYear,
					Category:       m.Category,
				},
			})
		}
	}

	return actions, nil
}

// Dispatch 按顺序把动作交给 Sink，遇到第一个错误即停止。
// Sink 实现 Batcher 时整批提交，失败则回滚，草稿保持派发前的样子
func Dispatch(ctx context.Context, sink Sink, actions []model.Action) (err error) {
	if b, ok := sink.(Batcher); ok {
		if berr := b.Begin(ctx); berr != nil {
			return fmt.Errorf("begin dispatch: %w", berr)
		}
		defer func() {
			if err != nil {
				b.Rollback()
				return
			}
			if cerr := b.Commit(); cerr != nil {
				err = fmt.Errorf("commit dispatch: %w", cerr)
			}
		}()
	}
	return apply(ctx, sink, actions)
}

func apply(ctx context.Context, sink Sink, actions []model.Action) error {
	for i, a := range actions {
		var err error
		switch a.Kind {
		case model.ActionReset:
			err = sink.Reset(ctx)
		case model.ActionUpdateProject:
			err = sink.UpdateProject(ctx, *a.Project)
		case model.ActionAddWorkpackage:
			err = sink.AddWorkpackage(ctx, *a.Workpackage)
		case model.ActionAddAllocation:
			err = sink.AddAllocation(ctx, *a.Allocation)
		case model.ActionAddMaterial:
			err = sink.AddMaterial(ctx, *a.Material)
		default:
			err = fmt.Errorf("unknown action kind %q", a.Kind)
		}
		if err != nil {
			return fmt.Errorf("dispatch action %d (%s): %w", i, a.Kind, err)
		}
	}
	return nil
}

func projectPatch(st *ImportState) *model.ProjectPatch {
	patch := &model.ProjectPatch{
		Name:          st.ProjectName,
		FinancingID:   st.FinancingID,
		FinancingRate: copyFloat(st.Financing.FinancingRate),
		OverheadRate:  copyFloat(st.Financing.OverheadRate),
		ETIValue:      copyFloat(st.Financing.ETIValue),
	}
	if st.ProjectStart != nil {
		t := st.ProjectStart.FirstDay()
		patch.Start = &t
	}
	if st.ProjectEnd != nil {
		t := st.ProjectEnd.LastDay()
		patch.End = &t
	}
	return patch
}

// workpackageKey 工作包编码重复时追加序号，保证键唯一且稳定
func workpackageKey(code string, used map[string]int) string {
	used[code]++
	if n := used[code]; n > 1 {
		return fmt.Sprintf("%s#%d", code, n)
	}
	return code
}

func summarize(st *ImportState, actions []model.Action, created int) *model.ImportSummary {
	s := &model.ImportSummary{
		ProjectName:       st.ProjectName,
		Workpackages:      len(st.Workpackages),
		FallbackMaterials: st.FallbackMaterials,
		CreatedResources:  created,
		FinancingLinked:   st.FinancingID != "",
		Actions:           len(actions),
	}
	for _, wp := range st.Workpackages {
		s.Resources += len(wp.Resources)
		s.Materials += len(wp.Materials)
		for _, r := range wp.Resources {
			s.Allocations += len(r.Allocations)
		}
	}
	return s
}
