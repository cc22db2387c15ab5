package importer

import "starsoftflow/internal/model"

// Reconciliation 资源对账结果
type Reconciliation struct {
	Workpackages []model.WorkpackageDraft
	Unmatched    []PendingResource // 按首次出现顺序去重
}

// Reconcile 按显示名称精确匹配用户目录，不修改入参
func Reconcile(wps []model.WorkpackageDraft, users []model.User) Reconciliation {
	known := make(map[string]string, len(users))
	for _, u := range users {
		if _, ok := known[u.DisplayName]; !ok && u.ID != "" {
			known[u.DisplayName] = u.ID
		}
	}

	out := Reconciliation{Workpackages: make([]model.WorkpackageDraft, len(wps))}
	seen := make(map[string]int)

	for i, wp := range wps {
		wp = wp.Clone()
		for j := range wp.Resources {
			r := &wp.Resources[j]
			if r.Resolved() {
				continue
			}
			if id, ok := known[r.DisplayName]; ok {
				r.ResolvedID = id
				continue
			}
			if k, ok := seen[r.DisplayName]; ok {
				if out.Unmatched[k].InferredSalary == nil && r.InferredSalary != nil {
					v := *r.InferredSalary
					out.Unmatched[k].InferredSalary = &v
				}
				continue
			}
			pending := PendingResource{Name: r.DisplayName}
			if r.InferredSalary != nil {
				v := *r.InferredSalary
				pending.InferredSalary = &v
			}
			seen[r.DisplayName] = len(out.Unmatched)
			out.Unmatched = append(out.Unmatched, pending)
		}
		out.Workpackages[i] = wp
	}

	return out
}
