package importer

import (
	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// PendingResource 待人工创建的资源
type PendingResource struct {
	Name           string   `json:"name"`
	InferredSalary *float64 `json:"inferredSalary,omitempty"`
}

// ImportState 单次导入的聚合根，只属于一个 Session
type ImportState struct {
	Filename     string
	RawSheets    workbook.Workbook
	ProjectName  string
	Financing    model.FinancingTerms
	FinancingID  string
	Workpackages []model.WorkpackageDraft
	Materials    []model.MaterialDraft
	ProjectStart *model.MonthYear
	ProjectEnd   *model.MonthYear

	PendingUnmatched []PendingResource
	ResolvedMap      map[string]string

	FallbackMaterials int
	SkippedRows       int
}

// applyResolved 将已创建的标识回填到所有仍未关联、且名称已解析的资源
func (st *ImportState) applyResolved() {
	for i := range st.Workpackages {
		resources := st.Workpackages[i].Resources
		for j := range resources {
			if resources[j].Resolved() {
				continue
			}
			if id, ok := st.ResolvedMap[resources[j].DisplayName]; ok {
				resources[j].ResolvedID = id
			}
		}
	}
}
