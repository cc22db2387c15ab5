package model

import "time"

// MonthYear 月份 + 年份
type MonthYear struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// IsZero 是否未设置
func (m MonthYear) IsZero() bool {
	return m.Month == 0 && m.Year == 0
}

// Before 是否早于 o
func (m MonthYear) Before(o MonthYear) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// FirstDay 当月第一天 (UTC)
func (m MonthYear) FirstDay() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay 当月最后一天 (UTC)
func (m MonthYear) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// Allocation 某月的占用率（百分点，0 < Percentage <= 200）
type Allocation struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Percentage float64 `json:"percentage"`
}

// MonthYear 返回分配所在月份
func (a Allocation) MonthYear() MonthYear {
	return MonthYear{Month: a.Month, Year: a.Year}
}

// ResourceDraft 导入中的人力资源
type ResourceDraft struct {
	DisplayName    string       `json:"displayName"`
	InferredSalary *float64     `json:"inferredSalary,omitempty"`
	ResolvedID     string       `json:"resolvedId,omitempty"` // 空串表示尚未匹配
	Allocations    []Allocation `json:"allocations"`
}

// Resolved 是否已关联到用户
func (r ResourceDraft) Resolved() bool {
	return r.ResolvedID != ""
}

// MaterialDraft 导入中的材料/其他费用
type MaterialDraft struct {
	Name           string   `json:"name"`
	UnitPrice      float64  `json:"unitPrice"`
	Quantity       float64  `json:"quantity"`
	UsageYear      int      `json:"usageYear"`
	Category       Category `json:"category"`
	WorkpackageRef string   `json:"workpackageRef"` // 原始活动名称
}

// WorkpackageDraft 导入中的工作包
type WorkpackageDraft struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	PeriodStart *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time      `json:"periodEnd,omitempty"`
	Resources   []ResourceDraft `json:"resources"`
	Materials   []MaterialDraft `json:"materials"`
}

// Clone 深拷贝，用于无副作用的对账步骤
func (w WorkpackageDraft) Clone() WorkpackageDraft {
	out := w
	out.Resources = make([]ResourceDraft, len(w.Resources))
	for i, r := range w.Resources {
		r.Allocations = append([]Allocation(nil), r.Allocations...)
		if r.InferredSalary != nil {
			v := *r.InferredSalary
			r.InferredSalary = &v
		}
		out.Resources[i] = r
	}
	out.Materials = append([]MaterialDraft(nil), w.Materials...)
	return out
}

// FinancingTerms BUDGET 表中的融资条款
type FinancingTerms struct {
	Name          string   `json:"name"`
	FinancingRate *float64 `json:"financingRate,omitempty"`
	OverheadRate  *float64 `json:"overheadRate,omitempty"`
	ETIValue      *float64 `json:"etiValue,omitempty"`
}

// ImportSummary 导入完成后的统计
type ImportSummary struct {
	ProjectName       string `json:"projectName"`
	Workpackages      int    `json:"workpackages"`
	Resources         int    `json:"resources"`
	Allocations       int    `json:"allocations"`
	Materials         int    `json:"materials"`
	FallbackMaterials int    `json:"fallbackMaterials"`
	CreatedResources  int    `json:"createdResources"`
	FinancingLinked   bool   `json:"financingLinked"`
	Actions           int    `json:"actions"`
}
