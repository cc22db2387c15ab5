package parser

import (
	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// PartialState 单个提取器的产物，互不依赖，由 Merge 合并
type PartialState struct {
	ProjectName  string
	Financing    model.FinancingTerms
	ETIValue     *float64 // RH_Budget_SUBM 提供的 ETI，优先于 BUDGET
	Workpackages []model.WorkpackageDraft
	Materials    []model.MaterialDraft
	ProjectStart *model.MonthYear
	ProjectEnd   *model.MonthYear
	SkippedRows  int
}

// Extraction 全部提取器合并后的结果
type Extraction struct {
	ProjectName  string
	Financing    model.FinancingTerms
	Workpackages []model.WorkpackageDraft
	Materials    []model.MaterialDraft
	ProjectStart *model.MonthYear
	ProjectEnd   *model.MonthYear
	SkippedRows  int
}

// Extractor 从单个工作表网格提取局部结果
type Extractor struct {
	Sheet string
	Fn    func(workbook.Grid) PartialState
}

// Extractors 四个固定布局提取器
func Extractors() []Extractor {
	return []Extractor{
		{Sheet: SheetHome, Fn: ExtractProjectMetadata},
		{Sheet: SheetBudget, Fn: ExtractFinancingTerms},
		{Sheet: SheetResources, Fn: ExtractResourceAllocations},
		{Sheet: SheetMaterials, Fn: ExtractMaterials},
	}
}

// KnownSheet 是否为提取器识别的工作表
func KnownSheet(name string) bool {
	for _, ex := range Extractors() {
		if ex.Sheet == name {
			return true
		}
	}
	return false
}

// Extract 运行全部提取器并合并；缺失的工作表产出空结果
func Extract(wb workbook.Workbook) Extraction {
	extractors := Extractors()
	parts := make([]PartialState, 0, len(extractors))
	for _, ex := range extractors {
		grid, _ := wb.Sheet(ex.Sheet)
		parts = append(parts, ex.Fn(grid))
	}
	return Merge(parts...)
}

// Merge 合并局部结果
// 标量字段取第一个非空值；RH_Budget_SUBM 的 ETI 覆盖 BUDGET 的 ETI；
// 工作包与材料按参数顺序拼接；项目起止取最早/最晚。
func Merge(parts ...PartialState) Extraction {
	var out Extraction
	var eti *float64

	for _, p := range parts {
		if out.ProjectName == "" {
			out.ProjectName = p.ProjectName
		}
		if out.Financing.Name == "" {
			out.Financing.Name = p.Financing.Name
		}
		if out.Financing.FinancingRate == nil {
			out.Financing.FinancingRate = p.Financing.FinancingRate
		}
		if out.Financing.OverheadRate == nil {
			out.Financing.OverheadRate = p.Financing.OverheadRate
		}
		if out.Financing.ETIValue == nil {
			out.Financing.ETIValue = p.Financing.ETIValue
		}
		if p.ETIValue != nil {
			eti = p.ETIValue
		}
		out.Workpackages = append(out.Workpackages, p.Workpackages...)
		out.Materials = append(out.Materials, p.Materials...)
		if p.ProjectStart != nil && (out.ProjectStart == nil || p.ProjectStart.Before(*out.ProjectStart)) {
			v := *p.ProjectStart
			out.ProjectStart = &v
		}
		if p.ProjectEnd != nil && (out.ProjectEnd == nil || out.ProjectEnd.Before(*p.ProjectEnd)) {
			v := *p.ProjectEnd
			out.ProjectEnd = &v
		}
		out.SkippedRows += p.SkippedRows
	}

	if eti != nil {
		out.Financing.ETIValue = eti
	}

	// 材料缺少使用年份时，取项目开始年份
	if out.ProjectStart != nil {
		for i := range out.Materials {
			if out.Materials[i].UsageYear == 0 {
				out.Materials[i].UsageYear = out.ProjectStart.Year
			}
		}
	}

	return out
}

func floatPtr(c workbook.Cell) *float64 {
	f, ok := c.Float()
	if !ok {
		return nil
	}
	return &f
}
