package parser

import (
	"strings"

	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// ExtractResourceAllocations 扫描 RH_Budget_SUBM 表：识别工作包边界，
// 逐个资源读取 36 个月的占用率，并记录工资与项目起止月份
func ExtractResourceAllocations(g workbook.Grid) PartialState {
	ps := PartialState{
		ETIValue: findETIValue(g),
	}
	months := monthColumns(g)

	var wps []model.WorkpackageDraft
	for row := rhFirstDataRow; row < g.Rows(); row++ {
		code := g.At(row, rhCodeCol).String()
		name := g.At(row, rhNameCol).String()

		if workpackageCodePattern.MatchString(code) {
			wps = append(wps, model.WorkpackageDraft{Code: code, Name: name})
			continue
		}
		// 首个活动有时省略编码，只写 "A1 - 名称"
		if code == "" && len(wps) == 0 && strings.HasPrefix(name, implicitWorkpackagePrefix) {
			wps = append(wps, model.WorkpackageDraft{Code: implicitWorkpackageCode, Name: name})
			continue
		}
		if len(wps) == 0 {
			continue
		}

		nameCell := g.At(row, rhResourceCol)
		if nameCell.IsEmpty() {
			continue
		}
		// 名称列只有数字（工资等错位数据）不是资源行
		if nameCell.Kind != workbook.CellString {
			ps.SkippedRows++
			continue
		}
		displayName := nameCell.String()

		resource, ok := scanResourceRow(g, row, displayName, months)
		if !ok {
			ps.SkippedRows++
			continue
		}
		wp := &wps[len(wps)-1]
		wp.Resources = append(wp.Resources, resource)
	}

	for i := range wps {
		start, end, ok := allocationBounds(wps[i].Resources)
		if !ok {
			continue
		}
		first, last := start.FirstDay(), end.LastDay()
		wps[i].PeriodStart = &first
		wps[i].PeriodEnd = &last

		if ps.ProjectStart == nil || start.Before(*ps.ProjectStart) {
			s := start
			ps.ProjectStart = &s
		}
		if ps.ProjectEnd == nil || ps.ProjectEnd.Before(end) {
			e := end
			ps.ProjectEnd = &e
		}
	}

	ps.Workpackages = wps
	return ps
}

// scanResourceRow 读取一行资源；没有任何有效月份时返回 false
func scanResourceRow(g workbook.Grid, row int, displayName string, months map[int]model.MonthYear) (model.ResourceDraft, bool) {
	resource := model.ResourceDraft{
		DisplayName:    displayName,
		InferredSalary: floatPtr(g.At(row, rhSalaryCol)),
	}

	for col := rhFirstMonthCol; col <= rhLastMonthCol; col++ {
		my, ok := months[col]
		if !ok {
			continue
		}
		v, ok := g.At(row, col).Float()
		if !ok || v <= 0 || v >= maxOccupancyFraction {
			continue
		}
		pct := roundPercentage(v * 100)
		if pct <= 0 {
			continue
		}
		resource.Allocations = append(resource.Allocations, model.Allocation{
			Month:      my.Month,
			Year:       my.Year,
			Percentage: pct,
		})
	}

	return resource, len(resource.Allocations) > 0
}

// monthColumns 由年份行与月份行构造 列 -> (月, 年) 映射
// 月份行可以是日期序列号，也可以是月份数字/缩写（此时与年份行组合，年份向右延续）
func monthColumns(g workbook.Grid) map[int]model.MonthYear {
	out := make(map[int]model.MonthYear)
	year := 0

	for col := rhFirstMonthCol; col <= rhLastMonthCol; col++ {
		if f, ok := g.At(rhYearRow, col).Float(); ok {
			if y, ok := yearFromNumber(f); ok {
				year = y
			}
		}

		cell := g.At(rhMonthRow, col)
		if f, ok := cell.Float(); ok {
			switch {
			case f > 31:
				my := ExcelSerialToMonthYear(f)
				out[col] = my
				year = my.Year
			case f >= 1 && f <= 12 && f == float64(int(f)) && year > 0:
				out[col] = model.MonthYear{Month: int(f), Year: year}
			}
			continue
		}
		if m, ok := monthFromLabel(cell.String()); ok && year > 0 {
			out[col] = model.MonthYear{Month: m, Year: year}
		}
	}

	return out
}

// findETIValue 在表头区域查找 "Valor ETI" 标签右侧的第一个数字
func findETIValue(g workbook.Grid) *float64 {
	for row := 0; row < rhLabelRows && row < g.Rows(); row++ {
		cells := g[row]
		for col, c := range cells {
			if c.Kind != workbook.CellString {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(c.Text), etiLabelPrefix) {
				continue
			}
			for next := col + 1; next < len(cells); next++ {
				if f, ok := cells[next].Float(); ok {
					return &f
				}
			}
		}
	}
	return nil
}

func allocationBounds(resources []model.ResourceDraft) (start, end model.MonthYear, ok bool) {
	for _, r := range resources {
		for _, a := range r.Allocations {
			my := a.MonthYear()
			if !ok {
				start, end, ok = my, my, true
				continue
			}
			if my.Before(start) {
				start = my
			}
			if end.Before(my) {
				end = my
			}
		}
	}
	return start, end, ok
}
