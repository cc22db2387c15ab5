package parser

import (
	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// ExtractMaterials 扫描 Outros_Budget 表
// 名称、活动、单价、数量缺一不可，且单价与数量必须为数字，否则跳过该行
func ExtractMaterials(g workbook.Grid) PartialState {
	var ps PartialState

	for row := matFirstDataRow; row < g.Rows(); row++ {
		name := g.At(row, matNameCol).String()
		activity := g.At(row, matActivityCol).String()
		price, priceOK := g.At(row, matPriceCol).Float()
		qty, qtyOK := g.At(row, matQuantityCol).Float()

		if name == "" || activity == "" || !priceOK || !qtyOK {
			if !isBlankRow(g, row) {
				ps.SkippedRows++
			}
			continue
		}

		year := 0
		if f, ok := g.At(row, matYearCol).Float(); ok {
			year, _ = yearFromNumber(f)
		}

		ps.Materials = append(ps.Materials, model.MaterialDraft{
			Name:           name,
			UnitPrice:      price,
			Quantity:       qty,
			UsageYear:      year,
			Category:       MapCategoryLabel(g.At(row, matCategoryCol).String()),
			WorkpackageRef: activity,
		})
	}

	return ps
}

func isBlankRow(g workbook.Grid, row int) bool {
	if row < 0 || row >= g.Rows() {
		return true
	}
	for _, c := range g[row] {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
