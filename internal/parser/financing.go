package parser

import (
	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// ExtractFinancingTerms 从 BUDGET 表读取融资方案名称、融资率、间接费率与 ETI
func ExtractFinancingTerms(g workbook.Grid) PartialState {
	return PartialState{
		Financing: model.FinancingTerms{
			Name:          g.At(budgetFinancingName.row, budgetFinancingName.col).String(),
			FinancingRate: floatPtr(g.At(budgetFinancingRate.row, budgetFinancingRate.col)),
			OverheadRate:  floatPtr(g.At(budgetOverheadRate.row, budgetOverheadRate.col)),
			ETIValue:      floatPtr(g.At(budgetETIValue.row, budgetETIValue.col)),
		},
	}
}
