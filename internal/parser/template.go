package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"starsoftflow/internal/model"
)

// TemplateMonths 模板中月度矩阵的列数
const TemplateMonths = rhLastMonthCol - rhFirstMonthCol + 1

// BuildTemplate 生成与导入布局一致的示例工作簿
func BuildTemplate(start model.MonthYear) (*excelize.File, error) {
	if start.Month < 1 || start.Month > 12 || start.Year < 1900 {
		return nil, fmt.Errorf("invalid template start %d/%d", start.Month, start.Year)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetHome); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetBudget, SheetResources, SheetMaterials} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	w := &templateWriter{f: f}

	// HOME
	w.set(SheetHome, homeProjectName.row, homeProjectName.col-1, "Projeto")
	w.set(SheetHome, homeProjectName.row, homeProjectName.col, "Projeto Exemplo")

	// BUDGET
	w.set(SheetBudget, budgetFinancingName.row, budgetFinancingName.col-1, "Financiamento")
	w.set(SheetBudget, budgetFinancingName.row, budgetFinancingName.col, "Portugal 2030")
	w.set(SheetBudget, budgetFinancingRate.row, budgetFinancingRate.col-1, "Taxa de financiamento")
	w.set(SheetBudget, budgetFinancingRate.row, budgetFinancingRate.col, 85)
	w.set(SheetBudget, budgetOverheadRate.row, budgetOverheadRate.col-1, "Overhead")
	w.set(SheetBudget, budgetOverheadRate.row, budgetOverheadRate.col, 25)
	w.set(SheetBudget, budgetETIValue.row, budgetETIValue.col-1, "Valor ETI")
	w.set(SheetBudget, budgetETIValue.row, budgetETIValue.col, 4000)

	// RH_Budget_SUBM
	w.set(SheetResources, 0, 0, "Orçamento de Recursos Humanos")
	w.set(SheetResources, 1, 0, "Valor ETI")
	w.set(SheetResources, 1, 1, 4200)
	my := start
	for i := 0; i < TemplateMonths; i++ {
		col := rhFirstMonthCol + i
		if i == 0 || my.Month == 1 {
			w.set(SheetResources, rhYearRow, col, my.Year)
		}
		w.set(SheetResources, rhMonthRow, col, MonthYearToExcelSerial(my))
		my = nextMonth(my)
	}
	w.set(SheetResources, rhFirstDataRow-1, rhCodeCol, "Código")
	w.set(SheetResources, rhFirstDataRow-1, rhNameCol, "Atividade")
	w.set(SheetResources, rhFirstDataRow-1, rhResourceCol, "Recurso")
	w.set(SheetResources, rhFirstDataRow-1, rhSalaryCol, "Salário")

	rows := [][]any{
		{nil, "A1", "A1 - Análise de requisitos"},
		{nil, nil, nil, "Ana Silva", nil, 2500, 0.5, 0.5, 0.25},
		{nil, nil, nil, "Bruno Costa", nil, 1800, 1, 1},
		{nil, "A2", "A2 - Desenvolvimento"},
		{nil, nil, nil, "Ana Silva", nil, 2500, nil, nil, 0.25, 0.5, 0.5},
	}
	for i, row := range rows {
		for col, v := range row {
			if v != nil {
				w.set(SheetResources, rhFirstDataRow+i, col, v)
			}
		}
	}

	// Outros_Budget
	matHeaders := []string{"Designação", "Atividade", "", "Ano", "Rubrica", "Preço unitário", "Quantidade"}
	for col, h := range matHeaders {
		if h != "" {
			w.set(SheetMaterials, matFirstDataRow-1, col, h)
		}
	}
	materials := [][]any{
		{"Portátil", "A1 - Análise de requisitos", nil, start.Year, "Instrumentos e equipamento", 1200, 2},
		{"Deslocação a Bruxelas", "A2 - Desenvolvimento", nil, start.Year, "Deslocações e estadias", 350, 3},
	}
	for i, row := range materials {
		for col, v := range row {
			if v != nil {
				w.set(SheetMaterials, matFirstDataRow+i, col, v)
			}
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	_ = f.SetRowStyle(SheetResources, rhFirstDataRow, rhFirstDataRow, headerStyle)
	_ = f.SetRowStyle(SheetMaterials, matFirstDataRow, matFirstDataRow, headerStyle)
	_ = f.SetColWidth(SheetResources, "C", "D", 30)
	_ = f.SetColWidth(SheetMaterials, "A", "B", 30)

	return f, nil
}

// WriteTemplate 将示例工作簿写入 w
func WriteTemplate(out io.Writer, start model.MonthYear) error {
	f, err := BuildTemplate(start)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(out)
}

type templateWriter struct {
	f   *excelize.File
	err error
}

// set 使用 0 起始的行列坐标写入单元格
func (w *templateWriter) set(sheet string, row, col int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, cell, v)
}

func nextMonth(m model.MonthYear) model.MonthYear {
	if m.Month == 12 {
		return model.MonthYear{Month: 1, Year: m.Year + 1}
	}
	return model.MonthYear{Month: m.Month + 1, Year: m.Year}
}
