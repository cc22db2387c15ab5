package importer_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"starsoftflow/internal/model"
	"starsoftflow/internal/parser"
)

// buildWorkbook 在内存中生成工作簿，rows 为 0 起始的行
func buildWorkbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName %s failed: %v", name, err)
			}
			first = false
		} else if _, err := wb.NewSheet(name); err != nil {
			t.Fatalf("NewSheet %s failed: %v", name, err)
		}

		for i, row := range rows {
			if len(row) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			values := append([]any(nil), row...)
			if err := wb.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow %s failed: %v", name, err)
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

// rhRows RH_Budget_SUBM：第 4 行为月份序列号（36 列，从 start 开始），数据从第 7 行开始
func rhRows(start model.MonthYear, data ...[]any) [][]any {
	rows := make([][]any, 7)
	header := make([]any, 42)
	my := start
	for col := 6; col <= 41; col++ {
		header[col] = parser.MonthYearToExcelSerial(my)
		if my.Month == 12 {
			my = model.MonthYear{Month: 1, Year: my.Year + 1}
		} else {
			my.Month++
		}
	}
	rows[4] = header
	return append(rows, data...)
}

func resourceRow(name string, salary any, months ...any) []any {
	row := []any{nil, nil, nil, name, nil, salary}
	return append(row, months...)
}

func homeRows(project string) [][]any {
	rows := make([][]any, 4)
	rows[3] = []any{"Projeto", nil, project}
	return rows
}

func budgetRows(financing string, rate, overhead, eti float64) [][]any {
	rows := make([][]any, 8)
	rows[4] = []any{nil, "Financiamento", financing}
	rows[5] = []any{nil, "Taxa", rate}
	rows[6] = []any{nil, "Overhead", overhead}
	rows[7] = []any{nil, "ETI", eti}
	return rows
}

func materialRows(data ...[]any) [][]any {
	rows := make([][]any, 6)
	return append(rows, data...)
}

// twoWorkpackageWorkbook Bob 同时出现在 A1 与 A2
func twoWorkpackageWorkbook(t *testing.T, financing string) []byte {
	t.Helper()
	buf := buildWorkbook(t, map[string][][]any{
		"HOME":   homeRows("Sapo Verde"),
		"BUDGET": budgetRows(financing, 85, 25, 4000),
		"RH_Budget_SUBM": rhRows(model.MonthYear{Month: 1, Year: 2024},
			[]any{"", "A1", "A1 - Design"},
			resourceRow("Alice", 2100, 0.5, 0.5),
			resourceRow("Bob", 1500, 0.25),
			[]any{"", "A2", "A2 - Build"},
			resourceRow("Bob", nil, nil, 1),
		),
		"Outros_Budget": materialRows(
			[]any{"Portátil", "A1 - Design", nil, 2024, "Instrumentos e equipamento", 1200, 2},
			[]any{"Cimento", "A2 - Construção", nil, 2024, "Materiais", 10, 100},
			[]any{"Avulso", "Z9 - Nada", nil, 2024, "Outros custos", 5, 1},
		),
	})
	return buf.Bytes()
}
