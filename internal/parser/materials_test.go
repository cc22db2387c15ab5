package parser

import (
	"testing"

	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

func materialsSheet(data ...[]any) workbook.Grid {
	rows := make([][]any, matFirstDataRow)
	rows[matFirstDataRow-1] = []any{"Designação", "Atividade", nil, "Ano", "Rubrica", "Preço unitário", "Quantidade"}
	return workbook.NewGrid(append(rows, data...))
}

func TestExtractMaterials(t *testing.T) {
	t.Parallel()

	g := materialsSheet(
		[]any{"Portátil", "A1 - Design", nil, 2024, "Instrumentos e equipamento", 1200, 2},
		[]any{"Viagem", "A2 - Build", nil, nil, "Rubrica desconhecida", 300.5, 1},
		[]any{"Sem preço", "A1 - Design", nil, 2024, "Materiais", nil, 1},
		[]any{"Preço texto", "A1 - Design", nil, 2024, "Materiais", "muito", 1},
		[]any{"", "A1 - Design", nil, 2024, "Materiais", 10, 1},
		[]any{"Sem atividade", "", nil, 2024, "Materiais", 10, 1},
		[]any{},
	)

	ps := ExtractMaterials(g)
	if len(ps.Materials) != 2 {
		t.Fatalf("materials=%+v", ps.Materials)
	}
	first := ps.Materials[0]
	want := model.MaterialDraft{
		Name:           "Portátil",
		UnitPrice:      1200,
		Quantity:       2,
		UsageYear:      2024,
		Category:       model.CategoryEquipment,
		WorkpackageRef: "A1 - Design",
	}
	if first != want {
		t.Fatalf("material[0]=%+v, want %+v", first, want)
	}
	second := ps.Materials[1]
	if second.Category != model.CategoryMaterials || second.UsageYear != 0 || second.UnitPrice != 300.5 {
		t.Fatalf("material[1]=%+v", second)
	}
	if ps.SkippedRows != 4 {
		t.Fatalf("SkippedRows=%d, want 4", ps.SkippedRows)
	}
}

func TestExtractFinancingAndMetadata(t *testing.T) {
	t.Parallel()

	home := make([][]any, 4)
	home[3] = []any{"Projeto", nil, "Sapo Verde"}
	if got := ExtractProjectMetadata(workbook.NewGrid(home)).ProjectName; got != "Sapo Verde" {
		t.Fatalf("ProjectName=%q", got)
	}

	budget := make([][]any, 8)
	budget[4] = []any{nil, "Financiamento", "Portugal 2030"}
	budget[5] = []any{nil, "Taxa", 85}
	budget[6] = []any{nil, "Overhead", "n/a"}
	budget[7] = []any{nil, "ETI", 4000}

	fin := ExtractFinancingTerms(workbook.NewGrid(budget)).Financing
	if fin.Name != "Portugal 2030" {
		t.Fatalf("Name=%q", fin.Name)
	}
	if fin.FinancingRate == nil || *fin.FinancingRate != 85 {
		t.Fatalf("FinancingRate=%v", fin.FinancingRate)
	}
	if fin.OverheadRate != nil {
		t.Fatalf("OverheadRate should be unset, got %v", *fin.OverheadRate)
	}
	if fin.ETIValue == nil || *fin.ETIValue != 4000 {
		t.Fatalf("ETIValue=%v", fin.ETIValue)
	}
}

func TestMergeResourceETIWins(t *testing.T) {
	t.Parallel()

	budgetETI, rhETI := 4000.0, 4200.0
	start := model.MonthYear{Month: 2, Year: 2025}

	out := Merge(
		PartialState{ProjectName: "P"},
		PartialState{Financing: model.FinancingTerms{Name: "F", ETIValue: &budgetETI}},
		PartialState{ETIValue: &rhETI, ProjectStart: &start, ProjectEnd: &start},
		PartialState{Materials: []model.MaterialDraft{{Name: "m", WorkpackageRef: "A1"}}},
	)

	if out.ProjectName != "P" || out.Financing.Name != "F" {
		t.Fatalf("merged=%+v", out)
	}
	if out.Financing.ETIValue == nil || *out.Financing.ETIValue != 4200 {
		t.Fatalf("ETIValue=%v, want 4200", out.Financing.ETIValue)
	}
	if out.Materials[0].UsageYear != 2025 {
		t.Fatalf("UsageYear=%d, want project start year", out.Materials[0].UsageYear)
	}

	out = Merge(PartialState{Financing: model.FinancingTerms{ETIValue: &budgetETI}}, PartialState{})
	if out.Financing.ETIValue == nil || *out.Financing.ETIValue != 4000 {
		t.Fatalf("ETIValue without resource override=%v", out.Financing.ETIValue)
	}
}

func TestKnownSheet(t *testing.T) {
	t.Parallel()

	for _, name := range []string{SheetHome, SheetBudget, SheetResources, SheetMaterials} {
		if !KnownSheet(name) {
			t.Fatalf("%s should be known", name)
		}
	}
	if KnownSheet("Sheet1") || KnownSheet("home") {
		t.Fatalf("unexpected known sheet")
	}
}
