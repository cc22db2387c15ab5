package parser

import (
	"testing"

	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

// rhSheet 构造 RH_Budget_SUBM 网格：月份从 start 起连续，数据行从第 7 行开始
func rhSheet(start model.MonthYear, data ...[]any) workbook.Grid {
	rows := make([][]any, rhFirstDataRow)
	for i := range rows {
		rows[i] = make([]any, rhLastMonthCol+1)
	}
	my := start
	for col := rhFirstMonthCol; col <= rhLastMonthCol; col++ {
		rows[rhMonthRow][col] = MonthYearToExcelSerial(my)
		my = nextMonth(my)
	}
	rows = append(rows, data...)
	return workbook.NewGrid(rows)
}

// resourceRow 资源行：第 3 列名称，第 5 列工资，之后为各月占用
func resourceRow(name string, salary any, months ...any) []any {
	row := []any{nil, nil, nil, name, nil, salary}
	return append(row, months...)
}

func TestExtractResourceAllocations_SingleWorkpackage(t *testing.T) {
	t.Parallel()

	g := rhSheet(model.MonthYear{Month: 1, Year: 2024},
		[]any{"", "A1", "Design"},
		resourceRow("Alice", 2100, 0.5),
	)

	ps := ExtractResourceAllocations(g)
	if len(ps.Workpackages) != 1 {
		t.Fatalf("workpackages=%d, want 1", len(ps.Workpackages))
	}
	wp := ps.Workpackages[0]
	if wp.Code != "A1" || wp.Name != "Design" {
		t.Fatalf("workpackage=%s/%q", wp.Code, wp.Name)
	}
	if len(wp.Resources) != 1 {
		t.Fatalf("resources=%d, want 1", len(wp.Resources))
	}
	r := wp.Resources[0]
	if r.DisplayName != "Alice" {
		t.Fatalf("DisplayName=%q", r.DisplayName)
	}
	if r.InferredSalary == nil || *r.InferredSalary != 2100 {
		t.Fatalf("InferredSalary=%v", r.InferredSalary)
	}
	if r.Resolved() {
		t.Fatalf("fresh resource should be unresolved")
	}
	want := model.Allocation{Month: 1, Year: 2024, Percentage: 50}
	if len(r.Allocations) != 1 || r.Allocations[0] != want {
		t.Fatalf("allocations=%+v, want [%+v]", r.Allocations, want)
	}
	if ps.ProjectStart == nil || *ps.ProjectStart != (model.MonthYear{Month: 1, Year: 2024}) {
		t.Fatalf("ProjectStart=%v", ps.ProjectStart)
	}
	if wp.PeriodStart == nil || wp.PeriodStart.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("PeriodStart=%v", wp.PeriodStart)
	}
	if wp.PeriodEnd == nil || wp.PeriodEnd.Format("2006-01-02") != "2024-01-31" {
		t.Fatalf("PeriodEnd=%v", wp.PeriodEnd)
	}
}

func TestExtractResourceAllocations_OccupancyBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  float64 // 0 表示不产生分配
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 25},
		{0.5, 50},
		{1, 100},
		{1.5, 150},
		{2, 0},
		{2500, 0},
		{"x", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		g := rhSheet(model.MonthYear{Month: 3, Year: 2025},
			[]any{"", "A1", "Design"},
			resourceRow("Alice", nil, tt.value, 0.5),
		)
		ps := ExtractResourceAllocations(g)
		allocs := ps.Workpackages[0].Resources[0].Allocations

		if tt.want == 0 {
			if len(allocs) != 1 || allocs[0].Month != 4 {
				t.Fatalf("value %v: expected only the April allocation, got %+v", tt.value, allocs)
			}
			continue
		}
		if len(allocs) != 2 {
			t.Fatalf("value %v: expected 2 allocations, got %+v", tt.value, allocs)
		}
		if allocs[0].Month != 3 || allocs[0].Year != 2025 || allocs[0].Percentage != tt.want {
			t.Fatalf("value %v: got %+v, want percentage %v", tt.value, allocs[0], tt.want)
		}
	}
}

func TestExtractResourceAllocations_ImplicitFirstWorkpackage(t *testing.T) {
	t.Parallel()

	g := rhSheet(model.MonthYear{Month: 1, Year: 2024},
		[]any{"", "", "A1 - Levantamento"},
		resourceRow("Alice", nil, 0.5),
		[]any{"", "A2", "A2 - Construção"},
		resourceRow("Bob", nil, nil, 1),
	)

	ps := ExtractResourceAllocations(g)
	if len(ps.Workpackages) != 2 {
		t.Fatalf("workpackages=%d, want 2", len(ps.Workpackages))
	}
	if got := ps.Workpackages[0]; got.Code != "A1" || got.Name != "A1 - Levantamento" || len(got.Resources) != 1 {
		t.Fatalf("implicit workpackage=%+v", got)
	}
	if got := ps.Workpackages[1]; got.Code != "A2" || got.Resources[0].DisplayName != "Bob" {
		t.Fatalf("second workpackage=%+v", got)
	}
	if ps.ProjectEnd == nil || *ps.ProjectEnd != (model.MonthYear{Month: 2, Year: 2024}) {
		t.Fatalf("ProjectEnd=%v", ps.ProjectEnd)
	}
}

func TestExtractResourceAllocations_DropsIdleResourcesAndOrphans(t *testing.T) {
	t.Parallel()

	g := rhSheet(model.MonthYear{Month: 1, Year: 2024},
		resourceRow("Orphan", nil, 0.5),
		[]any{"", "A1", "Design"},
		resourceRow("Idle", 1500, 0, 0, 3000),
		resourceRow("Busy", nil, 0.1),
		[]any{"", "", "Subtotal"},
	)

	ps := ExtractResourceAllocations(g)
	if len(ps.Workpackages) != 1 {
		t.Fatalf("workpackages=%d", len(ps.Workpackages))
	}
	res := ps.Workpackages[0].Resources
	if len(res) != 1 || res[0].DisplayName != "Busy" {
		t.Fatalf("resources=%+v", res)
	}
	if ps.SkippedRows != 1 {
		t.Fatalf("SkippedRows=%d, want 1", ps.SkippedRows)
	}
}

func TestExtractResourceAllocations_MonthLabelsWithYearRow(t *testing.T) {
	t.Parallel()

	rows := make([][]any, rhFirstDataRow)
	for i := range rows {
		rows[i] = make([]any, rhLastMonthCol+1)
	}
	rows[0][2] = "Valor ETI"
	rows[0][4] = 4321.5
	rows[rhYearRow][rhFirstMonthCol] = 2024
	rows[rhMonthRow][rhFirstMonthCol] = "Nov"
	rows[rhMonthRow][rhFirstMonthCol+1] = "Dez"
	rows[rhYearRow][rhFirstMonthCol+2] = 2025
	rows[rhMonthRow][rhFirstMonthCol+2] = 1
	rows = append(rows,
		[]any{"", "A1", "Design"},
		resourceRow("Alice", nil, 0.2, 0.3, 0.4),
	)

	ps := ExtractResourceAllocations(workbook.NewGrid(rows))
	if ps.ETIValue == nil || *ps.ETIValue != 4321.5 {
		t.Fatalf("ETIValue=%v", ps.ETIValue)
	}
	allocs := ps.Workpackages[0].Resources[0].Allocations
	want := []model.Allocation{
		{Month: 11, Year: 2024, Percentage: 20},
		{Month: 12, Year: 2024, Percentage: 30},
		{Month: 1, Year: 2025, Percentage: 40},
	}
	if len(allocs) != len(want) {
		t.Fatalf("allocations=%+v", allocs)
	}
	for i := range want {
		if allocs[i] != want[i] {
			t.Fatalf("allocation[%d]=%+v, want %+v", i, allocs[i], want[i])
		}
	}
}

func TestExtractResourceAllocations_IgnoresColumnsBeyondWindow(t *testing.T) {
	t.Parallel()

	row := resourceRow("Alice", nil)
	for col := rhFirstMonthCol; col <= rhLastMonthCol+2; col++ {
		row = append(row, 0.5)
	}
	g := rhSheet(model.MonthYear{Month: 1, Year: 2024}, []any{"", "A1", "Design"}, row)

	allocs := ExtractResourceAllocations(g).Workpackages[0].Resources[0].Allocations
	if len(allocs) != TemplateMonths {
		t.Fatalf("allocations=%d, want %d", len(allocs), TemplateMonths)
	}
}

func TestExtractResourceAllocations_MissingSheet(t *testing.T) {
	t.Parallel()

	ps := ExtractResourceAllocations(nil)
	if len(ps.Workpackages) != 0 || ps.ProjectStart != nil || ps.ETIValue != nil {
		t.Fatalf("expected empty partial state, got %+v", ps)
	}
}

func TestExtractResourceAllocations_NumericNameCellIsNotAResource(t *testing.T) {
	t.Parallel()

	g := rhSheet(model.MonthYear{Month: 1, Year: 2024},
		[]any{"", "A1", "Design"},
		[]any{nil, nil, nil, 2100, nil, nil, 0.5},
		[]any{nil, nil, nil, "1800", nil, nil, 0.5},
		resourceRow("Alice", 2100, 0.5),
	)

	ps := ExtractResourceAllocations(g)
	res := ps.Workpackages[0].Resources
	if len(res) != 1 || res[0].DisplayName != "Alice" {
		t.Fatalf("resources=%+v", res)
	}
	if ps.SkippedRows != 2 {
		t.Fatalf("SkippedRows=%d, want 2", ps.SkippedRows)
	}
}
