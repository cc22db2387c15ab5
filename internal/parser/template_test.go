package parser

import (
	"bytes"
	"testing"

	"starsoftflow/internal/model"
	"starsoftflow/internal/workbook"
)

func TestTemplateRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, model.MonthYear{Month: 1, Year: 2025}); err != nil {
		t.Fatalf("WriteTemplate failed: %v", err)
	}

	wb, err := workbook.Read(&buf, "template.xlsx")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	ex := Extract(wb)
	if ex.ProjectName != "Projeto Exemplo" {
		t.Fatalf("ProjectName=%q", ex.ProjectName)
	}
	if ex.Financing.Name != "Portugal 2030" {
		t.Fatalf("Financing.Name=%q", ex.Financing.Name)
	}
	if ex.Financing.ETIValue == nil || *ex.Financing.ETIValue != 4200 {
		t.Fatalf("ETIValue=%v, want 4200", ex.Financing.ETIValue)
	}
	if len(ex.Workpackages) != 2 {
		t.Fatalf("workpackages=%d, want 2", len(ex.Workpackages))
	}

	a1 := ex.Workpackages[0]
	if a1.Code != "A1" || len(a1.Resources) != 2 {
		t.Fatalf("A1=%+v", a1)
	}
	if got := len(a1.Resources[0].Allocations); got != 3 {
		t.Fatalf("Ana allocations in A1=%d, want 3", got)
	}
	if got := a1.Resources[1].Allocations[0]; got != (model.Allocation{Month: 1, Year: 2025, Percentage: 100}) {
		t.Fatalf("Bruno first allocation=%+v", got)
	}

	if ex.ProjectStart == nil || *ex.ProjectStart != (model.MonthYear{Month: 1, Year: 2025}) {
		t.Fatalf("ProjectStart=%v", ex.ProjectStart)
	}
	if ex.ProjectEnd == nil || *ex.ProjectEnd != (model.MonthYear{Month: 5, Year: 2025}) {
		t.Fatalf("ProjectEnd=%v", ex.ProjectEnd)
	}
	if len(ex.Materials) != 2 || ex.Materials[1].Category != model.CategoryTravel {
		t.Fatalf("materials=%+v", ex.Materials)
	}
}

func TestBuildTemplateRejectsInvalidStart(t *testing.T) {
	t.Parallel()

	if _, err := BuildTemplate(model.MonthYear{Month: 13, Year: 2025}); err == nil {
		t.Fatalf("expected error for month 13")
	}
}

func TestExtractEmptyWorkbook(t *testing.T) {
	t.Parallel()

	ex := Extract(workbook.Workbook{})
	if ex.ProjectName != "" || len(ex.Workpackages) != 0 || len(ex.Materials) != 0 {
		t.Fatalf("expected empty extraction, got %+v", ex)
	}
}
