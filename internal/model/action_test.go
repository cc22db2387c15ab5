package model

import (
	"encoding/json"
	"testing"
)

func TestOccupancyFromPercentage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pct  float64
		want string
	}{
		{50, "0.5000"},
		{100, "1.0000"},
		{12.3456, "0.1235"},
		{33.33333, "0.3333"},
		{150, "1.5000"},
		{0.01, "0.0001"},
	}
	for _, tc := range cases {
		if got := OccupancyFromPercentage(tc.pct).String(); got != tc.want {
			t.Fatalf("OccupancyFromPercentage(%v)=%s, want %s", tc.pct, got, tc.want)
		}
	}
}

func TestOccupancyJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(AllocationAction{WorkpackageKey: "A1", ResourceID: "u", Month: 3, Year: 2024, Occupancy: 2500})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"workpackageKey":"A1","resourceId":"u","month":3,"year":2024,"occupancy":"0.2500"}`
	if string(b) != want {
		t.Fatalf("json=%s", b)
	}
	if f := Occupancy(2500).Float64(); f != 0.25 {
		t.Fatalf("Float64=%v", f)
	}
}

func TestMonthYearBounds(t *testing.T) {
	t.Parallel()

	my := MonthYear{Month: 2, Year: 2024}
	if d := my.LastDay(); d.Day() != 29 {
		t.Fatalf("LastDay=%v", d)
	}
	if d := my.FirstDay(); d.Day() != 1 || d.Month() != 2 {
		t.Fatalf("FirstDay=%v", d)
	}
	if !my.Before(MonthYear{Month: 1, Year: 2025}) || my.Before(MonthYear{Month: 1, Year: 2024}) {
		t.Fatalf("Before ordering broken")
	}
}
