package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		input    time.Time
		expected time.Time
	}{
		{date(2024, time.January, 1), date(2024, time.January, 31)},
		{date(2024, time.January, 31), date(2024, time.January, 31)},
		{date(2024, time.February, 10), date(2024, time.February, 29)}, // leap
		{date(2023, time.February, 10), date(2023, time.February, 28)},
		{date(2024, time.December, 15), date(2024, time.December, 31)},
	}

	for _, tt := range tests {
		if got := MonthEnd(tt.input); !got.Equal(tt.expected) {
			t.Errorf("MonthEnd(%s) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestAddMonths(t *testing.T) {
	// Jan 31 + 1 month must land on Feb 29, not overflow into March.
	got := AddMonths(date(2024, time.January, 31), 1)
	if !got.Equal(date(2024, time.February, 29)) {
		t.Errorf("AddMonths(Jan 31, 1) = %s, want 2024-02-29", got)
	}

	got = AddMonths(date(2024, time.March, 31), -1)
	if !got.Equal(date(2024, time.February, 29)) {
		t.Errorf("AddMonths(Mar 31, -1) = %s, want 2024-02-29", got)
	}

	got = AddMonths(date(2024, time.June, 30), 12)
	if !got.Equal(date(2025, time.June, 30)) {
		t.Errorf("AddMonths(Jun 30, 12) = %s, want 2025-06-30", got)
	}
}

func TestMonthsBetween(t *testing.T) {
	if n := MonthsBetween(date(2024, time.January, 31), date(2024, time.April, 30)); n != 3 {
		t.Errorf("MonthsBetween = %d, want 3", n)
	}
	if n := MonthsBetween(date(2024, time.April, 1), date(2024, time.January, 1)); n != -3 {
		t.Errorf("MonthsBetween = %d, want -3", n)
	}
	if n := MonthsBetween(date(2024, time.May, 1), date(2024, time.May, 31)); n != 0 {
		t.Errorf("MonthsBetween = %d, want 0", n)
	}
}

func TestMonthEndGrid(t *testing.T) {
	grid := MonthEndGrid(date(2024, time.January, 15), date(2024, time.April, 2))
	if len(grid) != 4 {
		t.Fatalf("grid length = %d, want 4", len(grid))
	}
	want := []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	}
	for i, w := range want {
		if !grid[i].Equal(w) {
			t.Errorf("grid[%d] = %s, want %s", i, grid[i], w)
		}
	}

	if g := MonthEndGrid(date(2024, time.May, 1), date(2024, time.January, 1)); g != nil {
		t.Errorf("inverted range should return nil, got %v", g)
	}
}

func TestFormatParseDate(t *testing.T) {
	d := date(2031, time.July, 31)
	s := FormatDate(d)
	if s != "2031-07-31" {
		t.Errorf("FormatDate = %q", s)
	}
	back, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
