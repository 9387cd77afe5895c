package model

import (
	"testing"
	"time"
)

func TestCategoryValid(t *testing.T) {
	for c := range CategoryLabels {
		if !c.Valid() {
			t.Errorf("category %s should be valid", c)
		}
	}
	if Category("GAMBLING").Valid() {
		t.Error("unknown category should not be valid")
	}
	if Category("food").Valid() {
		t.Error("categories are case sensitive")
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryFood.Label(); got != "Food" {
		t.Errorf("expected %q, got %q", "Food", got)
	}
	if got := Category("CUSTOM").Label(); got != "CUSTOM" {
		t.Errorf("unknown category should fall back to raw value, got %q", got)
	}
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, time.June, 17, 14, 30, 45, 123, time.UTC)
	want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(in); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Already at month start stays put.
	if got := MonthStart(want); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMonthEnd(t *testing.T) {
	in := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
	end := MonthEnd(in)

	if end.Month() != time.June || end.Day() != 30 {
		t.Errorf("expected last day of June, got %v", end)
	}
	next := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	if !end.Before(next) {
		t.Errorf("month end %v should precede next month start", end)
	}
	if next.Sub(end) != time.Nanosecond {
		t.Errorf("month end should be the last instant of the month, got %v", end)
	}
}

func TestMonthBoundariesAcrossYear(t *testing.T) {
	in := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	want := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(in); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if end := MonthEnd(in); end.Year() != 2025 || end.Month() != time.December {
		t.Errorf("expected December 2025 end, got %v", end)
	}
}
