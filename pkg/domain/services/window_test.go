package services

import (
	"testing"
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

func TestNewWindow_Bounds(t *testing.T) {
	// Wednesday of ISO week 2026-W43
	window := NewWindow(time.Date(2026, 10, 21, 17, 45, 0, 0, time.UTC))

	if !window.CurrentStart.Equal(date(2026, 10, 19)) {
		t.Errorf("Expected current week to start 2026-10-19, got %s", window.CurrentStart.Format(entities.DateLayout))
	}
	if !window.PreviousStart.Equal(date(2026, 10, 12)) {
		t.Errorf("Expected previous week to start 2026-10-12, got %s", window.PreviousStart.Format(entities.DateLayout))
	}
	if window.Label() != "2026-W42/2026-W43" {
		t.Errorf("Unexpected label %s", window.Label())
	}
}

func TestWindow_Contains(t *testing.T) {
	window := NewWindow(time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC))

	testCases := []struct {
		name     string
		day      time.Time
		expected bool
	}{
		{"monday of current week", date(2026, 10, 19), true},
		{"sunday of current week", date(2026, 10, 25), true},
		{"monday of previous week", date(2026, 10, 12), true},
		{"sunday two weeks prior", date(2026, 10, 11), false},
		{"monday of next week", date(2026, 10, 26), false},
		{"null date", time.Time{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := window.Contains(tc.day); got != tc.expected {
				t.Errorf("Contains(%s) = %v, expected %v", tc.day.Format(entities.DateLayout), got, tc.expected)
			}
		})
	}
}

func TestWindow_YearBoundary(t *testing.T) {
	// 2027-01-06 is in 2027-W01; the previous week is 2026-W53, which owns 2027-01-01
	window := NewWindow(time.Date(2027, 1, 6, 12, 0, 0, 0, time.UTC))

	if window.CurrentWeek() != (entities.ISOWeek{Year: 2027, Week: 1}) {
		t.Errorf("Expected current week 2027-W01, got %s", window.CurrentWeek())
	}
	if window.PreviousWeek() != (entities.ISOWeek{Year: 2026, Week: 53}) {
		t.Errorf("Expected previous week 2026-W53, got %s", window.PreviousWeek())
	}
	if !window.Contains(date(2027, 1, 1)) {
		t.Errorf("Expected 2027-01-01 (2026-W53) to be in the previous week")
	}
	if !window.Contains(date(2026, 12, 28)) {
		t.Errorf("Expected 2026-12-28 (Monday of 2026-W53) to be included")
	}

	// One week later 2027-01-01 is two weeks back and must not be mistaken for week 1
	later := NewWindow(time.Date(2027, 1, 13, 12, 0, 0, 0, time.UTC))
	if later.PreviousWeek() != (entities.ISOWeek{Year: 2027, Week: 1}) {
		t.Errorf("Expected previous week 2027-W01, got %s", later.PreviousWeek())
	}
	if later.Contains(date(2027, 1, 1)) {
		t.Errorf("Expected 2027-01-01 to be excluded from 2027-W01/W02")
	}
}

func TestWindow_Select(t *testing.T) {
	window := NewWindow(date(2026, 10, 19))
	lines := []entities.RequisitionLine{
		line("S1", "R1", "I1", "Brita", date(2026, 10, 14), ""),
		line("S1", "R2", "I1", "Brita", time.Time{}, ""),
		line("S1", "R3", "I1", "Brita", date(2026, 10, 2), ""),
		line("S1", "R4", "I1", "Brita", date(2026, 10, 19), ""),
	}

	selected := window.Select(lines)
	if len(selected) != 2 {
		t.Fatalf("Expected 2 lines in window, got %d", len(selected))
	}
	if selected[0].RequisitionID != "R1" || selected[1].RequisitionID != "R4" {
		t.Errorf("Unexpected selection %s, %s", selected[0].RequisitionID, selected[1].RequisitionID)
	}
}

func TestWindow_WeeksAcrossYearBoundary(t *testing.T) {
	window := NewWindow(time.Date(2027, 1, 4, 8, 0, 0, 0, time.UTC))
	weeks := window.Weeks()

	if weeks[0] != (entities.ISOWeek{Year: 2026, Week: 53}) {
		t.Errorf("Expected previous week 2026-W53, got %s", weeks[0])
	}
	if weeks[1] != (entities.ISOWeek{Year: 2027, Week: 1}) {
		t.Errorf("Expected current week 2027-W01, got %s", weeks[1])
	}
}
