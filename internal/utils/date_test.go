package utils

import (
	"testing"
	"time"
)

func TestStartCurrentWeek(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StartCurrentWeek(tc.in); !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		months int
		want   time.Time
	}{
		{1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{13, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := AddMonthsClamped(base, base.Day(), tc.months); !got.Equal(tc.want) {
			t.Errorf("+%d months: expected %s, got %s", tc.months, tc.want.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestDateInRange(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	if !DateInRange(time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC), start, end) {
		t.Error("end date must be included")
	}
	if !DateInRange(start, start, end) {
		t.Error("start date must be included")
	}
	if DateInRange(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), start, end) {
		t.Error("date after range must be excluded")
	}
}

func TestDaysBetween(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	cases := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"same day", time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC), 0},
		{"across february", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2},
		{"backwards", time.Date(2024, 3, 6, 0, 0, 0, 0, moscow), time.Date(2024, 3, 4, 0, 0, 0, 0, moscow), -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.from, tc.to); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
