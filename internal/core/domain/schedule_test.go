package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

func TestDefaultSchedule(t *testing.T) {
	schedule := DefaultSchedule()

	for _, day := range []Weekday{WeekdayMonday, WeekdayTuesday, WeekdayWednesday, WeekdayThursday, WeekdayFriday} {
		d := schedule.Day(day)
		if !d.IsWorkingDay {
			t.Fatalf("%s must be a working day", day)
		}
		if len(d.Shifts) != 1 || d.Shifts[0] != MustTimeBlock("09:00", "17:00") {
			t.Fatalf("%s: unexpected shifts %v", day, d.Shifts)
		}
		if len(d.BreakTimes) != 1 || d.BreakTimes[0] != MustTimeBlock("12:00", "13:00") {
			t.Fatalf("%s: unexpected breaks %v", day, d.BreakTimes)
		}
	}
	for _, day := range []Weekday{WeekdaySaturday, WeekdaySunday} {
		if schedule.Day(day).IsWorkingDay {
			t.Fatalf("%s must not be a working day", day)
		}
	}
	if err := schedule.Validate(); err != nil {
		t.Fatalf("default schedule must be valid: %v", err)
	}
}

func TestTotalAvailableMinutes(t *testing.T) {
	// 5 дней по 8 часов минус час перерыва
	if got := TotalAvailableMinutes(DefaultSchedule()); got != 5*7*60 {
		t.Fatalf("expected %d minutes, got %d", 5*7*60, got)
	}

	schedule := WeeklySchedule{Days: map[Weekday]DaySchedule{
		WeekdayMonday: {
			IsWorkingDay: true,
			Shifts:       []TimeBlock{MustTimeBlock("08:00", "12:00"), MustTimeBlock("13:00", "18:00")},
			// перерыв частично вне смен: учитывается только пересечение
			BreakTimes: []TimeBlock{MustTimeBlock("11:30", "13:30")},
		},
		WeekdaySaturday: {
			IsWorkingDay: false,
			Shifts:       []TimeBlock{MustTimeBlock("08:00", "12:00")},
		},
	}}
	if got := TotalAvailableMinutes(schedule); got != 240+300-30-30 {
		t.Fatalf("expected %d minutes, got %d", 240+300-60, got)
	}
}

func TestTotalAvailableMinutesOverlappingBlocks(t *testing.T) {
	schedule := WeeklySchedule{Days: map[Weekday]DaySchedule{
		WeekdayMonday: {
			IsWorkingDay: true,
			// 09:00-15:00 после склейки смен
			Shifts: []TimeBlock{MustTimeBlock("09:00", "13:00"), MustTimeBlock("12:00", "15:00")},
			// 12:00-13:30 после склейки перерывов
			BreakTimes: []TimeBlock{
				MustTimeBlock("12:00", "13:00"),
				MustTimeBlock("12:30", "13:30"),
				MustTimeBlock("12:15", "12:45"),
			},
		},
	}}

	if got := TotalAvailableMinutes(schedule); got != 360-90 {
		t.Fatalf("expected %d minutes, got %d", 360-90, got)
	}
}

func TestValidateDaySchedule(t *testing.T) {
	cases := []struct {
		name string
		day  DaySchedule
		want []string
	}{
		{
			name: "valid",
			day:  DefaultSchedule().Day(WeekdayMonday),
			want: []string{},
		},
		{
			name: "non working day ignores content",
			day:  DaySchedule{IsWorkingDay: false, Shifts: []TimeBlock{{Start: 600, End: 500}}},
			want: []string{},
		},
		{
			name: "missing shifts",
			day:  DaySchedule{IsWorkingDay: true},
			want: []string{"Working day must have at least one shift"},
		},
		{
			name: "zero length shift and break",
			day: DaySchedule{
				IsWorkingDay: true,
				Shifts:       []TimeBlock{{Start: 540, End: 540}},
				BreakTimes:   []TimeBlock{{Start: 600, End: 590}},
			},
			want: []string{
				"Shift 1: end time must be after start time",
				"Break 1: end time must be after start time",
			},
		},
		{
			name: "overlapping shifts",
			day: DaySchedule{
				IsWorkingDay: true,
				Shifts: []TimeBlock{
					MustTimeBlock("09:00", "13:00"),
					MustTimeBlock("12:00", "15:00"),
					MustTimeBlock("14:00", "18:00"),
				},
			},
			want: []string{
				"Shift 1 overlaps with shift 2",
				"Shift 2 overlaps with shift 3",
			},
		},
		{
			name: "break outside shifts",
			day: DaySchedule{
				IsWorkingDay: true,
				Shifts:       []TimeBlock{MustTimeBlock("09:00", "12:00")},
				BreakTimes:   []TimeBlock{MustTimeBlock("12:30", "13:00")},
			},
			want: []string{"Break 1 is outside working shifts"},
		},
		{
			name: "overlapping breaks",
			day: DaySchedule{
				IsWorkingDay: true,
				Shifts:       []TimeBlock{MustTimeBlock("09:00", "17:00")},
				BreakTimes: []TimeBlock{
					MustTimeBlock("12:00", "13:00"),
					MustTimeBlock("12:30", "13:30"),
					MustTimeBlock("13:00", "13:15"),
				},
			},
			want: []string{
				"Break 1 overlaps with break 2",
				"Break 2 overlaps with break 3",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateDaySchedule(tc.day)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("error %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestWeeklyScheduleValidate(t *testing.T) {
	schedule := DefaultSchedule()
	schedule.BufferMinutes = -5
	if err := schedule.Validate(); !errors.Is(err, ErrInvalidBuffer) {
		t.Fatalf("expected ErrInvalidBuffer, got %v", err)
	}

	schedule = DefaultSchedule()
	schedule.Days[WeekdayMonday] = DaySchedule{IsWorkingDay: true, Shifts: []TimeBlock{{Start: 600, End: 600}}}
	if err := schedule.Validate(); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("expected ErrInvalidBlock, got %v", err)
	}
}

func TestSelectSchedule(t *testing.T) {
	old := DefaultSchedule()
	old.EffectiveFrom = json_types.NewDate(2024, 1, 1)

	newer := DefaultSchedule()
	newer.EffectiveFrom = json_types.NewDate(2024, 6, 1)
	newer.BufferMinutes = 15

	closed := DefaultSchedule()
	closed.EffectiveFrom = json_types.NewDate(2023, 1, 1)
	closed.EffectiveTo = json_types.DateOrEmpty{Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}
	closed.BufferMinutes = 5

	schedules := []WeeklySchedule{closed, old, newer}

	cases := []struct {
		name   string
		date   time.Time
		buffer int
		none   bool
	}{
		{"closed range", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 5, false},
		{"older only", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 0, false},
		{"newer supersedes", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 15, false},
		{"before all", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectSchedule(schedules, tc.date)
			if tc.none {
				if got != nil {
					t.Fatalf("expected no schedule, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a schedule")
			}
			if got.BufferMinutes != tc.buffer {
				t.Fatalf("expected buffer %d, got %d", tc.buffer, got.BufferMinutes)
			}
		})
	}
}
