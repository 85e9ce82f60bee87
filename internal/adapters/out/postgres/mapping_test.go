package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

func strPtr(s string) *string {
	return &s
}

func TestOptionalTimes(t *testing.T) {
	tests := []struct {
		name       string
		start, end *string
		wantNil    bool
		wantErr    error
	}{
		{"both empty", nil, nil, true, nil},
		{"both set", strPtr("08:00"), strPtr("09:30"), false, nil},
		{"only start", strPtr("08:00"), nil, false, domain.ErrInvalidBlock},
		{"malformed", strPtr("8:00"), strPtr("09:30"), false, domain.ErrMalformedTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := optionalTimes(tt.start, tt.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil != (start == nil && end == nil) {
				t.Fatalf("unexpected result %v %v", start, end)
			}
			if !tt.wantNil && (*start != domain.MustParseTime("08:00") || *end != domain.MustParseTime("09:30")) {
				t.Fatalf("unexpected times %s %s", start, end)
			}
		})
	}
}

func TestDaysRoundTrip(t *testing.T) {
	schedule := domain.DefaultSchedule()

	data, err := encodeDays(schedule.Days)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days, err := decodeDays(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	monday := days[domain.WeekdayMonday]
	if !monday.IsWorkingDay || monday.BreakTimes[0] != domain.MustTimeBlock("12:00", "13:00") {
		t.Fatalf("unexpected monday: %+v", monday)
	}
	if days[domain.WeekdaySunday].IsWorkingDay {
		t.Fatal("sunday must stay non-working")
	}
}

func TestDecodeDaysRejectsUnknownWeekday(t *testing.T) {
	if _, err := decodeDays([]byte(`{"funday": {"isWorkingDay": true}}`)); !errors.Is(err, domain.ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestDecodePattern(t *testing.T) {
	pattern, err := decodePattern(nil)
	if err != nil || pattern != nil {
		t.Fatalf("expected nil pattern, got %+v %v", pattern, err)
	}

	pattern, err = decodePattern([]byte(`{"frequency": "weekly", "interval": 2, "daysOfWeek": ["monday"], "endCondition": {"type": "date", "until": "2024-06-30"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pattern.Interval != 2 || pattern.DaysOfWeek[0] != domain.WeekdayMonday {
		t.Fatalf("unexpected pattern: %+v", pattern)
	}
	if !pattern.EndCondition.Until.Date.Equal(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected until: %v", pattern.EndCondition.Until.Date)
	}
}

func TestOptionalDate(t *testing.T) {
	if !optionalDate(nil).IsZero() {
		t.Fatal("nil date must be empty")
	}
	d := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if !optionalDate(&d).Date.Equal(d) {
		t.Fatal("date must be kept")
	}
}
