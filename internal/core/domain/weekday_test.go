package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWeekdayOf(t *testing.T) {
	// 2024-03-04 понедельник
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	for i, want := range Weekdays {
		date := start.AddDate(0, 0, i)
		if got := WeekdayOf(date); got != want {
			t.Fatalf("%s: got %s, want %s", date.Format("2006-01-02"), got, want)
		}
		if got := want.Offset(); got != i {
			t.Fatalf("%s offset: got %d, want %d", want, got, i)
		}
	}
}

func TestWeekdayUnmarshalJSON(t *testing.T) {
	var day Weekday
	if err := json.Unmarshal([]byte(`"friday"`), &day); err != nil || day != WeekdayFriday {
		t.Fatalf("expected friday, got %q (%v)", day, err)
	}

	for _, input := range []string{`"Friday"`, `"fri"`, `5`} {
		if err := json.Unmarshal([]byte(input), &day); !errors.Is(err, ErrInvalidWeekday) {
			t.Fatalf("%s: expected ErrInvalidWeekday, got %v", input, err)
		}
	}
}
