package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekday: явный день недели, без опоры на индекс time.Weekday
type Weekday string

const (
	WeekdayMonday    Weekday = "monday"
	WeekdayTuesday   Weekday = "tuesday"
	WeekdayWednesday Weekday = "wednesday"
	WeekdayThursday  Weekday = "thursday"
	WeekdayFriday    Weekday = "friday"
	WeekdaySaturday  Weekday = "saturday"
	WeekdaySunday    Weekday = "sunday"
)

// Weekdays: дни недели по порядку, неделя начинается с понедельника
var Weekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
	WeekdaySunday,
}

var weekdayFromTime = map[time.Weekday]Weekday{
	time.Monday:    WeekdayMonday,
	time.Tuesday:   WeekdayTuesday,
	time.Wednesday: WeekdayWednesday,
	time.Thursday:  WeekdayThursday,
	time.Friday:    WeekdayFriday,
	time.Saturday:  WeekdaySaturday,
	time.Sunday:    WeekdaySunday,
}

func WeekdayOf(date time.Time) Weekday {
	return weekdayFromTime[date.Weekday()]
}

// Offset: смещение дня от понедельника (0..6)
func (w Weekday) Offset() int {
	for i, day := range Weekdays {
		if day == w {
			return i
		}
	}
	return -1
}

func (w Weekday) Valid() bool {
	return w.Offset() >= 0
}

func (w *Weekday) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWeekday, string(data))
	}

	day := Weekday(str)
	if !day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeekday, str)
	}
	*w = day
	return nil
}
