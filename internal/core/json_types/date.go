package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate парсит календарную дату (без времени и таймзоны).
// Все даты считаются локальными для врача, поэтому храним их в UTC на 00:00.
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.ParseInLocation(DateLayout, str, time.UTC)
	if err != nil {
		// Допускаем дату со временем, но время отбрасываем
		parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date %q: %v", str, err)
		}
	}

	return time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, time.UTC), nil
}

type Date struct {
	Date time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (t *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse date: %v", err)
	}

	parsedDate, err := ParseDate(str)
	if err != nil {
		return err
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format(DateLayout))
}

func (t Date) String() string {
	return t.Date.Format(DateLayout)
}

func (t Date) IsZero() bool {
	return t.Date.IsZero()
}

// DateOrEmpty: дата, которая может быть null (например, открытый конец периода действия)
type DateOrEmpty struct {
	Date time.Time
}

func (t *DateOrEmpty) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	dt := Date{}
	if err := dt.UnmarshalJSON(data); err != nil {
		return err
	}

	*t = DateOrEmpty{Date: dt.Date}
	return nil
}

func (t DateOrEmpty) MarshalJSON() ([]byte, error) {
	if t.Date.IsZero() {
		return json.Marshal(nil)
	}

	return json.Marshal(t.Date.Format(DateLayout))
}

func (t DateOrEmpty) IsZero() bool {
	return t.Date.IsZero()
}
