package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

func optionalDate(t *time.Time) json_types.DateOrEmpty {
	if t == nil {
		return json_types.DateOrEmpty{}
	}
	return json_types.DateOrEmpty{Date: *t}
}

// optionalTimes: оба времени заданы или оба пустые (исключение на весь день)
func optionalTimes(start, end *string) (*domain.TimeOfDay, *domain.TimeOfDay, error) {
	if start == nil && end == nil {
		return nil, nil, nil
	}
	if start == nil || end == nil {
		return nil, nil, fmt.Errorf("%w: only one of start/end time is set", domain.ErrInvalidBlock)
	}

	s, err := domain.ParseTime(*start)
	if err != nil {
		return nil, nil, err
	}
	e, err := domain.ParseTime(*end)
	if err != nil {
		return nil, nil, err
	}
	return &s, &e, nil
}

func decodeDays(data []byte) (map[domain.Weekday]domain.DaySchedule, error) {
	days := make(map[domain.Weekday]domain.DaySchedule)
	if len(data) == 0 {
		return days, nil
	}
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	for weekday := range days {
		if !weekday.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidWeekday, weekday)
		}
	}
	return days, nil
}

func encodeDays(days map[domain.Weekday]domain.DaySchedule) ([]byte, error) {
	if days == nil {
		days = map[domain.Weekday]domain.DaySchedule{}
	}
	return json.Marshal(days)
}

func decodePattern(data []byte) (*domain.RecurrencePattern, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var pattern domain.RecurrencePattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("decode recurrence pattern: %w", err)
	}
	return &pattern, nil
}
