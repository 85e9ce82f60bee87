package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type EndConditionType string

const (
	EndConditionDate  EndConditionType = "date"
	EndConditionCount EndConditionType = "count"
)

// EndCondition: условие окончания серии: либо дата (включительно), либо количество повторений
type EndCondition struct {
	Type  EndConditionType       `json:"type"`
	Until json_types.DateOrEmpty `json:"until"`
	Count int                    `json:"count,omitempty"`
}

// RecurrencePattern: конфигурация повторения. После генерации серии не меняется:
// изменение повторения означает удаление и повторную генерацию серии.
type RecurrencePattern struct {
	Frequency    Frequency    `json:"frequency"`
	Interval     int          `json:"interval"`
	DaysOfWeek   []Weekday    `json:"daysOfWeek,omitempty"`
	EndCondition EndCondition `json:"endCondition"`
}

// Validate отклоняет невозможные комбинации. nil DaysOfWeek означает "не задано",
// пустой список для недельной частоты считается ошибкой конфигурации.
func (p RecurrencePattern) Validate() error {
	if p.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidRecurrence, p.Interval)
	}

	switch p.Frequency {
	case FrequencyDaily, FrequencyMonthly:
		if p.DaysOfWeek != nil {
			return fmt.Errorf("%w: daysOfWeek is only allowed for weekly frequency", ErrInvalidRecurrence)
		}
	case FrequencyWeekly:
		if p.DaysOfWeek != nil && len(p.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly pattern with empty daysOfWeek", ErrUnsatisfiableRecurrence)
		}
		for _, day := range p.DaysOfWeek {
			if !day.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
			}
		}
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, p.Frequency)
	}

	switch p.EndCondition.Type {
	case EndConditionCount:
		if p.EndCondition.Count <= 0 {
			return fmt.Errorf("%w: count must be >= 1, got %d", ErrUnsatisfiableRecurrence, p.EndCondition.Count)
		}
	case EndConditionDate:
		if p.EndCondition.Until.IsZero() {
			return fmt.Errorf("%w: end date is required", ErrInvalidRecurrence)
		}
	default:
		return fmt.Errorf("%w: unknown end condition %q", ErrInvalidRecurrence, p.EndCondition.Type)
	}

	return nil
}

// Occurrence: одно конкретное повторение серии
type Occurrence struct {
	Date      json_types.Date `json:"date"`
	StartTime *TimeOfDay      `json:"startTime,omitempty"`
	EndTime   *TimeOfDay      `json:"endTime,omitempty"`
}

// Series: результат генерации серии для записи в таблицу приемов или блокировок
type Series struct {
	ID          uuid.UUID         `json:"id"`
	Pattern     RecurrencePattern `json:"pattern"`
	Occurrences []Occurrence      `json:"occurrences"`
}
