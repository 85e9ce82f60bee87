package slot_generator_service

import (
	"fmt"
	"sort"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/utils"
)

// Ограничение длины серии по умолчанию, если не задано в конфиге
const DefaultMaxSeriesOccurrences = 500

// GenerateSeries разворачивает правило повторения в упорядоченный список повторений.
// Базовое повторение всегда входит в серию, даты строго возрастают и не повторяются.
// Одна и та же функция используется для повторяющихся приемов и повторяющихся блокировок.
func GenerateSeries(base domain.Occurrence, pattern domain.RecurrencePattern) ([]domain.Occurrence, error) {
	return GenerateSeriesLimited(base, pattern, DefaultMaxSeriesOccurrences)
}

// GenerateSeriesLimited: то же, но с явным ограничением количества повторений
func GenerateSeriesLimited(base domain.Occurrence, pattern domain.RecurrencePattern, limit int) ([]domain.Occurrence, error) {
	return expandSeries(base, pattern, limit, time.Time{})
}

// expandSeries: общий обход серии. Если stopAfter задан, обход молча завершается
// на первой дате позже stopAfter (нужно для проверки блокировок на конкретную дату).
func expandSeries(base domain.Occurrence, pattern domain.RecurrencePattern, limit int, stopAfter time.Time) ([]domain.Occurrence, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if base.Date.IsZero() {
		return nil, fmt.Errorf("%w: base occurrence date is required", domain.ErrInvalidRecurrence)
	}
	if base.StartTime != nil && base.EndTime != nil {
		if err := (domain.TimeBlock{Start: *base.StartTime, End: *base.EndTime}).Validate(); err != nil {
			return nil, err
		}
	}

	start := utils.StartCurrentDay(base.Date.Date)

	var until time.Time
	if pattern.EndCondition.Type == domain.EndConditionDate {
		until = utils.StartCurrentDay(pattern.EndCondition.Until.Date)
		// Серия не может быть пустой и не может выходить за границу
		if until.Before(start) {
			return nil, fmt.Errorf("%w: end date %s is before base date %s",
				domain.ErrUnsatisfiableRecurrence, until.Format(json_types.DateLayout), start.Format(json_types.DateLayout))
		}
	}

	if pattern.EndCondition.Type == domain.EndConditionCount && pattern.EndCondition.Count > limit && stopAfter.IsZero() {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrSeriesTooLong, pattern.EndCondition.Count, limit)
	}

	next := newDateIterator(start, pattern)
	occurrences := make([]domain.Occurrence, 0)

	for {
		if pattern.EndCondition.Type == domain.EndConditionCount && len(occurrences) >= pattern.EndCondition.Count {
			break
		}

		date := next()
		if pattern.EndCondition.Type == domain.EndConditionDate && date.After(until) {
			break
		}
		if !stopAfter.IsZero() && date.After(stopAfter) {
			break
		}

		if stopAfter.IsZero() && len(occurrences) >= limit {
			return nil, fmt.Errorf("%w: more than %d occurrences", domain.ErrSeriesTooLong, limit)
		}

		occurrences = append(occurrences, domain.Occurrence{
			Date:      json_types.Date{Date: date},
			StartTime: base.StartTime,
			EndTime:   base.EndTime,
		})
	}

	return occurrences, nil
}

// newDateIterator возвращает функцию, выдающую даты серии по возрастанию, первой идет сама база
func newDateIterator(start time.Time, pattern domain.RecurrencePattern) func() time.Time {
	switch pattern.Frequency {
	case domain.FrequencyDaily:
		return stepIterator(func(k int) time.Time {
			return start.AddDate(0, 0, k*pattern.Interval)
		})
	case domain.FrequencyMonthly:
		// Всегда считаем от дня базы, иначе после короткого месяца день "съедет"
		day := start.Day()
		return stepIterator(func(k int) time.Time {
			return utils.AddMonthsClamped(start, day, k*pattern.Interval)
		})
	default:
		if len(pattern.DaysOfWeek) == 0 {
			return stepIterator(func(k int) time.Time {
				return start.AddDate(0, 0, 7*k*pattern.Interval)
			})
		}
		return weekdaysIterator(start, pattern.Interval, pattern.DaysOfWeek)
	}
}

func stepIterator(at func(k int) time.Time) func() time.Time {
	k := 0
	return func() time.Time {
		date := at(k)
		k++
		return date
	}
}

// weekdaysIterator: недельное повторение по выбранным дням: внутри каждой недели
// выдаются все подходящие дни по порядку, затем переход на interval недель вперед.
// Неделя начинается с понедельника.
func weekdaysIterator(start time.Time, interval int, days []domain.Weekday) func() time.Time {
	offsets := weekdayOffsets(days)
	weekStart := utils.StartCurrentWeek(start)

	baseEmitted := false
	week := 0
	idx := 0

	return func() time.Time {
		if !baseEmitted {
			baseEmitted = true
			return start
		}

		for {
			if idx >= len(offsets) {
				idx = 0
				week++
			}
			candidate := weekStart.AddDate(0, 0, week*7*interval+offsets[idx])
			idx++
			// База уже выдана, в первой неделе пропускаем дни до нее включительно
			if !candidate.After(start) {
				continue
			}
			return candidate
		}
	}
}

func weekdayOffsets(days []domain.Weekday) []int {
	seen := make(map[int]struct{}, len(days))
	offsets := make([]int, 0, len(days))
	for _, day := range days {
		offset := day.Offset()
		if _, ok := seen[offset]; ok {
			continue
		}
		seen[offset] = struct{}{}
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	return offsets
}

// BlockedTimeExceptions превращает блокировки врача в одобренные исключения на дату.
// Повторяющаяся блокировка разворачивается в серию, каждое повторение длится столько же дней,
// сколько исходная блокировка (от StartDate до EndDate).
func BlockedTimeExceptions(blockedTimes []domain.BlockedTime, date time.Time, limit int) ([]domain.ScheduleException, error) {
	exceptions := make([]domain.ScheduleException, 0, len(blockedTimes))

	for _, blocked := range blockedTimes {
		if blocked.RecurrencePattern == nil {
			exceptions = append(exceptions, blocked.AsException())
			continue
		}

		base := domain.Occurrence{
			Date:      blocked.StartDate,
			StartTime: blocked.StartTime,
			EndTime:   blocked.EndTime,
		}
		// Дата до начала серии не может быть затронута
		if utils.StartCurrentDay(date).Before(utils.StartCurrentDay(blocked.StartDate.Date)) {
			continue
		}

		occurrences, err := expandSeries(base, *blocked.RecurrencePattern, limit, utils.StartCurrentDay(date))
		if err != nil {
			return nil, fmt.Errorf("blocked time %s: %w", blocked.ID, err)
		}

		span := blocked.SpanDays()
		day := utils.StartCurrentDay(date)
		for _, occurrence := range occurrences {
			first := utils.StartCurrentDay(occurrence.Date.Date)
			if !day.Before(first) && !day.After(first.AddDate(0, 0, span)) {
				exceptions = append(exceptions, blocked.ExceptionFrom(first))
				break
			}
		}
	}

	return exceptions, nil
}
