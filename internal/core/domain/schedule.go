package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/utils"
)

type DaySchedule struct {
	IsWorkingDay bool        `json:"isWorkingDay"`
	Shifts       []TimeBlock `json:"shifts"`
	BreakTimes   []TimeBlock `json:"breakTimes"`
}

// WeeklySchedule: недельное расписание врача с периодом действия.
// Новое расписание не удаляет старое, а перекрывает его с даты EffectiveFrom.
type WeeklySchedule struct {
	ID            uuid.UUID               `json:"id"`
	ClinicianID   string                  `json:"clinicianId"`
	EffectiveFrom json_types.Date         `json:"effectiveFrom"`
	EffectiveTo   json_types.DateOrEmpty  `json:"effectiveTo"`
	BufferMinutes int                     `json:"bufferMinutes"`
	Days          map[Weekday]DaySchedule `json:"days"`
}

// DefaultSchedule: начальное расписание нового врача:
// пн-пт 09:00-17:00 с перерывом 12:00-13:00, сб и вс выходные
func DefaultSchedule() WeeklySchedule {
	days := make(map[Weekday]DaySchedule, len(Weekdays))
	for _, day := range Weekdays {
		if day == WeekdaySaturday || day == WeekdaySunday {
			days[day] = DaySchedule{IsWorkingDay: false}
			continue
		}
		days[day] = DaySchedule{
			IsWorkingDay: true,
			Shifts:       []TimeBlock{MustTimeBlock("09:00", "17:00")},
			BreakTimes:   []TimeBlock{MustTimeBlock("12:00", "13:00")},
		}
	}

	return WeeklySchedule{Days: days}
}

// Day возвращает расписание дня недели; отсутствующий день считается выходным
func (s WeeklySchedule) Day(weekday Weekday) DaySchedule {
	day, ok := s.Days[weekday]
	if !ok {
		return DaySchedule{IsWorkingDay: false}
	}
	return day
}

func (s WeeklySchedule) DayFor(date time.Time) DaySchedule {
	return s.Day(WeekdayOf(date))
}

// Covers проверяет, действует ли расписание на указанную дату
func (s WeeklySchedule) Covers(date time.Time) bool {
	day := utils.StartCurrentDay(date)
	if !s.EffectiveFrom.IsZero() && day.Before(utils.StartCurrentDay(s.EffectiveFrom.Date)) {
		return false
	}
	if !s.EffectiveTo.IsZero() && day.After(utils.StartCurrentDay(s.EffectiveTo.Date)) {
		return false
	}
	return true
}

// SelectSchedule выбирает расписание, действующее на дату.
// Если подходят несколько, побеждает самое позднее по EffectiveFrom.
func SelectSchedule(schedules []WeeklySchedule, date time.Time) *WeeklySchedule {
	var selected *WeeklySchedule
	for i := range schedules {
		if !schedules[i].Covers(date) {
			continue
		}
		if selected == nil || schedules[i].EffectiveFrom.Date.After(selected.EffectiveFrom.Date) {
			selected = &schedules[i]
		}
	}
	return selected
}

// Validate: строгая проверка перед расчетом слотов: некорректные блоки это ошибка
func (s WeeklySchedule) Validate() error {
	if s.BufferMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBuffer, s.BufferMinutes)
	}
	for weekday, day := range s.Days {
		if !weekday.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidWeekday, weekday)
		}
		for _, shift := range day.Shifts {
			if err := shift.Validate(); err != nil {
				return fmt.Errorf("%s shift: %w", weekday, err)
			}
		}
		for _, br := range day.BreakTimes {
			if err := br.Validate(); err != nil {
				return fmt.Errorf("%s break: %w", weekday, err)
			}
		}
	}
	return nil
}

// TotalAvailableMinutes суммирует длительность смен рабочих дней за вычетом перерывов.
// Пересекающиеся смены и перерывы сначала склеиваются, чтобы минуты не считались дважды.
func TotalAvailableMinutes(schedule WeeklySchedule) int {
	total := 0
	for _, weekday := range Weekdays {
		day := schedule.Day(weekday)
		if !day.IsWorkingDay {
			continue
		}

		breaks := mergeBlocks(day.BreakTimes)
		for _, shift := range mergeBlocks(day.Shifts) {
			total += shift.Minutes()
			for _, br := range breaks {
				total -= shift.OverlapMinutes(br)
			}
		}
	}
	return total
}

// mergeBlocks склеивает пересекающиеся и соприкасающиеся интервалы, пустые и перевернутые отбрасывает
func mergeBlocks(blocks []TimeBlock) []TimeBlock {
	sorted := make([]TimeBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.End > block.Start {
			sorted = append(sorted, block)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]TimeBlock, 0, len(sorted))
	for _, block := range sorted {
		last := len(merged) - 1
		if last >= 0 && block.Start <= merged[last].End {
			if block.End > merged[last].End {
				merged[last].End = block.End
			}
			continue
		}
		merged = append(merged, block)
	}
	return merged
}

// ValidateDaySchedule возвращает список предупреждений для отображения пользователю.
// Ничего не бросает: решение о блокировке сохранения принимает вызывающая сторона.
func ValidateDaySchedule(day DaySchedule) []string {
	errs := make([]string, 0)
	if !day.IsWorkingDay {
		return errs
	}

	if len(day.Shifts) == 0 {
		errs = append(errs, "Working day must have at least one shift")
	}

	for i, shift := range day.Shifts {
		if shift.End <= shift.Start {
			errs = append(errs, fmt.Sprintf("Shift %d: end time must be after start time", i+1))
		}
	}

	for i, br := range day.BreakTimes {
		if br.End <= br.Start {
			errs = append(errs, fmt.Sprintf("Break %d: end time must be after start time", i+1))
			continue
		}
		if !breakWithinShifts(br, day.Shifts) {
			errs = append(errs, fmt.Sprintf("Break %d is outside working shifts", i+1))
		}
	}

	// Смен в дне немного, попарное сравнение допустимо
	for i := 0; i < len(day.Shifts); i++ {
		for j := i + 1; j < len(day.Shifts); j++ {
			if BlocksOverlap(day.Shifts[i], day.Shifts[j]) {
				errs = append(errs, fmt.Sprintf("Shift %d overlaps with shift %d", i+1, j+1))
			}
		}
	}

	for i := 0; i < len(day.BreakTimes); i++ {
		for j := i + 1; j < len(day.BreakTimes); j++ {
			a, b := day.BreakTimes[i], day.BreakTimes[j]
			if a.End <= a.Start || b.End <= b.Start {
				continue
			}
			if BlocksOverlap(a, b) {
				errs = append(errs, fmt.Sprintf("Break %d overlaps with break %d", i+1, j+1))
			}
		}
	}

	return errs
}

// ValidateWeeklySchedule собирает предупреждения по всем дням недели
func ValidateWeeklySchedule(schedule WeeklySchedule) map[Weekday][]string {
	result := make(map[Weekday][]string)
	for weekday, day := range schedule.Days {
		if !weekday.Valid() {
			result[weekday] = []string{fmt.Sprintf("Unknown weekday %q", weekday)}
			continue
		}
		if errs := ValidateDaySchedule(day); len(errs) > 0 {
			result[weekday] = errs
		}
	}
	return result
}

func breakWithinShifts(br TimeBlock, shifts []TimeBlock) bool {
	for _, shift := range shifts {
		if br.Start >= shift.Start && br.End <= shift.End {
			return true
		}
	}
	return false
}
