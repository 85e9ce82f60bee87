package slot_generator_service

import (
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

// IsAvailable отвечает, доступен ли врач в момент t даты date.
// Порядок проверок фиксирован, побеждает первое совпадение:
//  1. одобренное исключение на дату и время
//  2. выходной день
//  3. вне смен
//  4. перерыв
//
// Исключения только сужают доступность и никогда не добавляют рабочее время.
// Без расписания (врач еще не настроил график) доступно все, кроме исключений.
func IsAvailable(date time.Time, t domain.TimeOfDay, schedule *domain.WeeklySchedule, exceptions []domain.ScheduleException) domain.AvailabilityResult {
	if exception, found := findBlockingException(date, t, exceptions); found {
		return domain.AvailabilityResult{
			Available: false,
			Reason:    domain.ReasonTimeOffPrefix + exception.Reason,
		}
	}

	if schedule == nil {
		return domain.AvailabilityResult{Available: true}
	}

	day := schedule.DayFor(date)
	if !day.IsWorkingDay {
		return domain.AvailabilityResult{Available: false, Reason: domain.ReasonNotWorkingDay}
	}

	if !isInShift(t, day.Shifts) {
		return domain.AvailabilityResult{Available: false, Reason: domain.ReasonOutsideWorkingHours}
	}

	if isInBreak(t, day.BreakTimes) {
		return domain.AvailabilityResult{Available: false, Reason: domain.ReasonBreakTime}
	}

	return domain.AvailabilityResult{Available: true}
}

// Функция для поиска одобренного исключения, перекрывающего дату и время
func findBlockingException(date time.Time, t domain.TimeOfDay, exceptions []domain.ScheduleException) (domain.ScheduleException, bool) {
	for _, exception := range exceptions {
		if !exception.IsApproved() {
			continue
		}
		if exception.CoversDate(date) && exception.CoversTime(t) {
			return exception, true
		}
	}
	return domain.ScheduleException{}, false
}

// Функция для проверки вхождения времени в смену, интервал закрытый
func isInShift(t domain.TimeOfDay, shifts []domain.TimeBlock) bool {
	for _, shift := range shifts {
		if domain.InBlock(t, shift) {
			return true
		}
	}
	return false
}

// Функция для проверки вхождения времени в перерыв, интервал полуоткрытый
func isInBreak(t domain.TimeOfDay, breaks []domain.TimeBlock) bool {
	for _, br := range breaks {
		if domain.InBreak(t, br) {
			return true
		}
	}
	return false
}

// Функция для проверки пересечения слота с занятыми интервалами
func isBooked(candidate domain.TimeBlock, busy []domain.TimeBlock) bool {
	for _, block := range busy {
		if domain.BlocksOverlap(candidate, block) {
			return true
		}
	}
	return false
}
