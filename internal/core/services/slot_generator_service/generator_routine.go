package slot_generator_service

import (
	"fmt"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/utils"
)

// GenerateDaySlots строит слоты врача на дату по сетке 15 минут внутри каждой смены.
// Каждый слот помечается доступным или недоступным с первой подходящей причиной:
// исключение/выходной/вне смены, затем перерыв, затем пересечение с записью (с буфером после нее),
// затем выход за конец смены.
// Без расписания работает разрешающий режим: см. generateOpenDaySlots.
func GenerateDaySlots(
	clinicianID string,
	date time.Time,
	durationMinutes int,
	schedule *domain.WeeklySchedule,
	exceptions []domain.ScheduleException,
	bookings []domain.Appointment,
) ([]domain.Slot, error) {
	if err := validateSlotInputs(durationMinutes, schedule, exceptions, bookings); err != nil {
		return nil, err
	}

	if schedule == nil {
		busy := busyBlocks(clinicianID, date, bookings, 0)
		return generateOpenDaySlots(date, durationMinutes, exceptions, busy), nil
	}

	day := schedule.DayFor(date)
	// В выходной смены игнорируются, слотов нет
	if !day.IsWorkingDay {
		return []domain.Slot{}, nil
	}

	busy := busyBlocks(clinicianID, date, bookings, schedule.BufferMinutes)

	slots := make([]domain.Slot, 0)
	for _, shift := range day.Shifts {
		for t := shift.Start; t < shift.End; t = t.Add(domain.SlotGridMinutes) {
			slots = append(slots, evaluateSlot(date, t, durationMinutes, shift, day, schedule, exceptions, busy))
		}
	}

	// Смены могут прийти в любом порядке или пересекаться
	return SlotSlice(slots).quickSort().unique(), nil
}

// EvaluateSlot проверяет один слот с произвольным временем начала, не обязательно по сетке
func EvaluateSlot(
	clinicianID string,
	date time.Time,
	t domain.TimeOfDay,
	durationMinutes int,
	schedule *domain.WeeklySchedule,
	exceptions []domain.ScheduleException,
	bookings []domain.Appointment,
) (domain.Slot, error) {
	if err := validateSlotInputs(durationMinutes, schedule, exceptions, bookings); err != nil {
		return domain.Slot{}, err
	}
	if !t.Valid() {
		return domain.Slot{}, fmt.Errorf("%w: %d minutes", domain.ErrMalformedTime, int(t))
	}

	if schedule == nil {
		busy := busyBlocks(clinicianID, date, bookings, 0)
		return evaluateOpenSlot(date, t, durationMinutes, exceptions, busy), nil
	}

	day := schedule.DayFor(date)
	busy := busyBlocks(clinicianID, date, bookings, schedule.BufferMinutes)

	return evaluateSlot(date, t, durationMinutes, containingShift(t, day.Shifts), day, schedule, exceptions, busy), nil
}

func evaluateSlot(
	date time.Time,
	t domain.TimeOfDay,
	durationMinutes int,
	shift domain.TimeBlock,
	day domain.DaySchedule,
	schedule *domain.WeeklySchedule,
	exceptions []domain.ScheduleException,
	busy []domain.TimeBlock,
) domain.Slot {
	candidate := domain.TimeBlock{Start: t, End: t.Add(durationMinutes)}
	slot := domain.Slot{
		Time:    candidate.Start,
		EndTime: candidate.End,
	}

	if result := IsAvailable(date, t, schedule, exceptions); !result.Available {
		slot.Reason = result.Reason
		return slot
	}

	if isInBreak(t, day.BreakTimes) {
		slot.Reason = domain.ReasonBreakTime
		return slot
	}

	if isBooked(candidate, busy) {
		slot.Reason = domain.ReasonBookingConflict
		return slot
	}

	// Прием не может выходить за конец смены, даже если дальше свободно
	if candidate.End > shift.End {
		slot.Reason = domain.ReasonExtendsPastHours
		return slot
	}

	slot.Available = true
	return slot
}

// containingShift возвращает смену, в которую попадает время; при пересечении смен берется та, что заканчивается позже
func containingShift(t domain.TimeOfDay, shifts []domain.TimeBlock) domain.TimeBlock {
	var found domain.TimeBlock
	for _, shift := range shifts {
		if domain.InBlock(t, shift) && shift.End > found.End {
			found = shift
		}
	}
	return found
}

// busyBlocks: занятые интервалы записей на дату, каждый продлен буфером после окончания.
// Буфер односторонний: время до записи не защищается.
func busyBlocks(clinicianID string, date time.Time, bookings []domain.Appointment, bufferMinutes int) []domain.TimeBlock {
	busy := make([]domain.TimeBlock, 0, len(bookings))
	for _, booking := range bookings {
		if !booking.OccupiesCalendar() {
			continue
		}
		if clinicianID != "" && booking.ClinicianID != "" && booking.ClinicianID != clinicianID {
			continue
		}
		if !booking.AppointmentDate.IsZero() && !utils.SameDay(booking.AppointmentDate.Date, date) {
			continue
		}
		busy = append(busy, booking.BlockWithBuffer(bufferMinutes))
	}
	return busy
}

// Некорректные входные данные сразу дают ошибку, без молчаливых исправлений
func validateSlotInputs(durationMinutes int, schedule *domain.WeeklySchedule, exceptions []domain.ScheduleException, bookings []domain.Appointment) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: %d minutes", domain.ErrInvalidDuration, durationMinutes)
	}

	if schedule != nil {
		if err := schedule.Validate(); err != nil {
			return err
		}
	}

	for _, exception := range exceptions {
		if !exception.IsApproved() {
			continue
		}
		if err := exception.Validate(); err != nil {
			return err
		}
	}

	for _, booking := range bookings {
		if !booking.OccupiesCalendar() {
			continue
		}
		block := domain.TimeBlock{Start: booking.StartTime, End: booking.EndTime}
		if err := block.Validate(); err != nil {
			return fmt.Errorf("appointment %s: %w", booking.ID, err)
		}
	}

	return nil
}
