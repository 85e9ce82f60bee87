package slot_generator_service

import (
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

// generateOpenDaySlots строит слоты для врача без настроенного расписания:
// каждые 15 минут каждого часа суток. Одобренные исключения и записи при этом учитываются,
// смены, перерывы и буфер не применяются.
func generateOpenDaySlots(date time.Time, durationMinutes int, exceptions []domain.ScheduleException, busy []domain.TimeBlock) []domain.Slot {
	slots := make([]domain.Slot, 0, domain.MinutesPerDay/domain.SlotGridMinutes)

	for t := domain.TimeOfDay(0); t < domain.MinutesPerDay; t = t.Add(domain.SlotGridMinutes) {
		slots = append(slots, evaluateOpenSlot(date, t, durationMinutes, exceptions, busy))
	}

	return slots
}

func evaluateOpenSlot(date time.Time, t domain.TimeOfDay, durationMinutes int, exceptions []domain.ScheduleException, busy []domain.TimeBlock) domain.Slot {
	candidate := domain.TimeBlock{Start: t, End: t.Add(durationMinutes)}
	slot := domain.Slot{
		Time:    candidate.Start,
		EndTime: candidate.End,
	}

	if result := IsAvailable(date, t, nil, exceptions); !result.Available {
		slot.Reason = result.Reason
		return slot
	}

	if isBooked(candidate, busy) {
		slot.Reason = domain.ReasonBookingConflict
		return slot
	}

	slot.Available = true
	return slot
}
