package slot_generator_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/in"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
	"github.com/suchimauz/clinic-availability-engine/internal/utils"
)

type SlotGeneratorService struct {
	storePort out.StorePort
	cachePort out.CachePort
	logger    out.LoggerPort
	cfg       *config.Config
}

var _ in.SlotGeneratorUseCase = (*SlotGeneratorService)(nil)

func NewSlotGeneratorService(
	storePort out.StorePort,
	cachePort out.CachePort,
	cfg *config.Config,
	logger out.LoggerPort,
) *SlotGeneratorService {
	return &SlotGeneratorService{
		storePort: storePort,
		cachePort: cachePort,
		cfg:       cfg,
		logger:    logger.WithModule("SlotGeneratorService"),
	}
}

// Входные данные генерации на одну дату одного врача
type dayInputs struct {
	schedule   *domain.WeeklySchedule
	exceptions []domain.ScheduleException
	bookings   []domain.Appointment
}

func (s *SlotGeneratorService) GenerateSlots(ctx context.Context, clinicianID string, date time.Time, durationMinutes int) ([]domain.Slot, []domain.DebugInfo, error) {
	debugInfo := SlotGeneratorServiceDebug{
		data: make([]domain.DebugInfo, 0),
	}
	date = utils.StartCurrentDay(date)

	s.logger.Info("slots.generate.started", out.LogFields{
		"clinicianId": clinicianID,
		"date":        date.Format(json_types.DateLayout),
		"duration":    durationMinutes,
	})

	if durationMinutes <= 0 {
		return nil, nil, fmt.Errorf("%w: %d minutes", domain.ErrInvalidDuration, durationMinutes)
	}

	query := domain.SlotsQuery{
		ClinicianID:     clinicianID,
		Date:            date,
		DurationMinutes: durationMinutes,
	}

	// Проверяем кэш только если он включен
	if s.cacheEnabled() {
		if slots, exists := s.cachePort.GetSlots(ctx, query); exists {
			s.logger.Debug("slots.generate.cache.hit", out.LogFields{
				"clinicianId": clinicianID,
				"slotsCount":  len(slots),
			})
			return slots, debugInfo.Snapshot(), nil
		}
		s.logger.Debug("slots.generate.cache.miss", out.LogFields{
			"clinicianId": clinicianID,
		})
	}

	inputs, err := s.loadDayInputs(ctx, &debugInfo, clinicianID, date)
	if err != nil {
		return nil, nil, err
	}

	generate_slots_debug := domain.StartDebugInfo("slots.generate.slots.generate")

	slots, err := GenerateDaySlots(clinicianID, date, durationMinutes, inputs.schedule, inputs.exceptions, inputs.bookings)
	if err != nil {
		s.logger.Error("slots.generate.failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		// Длительность уже проверена, значит не прошли проверку расписание или записи из хранилища
		return nil, nil, fmt.Errorf("slots.generate.failed: %w", domain.StoredDataError(err))
	}

	generate_slots_debug.Elapse()
	generate_slots_debug.AddOption("slots", len(slots))
	if inputs.schedule == nil {
		generate_slots_debug.AddOption("mode", "open")
	}
	debugInfo.AddDebugInfo(generate_slots_debug)

	// Сохраняем в кэш только если он включен
	if s.cacheEnabled() {
		s.cachePort.StoreSlots(ctx, query, slots)
	}

	s.logger.Info("slots.generate.completed", out.LogFields{
		"clinicianId": clinicianID,
		"slotsCount":  len(slots),
	})

	return slots, debugInfo.Snapshot(), nil
}

func (s *SlotGeneratorService) GenerateBatchSlots(ctx context.Context, clinicianIDs []string, date time.Time, durationMinutes int) (map[string][]domain.Slot, error) {
	result := make(map[string][]domain.Slot, len(clinicianIDs))

	// Используем мьютекс для безопасного доступа к map результата
	// И группу ожидания для ожидания завершения всех горутин
	var mu sync.Mutex
	var wg sync.WaitGroup
	errCh := make(chan error, len(clinicianIDs))

	for _, clinicianID := range clinicianIDs {
		// Дубли в запросе считаем один раз
		mu.Lock()
		if _, exists := result[clinicianID]; exists {
			mu.Unlock()
			continue
		}
		result[clinicianID] = nil
		mu.Unlock()

		wg.Add(1)
		go func(clinicianID string) {
			defer wg.Done()

			slots, _, err := s.GenerateSlots(ctx, clinicianID, date, durationMinutes)
			if err != nil {
				errCh <- fmt.Errorf("clinician %s: %w", clinicianID, err)
				return
			}

			mu.Lock()
			result[clinicianID] = slots
			mu.Unlock()
		}(clinicianID)
	}

	wg.Wait()
	close(errCh)

	// Возвращаем первую ошибку, если была
	if err, ok := <-errCh; ok {
		s.logger.Error("slots.generate_batch.failed", out.LogFields{
			"clinicians": len(clinicianIDs),
			"error":      err.Error(),
		})
		return nil, err
	}

	return result, nil
}

func (s *SlotGeneratorService) CheckAvailability(ctx context.Context, clinicianID string, date time.Time, t domain.TimeOfDay) (domain.AvailabilityResult, error) {
	if !t.Valid() {
		return domain.AvailabilityResult{}, fmt.Errorf("%w: %d minutes", domain.ErrMalformedTime, int(t))
	}

	date = utils.StartCurrentDay(date)
	debugInfo := SlotGeneratorServiceDebug{}

	inputs, err := s.loadDayInputs(ctx, &debugInfo, clinicianID, date)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}

	result := IsAvailable(date, t, inputs.schedule, inputs.exceptions)

	s.logger.Debug("availability.check.completed", out.LogFields{
		"clinicianId": clinicianID,
		"date":        date.Format(json_types.DateLayout),
		"time":        t.String(),
		"available":   result.Available,
		"reason":      result.Reason,
	})

	return result, nil
}

func (s *SlotGeneratorService) ExpandSeries(ctx context.Context, base domain.Occurrence, pattern domain.RecurrencePattern) (*domain.Series, error) {
	occurrences, err := GenerateSeriesLimited(base, pattern, s.maxOccurrences())
	if err != nil {
		s.logger.Warn("series.expand.failed", out.LogFields{
			"frequency": pattern.Frequency,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("series.expand.failed: %w", err)
	}

	series := &domain.Series{
		ID:          uuid.New(),
		Pattern:     pattern,
		Occurrences: occurrences,
	}

	s.logger.Info("series.expand.completed", out.LogFields{
		"seriesId":    series.ID,
		"frequency":   pattern.Frequency,
		"occurrences": len(occurrences),
	})

	return series, nil
}

func (s *SlotGeneratorService) ValidateSchedule(ctx context.Context, schedule domain.WeeklySchedule) in.ScheduleValidation {
	errs := domain.ValidateWeeklySchedule(schedule)

	return in.ScheduleValidation{
		Valid:                 len(errs) == 0,
		Errors:                errs,
		TotalAvailableMinutes: domain.TotalAvailableMinutes(schedule),
	}
}

// loadDayInputs забирает из хранилища все, что влияет на доступность врача в дату.
// Блокировки превращаются в одобренные исключения.
func (s *SlotGeneratorService) loadDayInputs(ctx context.Context, debugInfo *SlotGeneratorServiceDebug, clinicianID string, date time.Time) (*dayInputs, error) {
	inputs := &dayInputs{}

	get_schedules_debug := domain.StartDebugInfo("slots.generate.schedule.fetch")

	schedules, err := s.storePort.GetWeeklySchedules(ctx, clinicianID)
	if err != nil {
		s.logger.Error("slots.generate.schedule.fetch_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.schedule.fetch_failed: %w", domain.StoredDataError(err))
	}
	inputs.schedule = domain.SelectSchedule(schedules, date)

	get_schedules_debug.Elapse()
	debugInfo.AddDebugInfo(get_schedules_debug)

	if inputs.schedule == nil {
		s.logger.Debug("slots.generate.schedule.not_configured", out.LogFields{
			"clinicianId": clinicianID,
			"schedules":   len(schedules),
		})
	}

	get_exceptions_debug := domain.StartDebugInfo("slots.generate.exceptions.fetch")

	exceptions, err := s.storePort.GetApprovedExceptions(ctx, clinicianID, date)
	if err != nil {
		s.logger.Error("slots.generate.exceptions.fetch_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.exceptions.fetch_failed: %w", domain.StoredDataError(err))
	}

	blockedTimes, err := s.storePort.GetBlockedTimes(ctx, clinicianID, date)
	if err != nil {
		s.logger.Error("slots.generate.blocked_times.fetch_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.blocked_times.fetch_failed: %w", domain.StoredDataError(err))
	}

	blockedExceptions, err := BlockedTimeExceptions(blockedTimes, date, s.maxOccurrences())
	if err != nil {
		s.logger.Error("slots.generate.blocked_times.expand_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.blocked_times.expand_failed: %w", domain.StoredDataError(err))
	}
	inputs.exceptions = append(exceptions, blockedExceptions...)

	get_exceptions_debug.Elapse()
	get_exceptions_debug.AddOption("exceptions", len(exceptions))
	get_exceptions_debug.AddOption("blockedTimes", len(blockedExceptions))
	debugInfo.AddDebugInfo(get_exceptions_debug)

	get_appointments_debug := domain.StartDebugInfo("slots.generate.appointments.fetch")

	bookings, err := s.storePort.GetBookedAppointments(ctx, clinicianID, date)
	if err != nil {
		s.logger.Error("slots.generate.appointments.fetch_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.appointments.fetch_failed: %w", domain.StoredDataError(err))
	}
	inputs.bookings = bookings

	get_appointments_debug.Elapse()
	debugInfo.AddDebugInfo(get_appointments_debug)

	return inputs, nil
}

func (s *SlotGeneratorService) maxOccurrences() int {
	if s.cfg == nil || s.cfg.Series.MaxOccurrences <= 0 {
		return DefaultMaxSeriesOccurrences
	}
	return s.cfg.Series.MaxOccurrences
}
