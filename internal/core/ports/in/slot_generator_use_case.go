package in

import (
	"context"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

type SlotGeneratorUseCase interface {
	// Генерация слотов врача на дату
	GenerateSlots(ctx context.Context, clinicianID string, date time.Time, durationMinutes int) ([]domain.Slot, []domain.DebugInfo, error)

	// Генерация слотов для нескольких врачей
	GenerateBatchSlots(ctx context.Context, clinicianIDs []string, date time.Time, durationMinutes int) (map[string][]domain.Slot, error)

	// Проверка доступности врача в конкретное время
	CheckAvailability(ctx context.Context, clinicianID string, date time.Time, t domain.TimeOfDay) (domain.AvailabilityResult, error)

	// Развертывание серии повторяющихся приемов или блокировок
	ExpandSeries(ctx context.Context, base domain.Occurrence, pattern domain.RecurrencePattern) (*domain.Series, error)

	// Проверка недельного расписания перед сохранением
	ValidateSchedule(ctx context.Context, schedule domain.WeeklySchedule) ScheduleValidation

	// Сброс кэша слотов
	InvalidateClinicianSlots(ctx context.Context, clinicianID string) error
	InvalidateAllSlots(ctx context.Context) error
}

// ScheduleValidation: предупреждения по дням недели и итоговая нагрузка
type ScheduleValidation struct {
	Valid                 bool                        `json:"valid"`
	Errors                map[domain.Weekday][]string `json:"errors"`
	TotalAvailableMinutes int                         `json:"totalAvailableMinutes"`
}
