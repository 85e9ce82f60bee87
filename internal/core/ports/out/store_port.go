package out

import (
	"context"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

// StorePort: внешнее хранилище расписаний, исключений и записей.
// Ядро только читает, фильтрация по статусам выполняется хранилищем.
type StorePort interface {
	// Все недельные расписания врача, выбор по дате делает сервис
	GetWeeklySchedules(ctx context.Context, clinicianID string) ([]domain.WeeklySchedule, error)

	// Одобренные исключения, пересекающие дату
	GetApprovedExceptions(ctx context.Context, clinicianID string, date time.Time) ([]domain.ScheduleException, error)

	// Блокировки врача, которые могут затронуть дату (включая повторяющиеся)
	GetBlockedTimes(ctx context.Context, clinicianID string, date time.Time) ([]domain.BlockedTime, error)

	// Записи на дату без отмененных и неявок
	GetBookedAppointments(ctx context.Context, clinicianID string, date time.Time) ([]domain.Appointment, error)
}
