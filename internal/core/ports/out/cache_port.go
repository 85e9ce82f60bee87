package out

import (
	"context"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

// CachePort: кэш готовых слотов по ключу (врач, дата, длительность).
// Время жизни записи задается адаптеру при создании.
type CachePort interface {
	GetSlots(ctx context.Context, query domain.SlotsQuery) ([]domain.Slot, bool)
	StoreSlots(ctx context.Context, query domain.SlotsQuery, slots []domain.Slot)
	InvalidateClinicianSlots(ctx context.Context, clinicianID string)
	InvalidateAllSlots(ctx context.Context)
}
