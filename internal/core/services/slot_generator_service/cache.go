package slot_generator_service

import (
	"context"

	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

// Кэширование слотов

func (s *SlotGeneratorService) cacheEnabled() bool {
	return s.cachePort != nil && s.cfg != nil && s.cfg.Cache.Enabled
}

// InvalidateClinicianSlots сбрасывает все закэшированные списки слотов врача
// (все даты и длительности). Вызывается при изменении записей, исключений и расписания.
func (s *SlotGeneratorService) InvalidateClinicianSlots(ctx context.Context, clinicianID string) error {
	if !s.cacheEnabled() {
		return nil
	}
	s.cachePort.InvalidateClinicianSlots(ctx, clinicianID)

	s.logger.Info("slots.cache.invalidated", out.LogFields{
		"clinicianId": clinicianID,
	})

	return nil
}

func (s *SlotGeneratorService) InvalidateAllSlots(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}
	s.cachePort.InvalidateAllSlots(ctx)

	s.logger.Info("slots.cache.invalidated_all", out.LogFields{})

	return nil
}
