package slot_generator_service

import (
	"sync"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

// SlotGeneratorServiceDebug собирает замеры этапов генерации.
// Используется из горутин пакетной генерации, поэтому под мьютексом.
type SlotGeneratorServiceDebug struct {
	mu   sync.Mutex
	data []domain.DebugInfo
}

func (d *SlotGeneratorServiceDebug) AddDebugInfo(info domain.DebugInfo) {
	d.mu.Lock()
	d.data = append(d.data, info)
	d.mu.Unlock()
}

// Snapshot возвращает копию накопленных замеров
func (d *SlotGeneratorServiceDebug) Snapshot() []domain.DebugInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]domain.DebugInfo, len(d.data))
	copy(result, d.data)
	return result
}
