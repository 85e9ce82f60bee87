package domain

import (
	"fmt"
	"time"
)

// DebugInfo: замер одного этапа обработки запроса, отдается клиенту при debug=true
type DebugInfo struct {
	Event   string            `json:"event"`
	Timing  int64             `json:"timing"`
	Options map[string]string `json:"options,omitempty"`

	startedAt time.Time
}

// StartDebugInfo открывает замер этапа
func StartDebugInfo(event string) DebugInfo {
	return DebugInfo{
		Event:     event,
		startedAt: time.Now(),
	}
}

// Elapse фиксирует длительность этапа в миллисекундах
func (d *DebugInfo) Elapse() {
	if d.startedAt.IsZero() {
		return
	}
	d.Timing = time.Since(d.startedAt).Milliseconds()
}

func (d *DebugInfo) AddOption(key string, value any) {
	if d.Options == nil {
		d.Options = make(map[string]string)
	}
	d.Options[key] = fmt.Sprint(value)
}
