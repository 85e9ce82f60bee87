package domain

import (
	"encoding/json"
	"time"
)

// Шаг сетки слотов в минутах
const SlotGridMinutes = 15

const (
	ReasonTimeOffPrefix       = "Time off: "
	ReasonNotWorkingDay       = "Not a working day"
	ReasonOutsideWorkingHours = "Outside working hours"
	ReasonBreakTime           = "Break time"
	ReasonBookingConflict     = "Conflicts with existing appointment"
	ReasonExtendsPastHours    = "Extends past working hours"
)

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type Slot struct {
	Time      TimeOfDay `json:"time"`
	EndTime   TimeOfDay `json:"endTime"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

// UnmarshalJSON читает конец слота без ограничения 23:59: слот, начатый
// в 23:45, заканчивается уже после полуночи
func (s *Slot) UnmarshalJSON(data []byte) error {
	type slotAlias Slot
	var raw struct {
		slotAlias
		EndTime string `json:"endTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	end, err := ParseEndTime(raw.EndTime)
	if err != nil {
		return err
	}

	*s = Slot(raw.slotAlias)
	s.EndTime = end
	return nil
}

// SlotsQuery: ключ кэша слотов
type SlotsQuery struct {
	ClinicianID     string
	Date            time.Time
	DurationMinutes int
}
