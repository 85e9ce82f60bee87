package cache

import (
	"fmt"
	"strings"

	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

const slotsKeyPrefix = "slots"

// slotsKey: ключ списка слотов: врач, дата и длительность приема
type slotsKey struct {
	clinicianID     string
	date            string
	durationMinutes int
}

func newSlotsKey(query domain.SlotsQuery) slotsKey {
	return slotsKey{
		clinicianID:     query.ClinicianID,
		date:            query.Date.Format(json_types.DateLayout),
		durationMinutes: query.DurationMinutes,
	}
}

// String: ключ в Redis: slots:<clinicianId>:<date>:<duration>
func (k slotsKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", slotsKeyPrefix, escapeKeyPart(k.clinicianID), k.date, k.durationMinutes)
}

// clinicianSlotsPattern: шаблон SCAN для всех слотов врача.
// Спецсимволы glob в идентификаторе экранируются.
func clinicianSlotsPattern(clinicianID string) string {
	return fmt.Sprintf("%s:%s:*", slotsKeyPrefix, escapeGlob(escapeKeyPart(clinicianID)))
}

var keyPartReplacer = strings.NewReplacer("%", "%25", ":", "%3A")

// escapeKeyPart убирает разделитель ":" из идентификатора, иначе шаблон
// slots:<id>:* захватит ключи врача с идентификатором "<id>:..."
func escapeKeyPart(s string) string {
	return keyPartReplacer.Replace(s)
}

func allSlotsPattern() string {
	return slotsKeyPrefix + ":*"
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
