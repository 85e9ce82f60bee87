package rabbitmq

import (
	"errors"
	"fmt"
	"strings"
)

type (
	ResourceType string
	Action       string
)

const (
	ResourceTypeAll               ResourceType = "_all_"
	ResourceTypeAppointment       ResourceType = "appointment"
	ResourceTypeScheduleException ResourceType = "scheduleexception"
	ResourceTypeBlockedTime       ResourceType = "blockedtime"
	ResourceTypeWeeklySchedule    ResourceType = "weeklyschedule"
)

const ActionInvalidate Action = "invalidate"

// Сообщение, которое нельзя обработать ни сейчас, ни при повторе
var errMalformedMessage = errors.New("malformed message")

type MessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType ResourceType
	Action       Action
}

// Пример routingKey:
// ehr.availability-engine.appointment.invalidate
// ehr.availability-engine.weeklyschedule.invalidate
// admin.availability-engine._all_.invalidate
// Действие всегда последний сегмент, между ресурсом и действием могут быть уточнения.
func parseRoutingKey(routingKey string) (MessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")

	if len(parts) < 4 {
		return MessageRoutingKey{}, fmt.Errorf("%w: invalid routing key: %s", errMalformedMessage, routingKey)
	}

	return MessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: ResourceType(parts[2]),
		Action:       Action(parts[len(parts)-1]),
	}, nil
}

func (r ResourceType) perClinician() bool {
	switch r {
	case ResourceTypeAppointment, ResourceTypeScheduleException, ResourceTypeBlockedTime, ResourceTypeWeeklySchedule:
		return true
	}
	return false
}
