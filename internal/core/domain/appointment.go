package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn AppointmentStatus = "checked_in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Appointment: уже записанный прием, для ядра это просто занятый интервал
type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	ClinicianID     string            `json:"clinicianId"`
	AppointmentDate json_types.Date   `json:"appointmentDate"`
	StartTime       TimeOfDay         `json:"startTime"`
	EndTime         TimeOfDay         `json:"endTime"`
	Status          AppointmentStatus `json:"status"`
}

// OccupiesCalendar: отмененные и неявки время не занимают
func (a Appointment) OccupiesCalendar() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusNoShow
}

// BlockWithBuffer: интервал приема, продленный буфером только после окончания
func (a Appointment) BlockWithBuffer(bufferMinutes int) TimeBlock {
	return TimeBlock{Start: a.StartTime, End: a.EndTime.Add(bufferMinutes)}
}
