package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/utils"
)

type ExceptionType string

const (
	ExceptionTypeTimeOff       ExceptionType = "time_off"
	ExceptionTypeHoliday       ExceptionType = "holiday"
	ExceptionTypeModifiedHours ExceptionType = "modified_hours"
	ExceptionTypeBlockedTime   ExceptionType = "blocked_time"
)

func (t ExceptionType) Valid() bool {
	switch t {
	case ExceptionTypeTimeOff, ExceptionTypeHoliday, ExceptionTypeModifiedHours, ExceptionTypeBlockedTime:
		return true
	}
	return false
}

type ExceptionStatus string

const (
	ExceptionStatusRequested ExceptionStatus = "requested"
	ExceptionStatusApproved  ExceptionStatus = "approved"
	ExceptionStatusDenied    ExceptionStatus = "denied"
)

// ScheduleException: отпуск, праздник или измененные часы работы.
// Влияет на доступность только в статусе approved.
type ScheduleException struct {
	ID            uuid.UUID       `json:"id"`
	ClinicianID   string          `json:"clinicianId"`
	ExceptionType ExceptionType   `json:"exceptionType"`
	StartDate     json_types.Date `json:"startDate"`
	EndDate       json_types.Date `json:"endDate"`
	StartTime     *TimeOfDay      `json:"startTime,omitempty"`
	EndTime       *TimeOfDay      `json:"endTime,omitempty"`
	AllDay        bool            `json:"allDay"`
	Status        ExceptionStatus `json:"status"`
	Reason        string          `json:"reason"`
}

func (e ScheduleException) IsApproved() bool {
	return e.Status == ExceptionStatusApproved
}

// CoversDate: дата попадает в [StartDate, EndDate] включительно
func (e ScheduleException) CoversDate(date time.Time) bool {
	return utils.DateInRange(date, e.StartDate.Date, e.EndDate.Date)
}

// CoversTime: исключение на весь день или время внутри [StartTime, EndTime].
// Исключение без времени трактуем как исключение на весь день.
func (e ScheduleException) CoversTime(t TimeOfDay) bool {
	if e.AllDay || e.StartTime == nil || e.EndTime == nil {
		return true
	}
	return t >= *e.StartTime && t <= *e.EndTime
}

func (e ScheduleException) Validate() error {
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidException)
	}
	if e.EndDate.Date.Before(e.StartDate.Date) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidException, e.EndDate, e.StartDate)
	}
	if e.ExceptionType != "" && !e.ExceptionType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidException, e.ExceptionType)
	}
	if e.AllDay {
		return nil
	}
	if e.StartTime == nil || e.EndTime == nil {
		return fmt.Errorf("%w: start and end times are required unless allDay is set", ErrInvalidException)
	}
	if err := (TimeBlock{Start: *e.StartTime, End: *e.EndTime}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidException, err)
	}
	return nil
}

// Approve и Deny: единственные переходы жизненного цикла, только из requested
func (e *ScheduleException) Approve() error {
	return e.transition(ExceptionStatusApproved)
}

func (e *ScheduleException) Deny() error {
	return e.transition(ExceptionStatusDenied)
}

func (e *ScheduleException) transition(to ExceptionStatus) error {
	if e.Status != ExceptionStatusRequested {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, e.Status, to)
	}
	e.Status = to
	return nil
}

// BlockedTime: заблокированное врачом время. Для доступности ведет себя
// как одобренное исключение, но создается самим врачом без согласования.
type BlockedTime struct {
	ID                uuid.UUID          `json:"id"`
	ClinicianID       string             `json:"clinicianId"`
	Title             string             `json:"title"`
	BlockType         string             `json:"blockType"`
	StartDate         json_types.Date    `json:"startDate"`
	EndDate           json_types.Date    `json:"endDate"`
	StartTime         *TimeOfDay         `json:"startTime,omitempty"`
	EndTime           *TimeOfDay         `json:"endTime,omitempty"`
	AllDay            bool               `json:"allDay"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty"`
}

// AsException возвращает одобренное исключение на весь период блокировки
func (b BlockedTime) AsException() ScheduleException {
	return b.exceptionFor(b.StartDate, b.EndDate)
}

// SpanDays: сколько дней после StartDate захватывает одно повторение блокировки
func (b BlockedTime) SpanDays() int {
	return max(0, utils.DaysBetween(b.StartDate.Date, b.EndDate.Date))
}

// ExceptionFrom возвращает одобренное исключение для повторения, начатого в start.
// Длина повторения совпадает с длиной исходной блокировки.
func (b BlockedTime) ExceptionFrom(start time.Time) ScheduleException {
	first := utils.StartCurrentDay(start)
	return b.exceptionFor(
		json_types.Date{Date: first},
		json_types.Date{Date: first.AddDate(0, 0, b.SpanDays())},
	)
}

func (b BlockedTime) exceptionFor(start, end json_types.Date) ScheduleException {
	return ScheduleException{
		ID:            b.ID,
		ClinicianID:   b.ClinicianID,
		ExceptionType: ExceptionTypeBlockedTime,
		StartDate:     start,
		EndDate:       end,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		AllDay:        b.AllDay || b.StartTime == nil || b.EndTime == nil,
		Status:        ExceptionStatusApproved,
		Reason:        b.Title,
	}
}
