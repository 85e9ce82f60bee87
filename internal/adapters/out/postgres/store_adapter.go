package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StoreAdapter читает данные расписаний из Postgres.
// Время хранится в колонках TIME и отдается базой в виде HH:MM.
type StoreAdapter struct {
	db     querier
	logger out.LoggerPort
}

var _ out.StorePort = (*StoreAdapter)(nil)

func NewStoreAdapter(db querier, logger out.LoggerPort) *StoreAdapter {
	return &StoreAdapter{
		db:     db,
		logger: logger.WithModule("PostgresStoreAdapter"),
	}
}

func (s *StoreAdapter) GetWeeklySchedules(ctx context.Context, clinicianID string) ([]domain.WeeklySchedule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, clinician_id, effective_from, effective_to, buffer_minutes, days
		FROM weekly_schedules
		WHERE clinician_id = $1
		ORDER BY effective_from`, clinicianID)
	if err != nil {
		return nil, s.fail("postgres.weekly_schedules.fetch_failed", clinicianID, err)
	}
	defer rows.Close()

	schedules := make([]domain.WeeklySchedule, 0)
	for rows.Next() {
		var (
			id            uuid.UUID
			row           domain.WeeklySchedule
			effectiveFrom time.Time
			effectiveTo   *time.Time
			days          []byte
		)
		if err := rows.Scan(&id, &row.ClinicianID, &effectiveFrom, &effectiveTo, &row.BufferMinutes, &days); err != nil {
			return nil, s.fail("postgres.weekly_schedules.scan_failed", clinicianID, err)
		}

		row.ID = id
		row.EffectiveFrom = json_types.Date{Date: effectiveFrom}
		row.EffectiveTo = optionalDate(effectiveTo)
		if row.Days, err = decodeDays(days); err != nil {
			return nil, s.fail("postgres.weekly_schedules.decode_failed", clinicianID, err)
		}

		schedules = append(schedules, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("postgres.weekly_schedules.fetch_failed", clinicianID, err)
	}

	return schedules, nil
}

func (s *StoreAdapter) GetApprovedExceptions(ctx context.Context, clinicianID string, date time.Time) ([]domain.ScheduleException, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, clinician_id, exception_type, start_date, end_date,
			to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			all_day, status, reason
		FROM schedule_exceptions
		WHERE clinician_id = $1 AND status = $2 AND start_date <= $3 AND end_date >= $3`,
		clinicianID, string(domain.ExceptionStatusApproved), date)
	if err != nil {
		return nil, s.fail("postgres.schedule_exceptions.fetch_failed", clinicianID, err)
	}
	defer rows.Close()

	exceptions := make([]domain.ScheduleException, 0)
	for rows.Next() {
		var (
			row                domain.ScheduleException
			exceptionType      string
			status             string
			startDate, endDate time.Time
			startTime, endTime *string
		)
		if err := rows.Scan(&row.ID, &row.ClinicianID, &exceptionType, &startDate, &endDate,
			&startTime, &endTime, &row.AllDay, &status, &row.Reason); err != nil {
			return nil, s.fail("postgres.schedule_exceptions.scan_failed", clinicianID, err)
		}

		row.ExceptionType = domain.ExceptionType(exceptionType)
		row.Status = domain.ExceptionStatus(status)
		row.StartDate = json_types.Date{Date: startDate}
		row.EndDate = json_types.Date{Date: endDate}
		if row.StartTime, row.EndTime, err = optionalTimes(startTime, endTime); err != nil {
			return nil, s.fail("postgres.schedule_exceptions.decode_failed", clinicianID, err)
		}

		exceptions = append(exceptions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("postgres.schedule_exceptions.fetch_failed", clinicianID, err)
	}

	return exceptions, nil
}

func (s *StoreAdapter) GetBlockedTimes(ctx context.Context, clinicianID string, date time.Time) ([]domain.BlockedTime, error) {
	// Повторяющиеся блокировки отдаем все, начавшиеся до даты: серию разворачивает сервис
	rows, err := s.db.Query(ctx, `
		SELECT id, clinician_id, title, block_type, start_date, end_date,
			to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			all_day, recurrence_pattern
		FROM blocked_times
		WHERE clinician_id = $1 AND start_date <= $2
			AND (recurrence_pattern IS NOT NULL OR end_date >= $2)`,
		clinicianID, date)
	if err != nil {
		return nil, s.fail("postgres.blocked_times.fetch_failed", clinicianID, err)
	}
	defer rows.Close()

	blockedTimes := make([]domain.BlockedTime, 0)
	for rows.Next() {
		var (
			row                domain.BlockedTime
			startDate, endDate time.Time
			startTime, endTime *string
			pattern            []byte
		)
		if err := rows.Scan(&row.ID, &row.ClinicianID, &row.Title, &row.BlockType, &startDate, &endDate,
			&startTime, &endTime, &row.AllDay, &pattern); err != nil {
			return nil, s.fail("postgres.blocked_times.scan_failed", clinicianID, err)
		}

		row.StartDate = json_types.Date{Date: startDate}
		row.EndDate = json_types.Date{Date: endDate}
		if row.StartTime, row.EndTime, err = optionalTimes(startTime, endTime); err != nil {
			return nil, s.fail("postgres.blocked_times.decode_failed", clinicianID, err)
		}
		if row.RecurrencePattern, err = decodePattern(pattern); err != nil {
			return nil, s.fail("postgres.blocked_times.decode_failed", clinicianID, err)
		}

		blockedTimes = append(blockedTimes, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("postgres.blocked_times.fetch_failed", clinicianID, err)
	}

	return blockedTimes, nil
}

func (s *StoreAdapter) GetBookedAppointments(ctx context.Context, clinicianID string, date time.Time) ([]domain.Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, clinician_id, appointment_date,
			to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), status
		FROM appointments
		WHERE clinician_id = $1 AND appointment_date = $2 AND status NOT IN ($3, $4)
		ORDER BY start_time`,
		clinicianID, date, string(domain.AppointmentStatusCancelled), string(domain.AppointmentStatusNoShow))
	if err != nil {
		return nil, s.fail("postgres.appointments.fetch_failed", clinicianID, err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var (
			row                domain.Appointment
			appointmentDate    time.Time
			startTime, endTime string
			status             string
		)
		if err := rows.Scan(&row.ID, &row.ClinicianID, &appointmentDate, &startTime, &endTime, &status); err != nil {
			return nil, s.fail("postgres.appointments.scan_failed", clinicianID, err)
		}

		row.AppointmentDate = json_types.Date{Date: appointmentDate}
		row.Status = domain.AppointmentStatus(status)
		if row.StartTime, err = domain.ParseTime(startTime); err != nil {
			return nil, s.fail("postgres.appointments.decode_failed", clinicianID, err)
		}
		if row.EndTime, err = domain.ParseTime(endTime); err != nil {
			return nil, s.fail("postgres.appointments.decode_failed", clinicianID, err)
		}

		appointments = append(appointments, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("postgres.appointments.fetch_failed", clinicianID, err)
	}

	return appointments, nil
}

// SaveWeeklySchedule добавляет новую версию расписания. Старые версии не трогаем:
// новая перекрывает их с даты EffectiveFrom.
func (s *StoreAdapter) SaveWeeklySchedule(ctx context.Context, schedule domain.WeeklySchedule) (uuid.UUID, error) {
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}

	days, err := encodeDays(schedule.Days)
	if err != nil {
		return uuid.Nil, s.fail("postgres.weekly_schedules.encode_failed", schedule.ClinicianID, err)
	}

	var effectiveTo *time.Time
	if !schedule.EffectiveTo.IsZero() {
		effectiveTo = &schedule.EffectiveTo.Date
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO weekly_schedules (id, clinician_id, effective_from, effective_to, buffer_minutes, days)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schedule.ID, schedule.ClinicianID, schedule.EffectiveFrom.Date, effectiveTo, schedule.BufferMinutes, days)
	if err != nil {
		return uuid.Nil, s.fail("postgres.weekly_schedules.insert_failed", schedule.ClinicianID, err)
	}

	return schedule.ID, nil
}

func (s *StoreAdapter) fail(event string, clinicianID string, err error) error {
	s.logger.Error(event, out.LogFields{
		"clinicianId": clinicianID,
		"error":       err.Error(),
	})
	return fmt.Errorf("%s: %w", event, err)
}
