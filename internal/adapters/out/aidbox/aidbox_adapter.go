package aidbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

// Размер страницы поиска: у врача не бывает сотен записей на одну дату
const searchCount = "1000"

// AidboxAdapter читает расписания, исключения, блокировки и записи
// из кастомных ресурсов Aidbox через REST поиск
type AidboxAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	logger   out.LoggerPort
}

var _ out.StorePort = (*AidboxAdapter)(nil)

func NewAidboxAdapter(cfg *config.Config, logger out.LoggerPort) *AidboxAdapter {
	timeout := cfg.Aidbox.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &AidboxAdapter{
		client:   &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(cfg.Aidbox.URL, "/"),
		username: cfg.Aidbox.Username,
		password: cfg.Aidbox.Password,
		logger:   logger.WithModule("AidboxAdapter"),
	}
}

func (a *AidboxAdapter) GetWeeklySchedules(ctx context.Context, clinicianID string) ([]domain.WeeklySchedule, error) {
	query := nurl.Values{}
	query.Add("clinician", clinicianID)

	entries, err := a.search(ctx, "aidbox.weekly_schedules", "WeeklySchedule", query)
	if err != nil {
		return nil, err
	}

	schedules, err := decodeEntries[domain.WeeklySchedule](entries)
	if err != nil {
		a.logger.Error("aidbox.weekly_schedules.decode_resource_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("aidbox.weekly_schedules.decode_resource_failed: %w", err)
	}

	return schedules, nil
}

func (a *AidboxAdapter) GetApprovedExceptions(ctx context.Context, clinicianID string, date time.Time) ([]domain.ScheduleException, error) {
	day := date.Format(json_types.DateLayout)

	query := nurl.Values{}
	query.Add("clinician", clinicianID)
	query.Add("status", string(domain.ExceptionStatusApproved))
	query.Add("start-date", "le"+day)
	query.Add("end-date", "ge"+day)

	entries, err := a.search(ctx, "aidbox.schedule_exceptions", "ScheduleException", query)
	if err != nil {
		return nil, err
	}

	exceptions, err := decodeEntries[domain.ScheduleException](entries)
	if err != nil {
		a.logger.Error("aidbox.schedule_exceptions.decode_resource_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("aidbox.schedule_exceptions.decode_resource_failed: %w", err)
	}

	// Поисковые параметры могут быть не настроены, фильтруем сами
	result := make([]domain.ScheduleException, 0, len(exceptions))
	for _, exception := range exceptions {
		if exception.IsApproved() && exception.CoversDate(date) {
			result = append(result, exception)
		}
	}

	return result, nil
}

func (a *AidboxAdapter) GetBlockedTimes(ctx context.Context, clinicianID string, date time.Time) ([]domain.BlockedTime, error) {
	query := nurl.Values{}
	query.Add("clinician", clinicianID)
	// Повторяющаяся блокировка может начаться задолго до даты, поэтому только верхняя граница
	query.Add("start-date", "le"+date.Format(json_types.DateLayout))

	entries, err := a.search(ctx, "aidbox.blocked_times", "BlockedTime", query)
	if err != nil {
		return nil, err
	}

	blockedTimes, err := decodeEntries[domain.BlockedTime](entries)
	if err != nil {
		a.logger.Error("aidbox.blocked_times.decode_resource_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("aidbox.blocked_times.decode_resource_failed: %w", err)
	}

	return blockedTimes, nil
}

func (a *AidboxAdapter) GetBookedAppointments(ctx context.Context, clinicianID string, date time.Time) ([]domain.Appointment, error) {
	query := nurl.Values{}
	query.Add("clinician", clinicianID)
	query.Add("date", date.Format(json_types.DateLayout))
	query.Add("status:not", string(domain.AppointmentStatusCancelled))
	query.Add("status:not", string(domain.AppointmentStatusNoShow))

	entries, err := a.search(ctx, "aidbox.appointments", "Appointment", query)
	if err != nil {
		return nil, err
	}

	appointments, err := decodeEntries[domain.Appointment](entries)
	if err != nil {
		a.logger.Error("aidbox.appointments.decode_resource_failed", out.LogFields{
			"clinicianId": clinicianID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("aidbox.appointments.decode_resource_failed: %w", err)
	}

	result := make([]domain.Appointment, 0, len(appointments))
	for _, appointment := range appointments {
		if appointment.OccupiesCalendar() {
			result = append(result, appointment)
		}
	}

	a.logger.Debug("aidbox.appointments.fetch_success", out.LogFields{
		"clinicianId": clinicianID,
		"count":       len(result),
	})

	return result, nil
}

// search выполняет поиск ресурсов и возвращает сырые entry бандла
func (a *AidboxAdapter) search(ctx context.Context, event string, resourceType string, query nurl.Values) ([]bundleEntry, error) {
	a.logger.Debug(event+".fetch", out.LogFields{
		"query": query.Encode(),
	})

	url := fmt.Sprintf("%s/%s", a.baseURL, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.logger.Error(event+".fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%s.fetch_failed: %w", event, err)
	}

	query.Set("_count", searchCount)
	req.URL.RawQuery = query.Encode()
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error(event+".fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%s.fetch_failed: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error(event+".fetch_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%s.fetch_failed: unexpected status code: %d", event, resp.StatusCode)
	}

	var bundle bundleResponse
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		a.logger.Error(event+".decode_response_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%s.decode_response_failed: %w", event, err)
	}

	return bundle.Entry, nil
}
