package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/in"
)

// Остальные методы сценария слушателю не нужны
type invalidationRecorder struct {
	in.SlotGeneratorUseCase

	clinicians []string
	all        int
	err        error
}

func (r *invalidationRecorder) InvalidateClinicianSlots(ctx context.Context, clinicianID string) error {
	if r.err != nil {
		return r.err
	}
	r.clinicians = append(r.clinicians, clinicianID)
	return nil
}

func (r *invalidationRecorder) InvalidateAllSlots(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	r.all++
	return nil
}

func newTestListener(useCase in.SlotGeneratorUseCase) *InvalidationListener {
	return &InvalidationListener{
		useCase: useCase,
		cfg:     &config.Config{},
		logger:  logger.NewNopLogger(),
	}
}

func TestParseRoutingKey(t *testing.T) {
	key, err := parseRoutingKey("ehr.availability-engine.appointment.updated.invalidate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Source != "ehr" || key.Receiver != "availability-engine" {
		t.Fatalf("unexpected source/receiver: %+v", key)
	}
	if key.ResourceType != ResourceTypeAppointment || key.Action != ActionInvalidate {
		t.Fatalf("unexpected resource/action: %+v", key)
	}

	if _, err := parseRoutingKey("ehr.appointment.invalidate"); !errors.Is(err, errMalformedMessage) {
		t.Fatalf("expected malformed key error, got %v", err)
	}
}

func TestProcessMessagePerClinician(t *testing.T) {
	resources := []ResourceType{
		ResourceTypeAppointment,
		ResourceTypeScheduleException,
		ResourceTypeBlockedTime,
		ResourceTypeWeeklySchedule,
	}

	for _, resource := range resources {
		t.Run(string(resource), func(t *testing.T) {
			recorder := &invalidationRecorder{}
			listener := newTestListener(recorder)

			routingKey := "ehr.availability-engine." + string(resource) + ".invalidate"
			err := listener.processMessage(context.Background(), routingKey, []byte(`{"clinicianId":" clinician-1 "}`))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recorder.clinicians) != 1 || recorder.clinicians[0] != "clinician-1" {
				t.Fatalf("expected clinician-1 invalidated, got %v", recorder.clinicians)
			}
		})
	}
}

func TestProcessMessageAll(t *testing.T) {
	recorder := &invalidationRecorder{}
	listener := newTestListener(recorder)

	// Тело для глобального сброса не читается
	if err := listener.processMessage(context.Background(), "admin.availability-engine._all_.invalidate", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.all != 1 || len(recorder.clinicians) != 0 {
		t.Fatalf("expected a single global invalidation, got all=%d clinicians=%v", recorder.all, recorder.clinicians)
	}
}

func TestProcessMessageMalformed(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		body       string
	}{
		{"short key", "ehr.appointment", `{"clinicianId":"c"}`},
		{"unknown action", "ehr.availability-engine.appointment.delete", `{"clinicianId":"c"}`},
		{"unknown resource", "ehr.availability-engine.patient.invalidate", `{"clinicianId":"c"}`},
		{"broken json", "ehr.availability-engine.appointment.invalidate", `{"clinicianId":`},
		{"missing clinician", "ehr.availability-engine.appointment.invalidate", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &invalidationRecorder{}
			listener := newTestListener(recorder)

			err := listener.processMessage(context.Background(), tt.routingKey, []byte(tt.body))
			if !errors.Is(err, errMalformedMessage) {
				t.Fatalf("expected malformed message error, got %v", err)
			}
			if len(recorder.clinicians) != 0 || recorder.all != 0 {
				t.Fatal("malformed message must not invalidate anything")
			}
		})
	}
}

func TestProcessMessageHandlerError(t *testing.T) {
	failure := errors.New("redis unavailable")
	listener := newTestListener(&invalidationRecorder{err: failure})

	err := listener.processMessage(context.Background(), "ehr.availability-engine.blockedtime.invalidate", []byte(`{"clinicianId":"c"}`))
	if !errors.Is(err, failure) {
		t.Fatalf("expected handler error, got %v", err)
	}
	// Такие сообщения должны вернуться в очередь
	if errors.Is(err, errMalformedMessage) {
		t.Fatal("handler error must not be treated as malformed")
	}
}

func TestStopWithoutConnection(t *testing.T) {
	var listener *InvalidationListener
	if err := listener.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
