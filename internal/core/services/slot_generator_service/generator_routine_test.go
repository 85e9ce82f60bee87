package slot_generator_service

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
)

var (
	monday  = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	sunday  = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
)

func testSchedule(buffer int) *domain.WeeklySchedule {
	schedule := domain.DefaultSchedule()
	schedule.ClinicianID = "clinician-1"
	schedule.BufferMinutes = buffer
	return &schedule
}

func booking(date time.Time, start, end string, status domain.AppointmentStatus) domain.Appointment {
	return domain.Appointment{
		ID:              uuid.New(),
		ClinicianID:     "clinician-1",
		AppointmentDate: json_types.Date{Date: date},
		StartTime:       domain.MustParseTime(start),
		EndTime:         domain.MustParseTime(end),
		Status:          status,
	}
}

func slotAt(t *testing.T, slots []domain.Slot, at string) domain.Slot {
	t.Helper()
	want := domain.MustParseTime(at)
	for _, slot := range slots {
		if slot.Time == want {
			return slot
		}
	}
	t.Fatalf("slot %s not found", at)
	return domain.Slot{}
}

func TestGenerateDaySlotsBreakAndShiftEnd(t *testing.T) {
	slots, err := GenerateDaySlots("clinician-1", monday, 50, testSchedule(10), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00-17:00 с шагом 15 минут
	if len(slots) != 32 {
		t.Fatalf("expected 32 slots, got %d", len(slots))
	}

	tests := []struct {
		at        string
		available bool
		reason    string
	}{
		{"09:00", true, ""},
		{"11:15", true, ""},
		{"12:00", false, domain.ReasonBreakTime},
		{"12:45", false, domain.ReasonBreakTime},
		{"13:00", true, ""},
		{"16:00", true, ""},
		{"16:15", false, domain.ReasonExtendsPastHours},
		{"16:30", false, domain.ReasonExtendsPastHours},
	}

	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			slot := slotAt(t, slots, tt.at)
			if slot.Available != tt.available || slot.Reason != tt.reason {
				t.Fatalf("slot %s: got available=%v reason=%q, want available=%v reason=%q",
					tt.at, slot.Available, slot.Reason, tt.available, tt.reason)
			}
		})
	}
}

func TestGenerateDaySlotsBookingWithBuffer(t *testing.T) {
	bookings := []domain.Appointment{booking(monday, "13:00", "13:50", domain.AppointmentStatusScheduled)}

	slots, err := GenerateDaySlots("clinician-1", monday, 50, testSchedule(10), nil, bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slot := slotAt(t, slots, "13:45"); slot.Available || slot.Reason != domain.ReasonBookingConflict {
		t.Fatalf("13:45 must conflict with booking, got %+v", slot)
	}
	if slot := slotAt(t, slots, "14:00"); !slot.Available {
		t.Fatalf("14:00 must be available after buffer, got %+v", slot)
	}
	// Буфер только после записи: 11:15-12:05 упирается в перерыв, но не в запись
	if slot := slotAt(t, slots, "11:15"); !slot.Available {
		t.Fatalf("11:15 must be available, got %+v", slot)
	}

	offGrid, err := EvaluateSlot("clinician-1", monday, domain.MustParseTime("13:50"), 50, testSchedule(10), nil, bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offGrid.Available || offGrid.Reason != domain.ReasonBookingConflict {
		t.Fatalf("13:50 is inside the buffer, got %+v", offGrid)
	}
}

func TestGenerateDaySlotsNeverOverlapsBookings(t *testing.T) {
	buffer := 15
	bookings := []domain.Appointment{
		booking(monday, "09:30", "10:00", domain.AppointmentStatusConfirmed),
		booking(monday, "14:10", "14:40", domain.AppointmentStatusCheckedIn),
		booking(monday, "15:00", "16:00", domain.AppointmentStatusCancelled),
		booking(monday, "15:30", "16:00", domain.AppointmentStatusNoShow),
	}

	for _, duration := range []int{15, 20, 30, 45, 60} {
		slots, err := GenerateDaySlots("clinician-1", monday, duration, testSchedule(buffer), nil, bookings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, slot := range slots {
			if !slot.Available {
				continue
			}
			candidate := domain.TimeBlock{Start: slot.Time, End: slot.Time.Add(duration)}
			for _, b := range bookings {
				if !b.OccupiesCalendar() {
					continue
				}
				if domain.BlocksOverlap(candidate, b.BlockWithBuffer(buffer)) {
					t.Fatalf("duration %d: slot %s overlaps booking %s-%s", duration, slot.Time, b.StartTime, b.EndTime)
				}
			}
		}
	}

	// Отмененные записи время не занимают
	slots, _ := GenerateDaySlots("clinician-1", monday, 30, testSchedule(buffer), nil, bookings)
	if slot := slotAt(t, slots, "15:00"); !slot.Available {
		t.Fatalf("cancelled booking must not block 15:00, got %+v", slot)
	}
}

func TestGenerateDaySlotsAllDayException(t *testing.T) {
	exceptions := []domain.ScheduleException{{
		StartDate: json_types.Date{Date: tuesday},
		EndDate:   json_types.Date{Date: tuesday},
		AllDay:    true,
		Status:    domain.ExceptionStatusApproved,
		Reason:    "Conference",
	}}

	slots, err := GenerateDaySlots("clinician-1", tuesday, 30, testSchedule(0), exceptions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots for a working day")
	}
	for _, slot := range slots {
		if slot.Available || slot.Reason != "Time off: Conference" {
			t.Fatalf("slot %s: expected time off, got %+v", slot.Time, slot)
		}
	}

	// Исключение на вторник не затрагивает понедельник
	slots, _ = GenerateDaySlots("clinician-1", monday, 30, testSchedule(0), exceptions, nil)
	if slot := slotAt(t, slots, "09:00"); !slot.Available {
		t.Fatalf("monday must stay open, got %+v", slot)
	}
}

func TestGenerateDaySlotsPartialExceptionBeatsBreak(t *testing.T) {
	start := domain.MustParseTime("11:30")
	end := domain.MustParseTime("12:30")
	exceptions := []domain.ScheduleException{{
		StartDate: json_types.Date{Date: monday},
		EndDate:   json_types.Date{Date: monday},
		StartTime: &start,
		EndTime:   &end,
		Status:    domain.ExceptionStatusApproved,
		Reason:    "Staff meeting",
	}}

	slots, err := GenerateDaySlots("clinician-1", monday, 15, testSchedule(0), exceptions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slot := slotAt(t, slots, "12:00"); slot.Reason != "Time off: Staff meeting" {
		t.Fatalf("exception must take precedence over break, got %+v", slot)
	}
	if slot := slotAt(t, slots, "12:45"); slot.Reason != domain.ReasonBreakTime {
		t.Fatalf("expected break after exception window, got %+v", slot)
	}
	if slot := slotAt(t, slots, "11:15"); !slot.Available {
		t.Fatalf("11:15 is before the exception, got %+v", slot)
	}
}

func TestGenerateDaySlotsNonWorkingDay(t *testing.T) {
	slots, err := GenerateDaySlots("clinician-1", sunday, 30, testSchedule(0), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a non-working day, got %d", len(slots))
	}
}

func TestGenerateDaySlotsWithoutSchedule(t *testing.T) {
	bookings := []domain.Appointment{booking(sunday, "10:00", "11:00", domain.AppointmentStatusScheduled)}

	slots, err := GenerateDaySlots("clinician-1", sunday, 30, nil, nil, bookings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 96 {
		t.Fatalf("expected 96 ticks for an unconfigured clinician, got %d", len(slots))
	}
	if slots[0].Time != 0 || slots[95].Time != domain.MustParseTime("23:45") {
		t.Fatalf("unexpected range %s..%s", slots[0].Time, slots[95].Time)
	}
	if slot := slotAt(t, slots, "10:15"); slot.Available || slot.Reason != domain.ReasonBookingConflict {
		t.Fatalf("booking must still apply without schedule, got %+v", slot)
	}
	if slot := slotAt(t, slots, "11:00"); !slot.Available {
		t.Fatalf("no buffer without schedule, got %+v", slot)
	}
}

func TestGenerateDaySlotsSortedWithoutDuplicates(t *testing.T) {
	schedule := testSchedule(0)
	schedule.Days[domain.WeekdayMonday] = domain.DaySchedule{
		IsWorkingDay: true,
		// Смены в обратном порядке и с пересечением
		Shifts: []domain.TimeBlock{
			domain.MustTimeBlock("14:00", "18:00"),
			domain.MustTimeBlock("08:00", "12:00"),
			domain.MustTimeBlock("11:00", "15:00"),
		},
	}

	slots, err := GenerateDaySlots("clinician-1", monday, 30, schedule, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(slots); i++ {
		if slots[i].Time <= slots[i-1].Time {
			t.Fatalf("slots not strictly increasing at %d: %s then %s", i, slots[i-1].Time, slots[i].Time)
		}
	}
	// 11:45 не помещается в первую смену, но помещается во вторую
	if slot := slotAt(t, slots, "11:45"); !slot.Available {
		t.Fatalf("overlapping shift must keep 11:45 available, got %+v", slot)
	}
}

func TestGenerateDaySlotsRejectsMalformedInput(t *testing.T) {
	broken := testSchedule(0)
	broken.Days[domain.WeekdayMonday] = domain.DaySchedule{
		IsWorkingDay: true,
		Shifts:       []domain.TimeBlock{{Start: domain.MustParseTime("17:00"), End: domain.MustParseTime("09:00")}},
	}

	tests := []struct {
		name     string
		duration int
		schedule *domain.WeeklySchedule
		bookings []domain.Appointment
		want     error
	}{
		{"zero duration", 0, testSchedule(0), nil, domain.ErrInvalidDuration},
		{"negative duration", -15, testSchedule(0), nil, domain.ErrInvalidDuration},
		{"inverted shift", 30, broken, nil, domain.ErrInvalidBlock},
		{"negative buffer", 30, testSchedule(-5), nil, domain.ErrInvalidBuffer},
		{"inverted booking", 30, testSchedule(0), []domain.Appointment{booking(monday, "11:00", "10:00", domain.AppointmentStatusScheduled)}, domain.ErrInvalidBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateDaySlots("clinician-1", monday, tt.duration, tt.schedule, nil, tt.bookings)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenerateDaySlotsSurviveJSONRoundTrip(t *testing.T) {
	// Так списки слотов лежат в Redis: концы поздних слотов уходят за полночь
	for _, schedule := range []*domain.WeeklySchedule{nil, testSchedule(10)} {
		slots, err := GenerateDaySlots("clinician-1", monday, 50, schedule, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := json.Marshal(slots)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var back []domain.Slot
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(back, slots) {
			t.Fatal("slots changed after json round trip")
		}
	}
}
