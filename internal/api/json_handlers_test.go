package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const validJSON = `{"name":"Jane Doe","phone":"+14155550100","date":"2025-06-01","time":"07:00 PM - 08:00 PM"}`

func TestCreateAppointment_Created(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(postJSON("/api/appointments", validJSON))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", resp.ID)
	}
	want := AppointmentResponse{ID: resp.ID, Name: "Jane Doe", Phone: "+14155550100", Date: "June 1, 2025", Time: "07:00 PM - 08:00 PM"}
	if resp != want {
		t.Fatalf("expected %+v, got %+v", want, resp)
	}
}

func TestCreateAppointment_ValidationFailed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(postJSON("/api/appointments", `{"name":"J","phone":"+14155550100","date":"2025-05-01","time":"07:00 PM - 08:00 PM"}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "validation_failed" {
		t.Fatalf("unexpected error code %q", resp.Error)
	}
	if resp.Fields["name"] == "" || resp.Fields["date"] == "" {
		t.Fatalf("expected name and date errors, got %v", resp.Fields)
	}
	if len(resp.Fields) != 2 {
		t.Fatalf("expected exactly two field errors, got %v", resp.Fields)
	}
}

func TestCreateAppointment_BadBody(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(postJSON("/api/appointments", `{`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAppointment_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := env.do(postJSON("/api/appointments", body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if env.notifier.calls != 0 {
		t.Fatal("notifier must not be called for an oversized body")
	}
}

func TestCreateAppointment_NotificationFailed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.notifier.err = errors.New("boom")

	rec := env.do(postJSON("/api/appointments", validJSON))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if _, err := env.store.Get(context.Background()); !errors.Is(err, appointment.ErrNoRecord) {
		t.Fatal("store must stay empty")
	}
}

func TestCurrentAppointment(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/appointments/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any booking, got %d", rec.Code)
	}

	stored := env.seed(t)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/appointments/current", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != stored.ID {
		t.Fatalf("expected id %s, got %s", stored.ID, resp.ID)
	}
}

func TestCurrentAppointmentPDF(t *testing.T) {
	env := newTestEnv(t, func(appointment.Record) ([]byte, error) {
		return nil, errors.New("no fonts")
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/appointments/current/pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any booking, got %d", rec.Code)
	}

	env.seed(t)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/appointments/current/pdf", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on render failure, got %d", rec.Code)
	}
}

func TestListTimeSlots(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/time-slots", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TimeSlotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.TimeSlots) != len(appointment.DefaultTimeSlots) {
		t.Fatalf("expected %d slots, got %v", len(appointment.DefaultTimeSlots), resp.TimeSlots)
	}
}
