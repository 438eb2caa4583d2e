package api

import (
	"encoding/json"
	"net/http"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

// CreateAppointmentRequest is the JSON body of POST /api/appointments.
// Date is YYYY-MM-DD.
type CreateAppointmentRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

func (c CreateAppointmentRequest) toRequest() appointment.Request {
	return appointment.Request{
		Name:  c.Name,
		Phone: c.Phone,
		Date:  appointment.ParseInputDate(c.Date),
		Time:  c.Time,
	}
}

type AppointmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

func toResponse(rec appointment.Record) AppointmentResponse {
	return AppointmentResponse{
		ID:    rec.ID,
		Name:  rec.Name,
		Phone: rec.Phone,
		Date:  rec.Date,
		Time:  rec.Time,
	}
}

type TimeSlotsResponse struct {
	TimeSlots []string `json:"time_slots"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
