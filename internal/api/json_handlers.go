package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/receipt"
)

func (h *handlers) listTimeSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TimeSlotsResponse{TimeSlots: h.svc.Settings().TimeSlots})
}

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body exceeds limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	rec, err := h.svc.Submit(r.Context(), req.toRequest())
	if err != nil {
		h.handleCreateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (h *handlers) currentAppointment(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Current(r.Context())
	if err != nil {
		h.handleCurrentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (h *handlers) currentAppointmentPDF(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Current(r.Context())
	if err != nil {
		h.handleCurrentError(w, r, err)
		return
	}

	data, err := h.render(rec)
	if err != nil {
		h.logger.Error("export appointment pdf", zap.Error(err), zap.String("appointment_id", rec.ID))
		writeError(w, http.StatusInternalServerError, "export_failed", msgExportFailed)
		return
	}

	writePDF(w, receipt.Filename(rec), data)
}

func (h *handlers) handleCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs appointment.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation_failed",
			Fields: fieldErrs,
		})
	case errors.Is(err, appointment.ErrNotificationFailed):
		writeError(w, http.StatusBadGateway, "notification_failed", msgBookFailed)
	default:
		h.logger.Error("create appointment", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "internal_error", msgBookFailed)
	}
}

func (h *handlers) handleCurrentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, appointment.ErrNoRecord) {
		writeError(w, http.StatusNotFound, "no_appointment", "no appointment has been booked")
		return
	}
	h.logger.Error("load appointment", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
