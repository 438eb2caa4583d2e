package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/schema"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/receipt"
)

const (
	msgBooked       = "Appointment booked successfully!"
	msgBookFailed   = "Failed to book appointment. Please try again."
	msgBadForm      = "Could not read the form. Please try again."
	msgExportFailed = "Failed to generate PDF. Please try again."
)

// maxBodyBytes bounds form and JSON submissions.
const maxBodyBytes = 16 << 10

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type bookingForm struct {
	Name  string `schema:"name"`
	Phone string `schema:"phone"`
	Date  string `schema:"date"`
	Time  string `schema:"time"`
}

func (f bookingForm) toRequest() appointment.Request {
	return appointment.Request{
		Name:  f.Name,
		Phone: f.Phone,
		Date:  appointment.ParseInputDate(f.Date),
		Time:  f.Time,
	}
}

type handlers struct {
	svc    BookingService
	logger *zap.Logger
	render RenderFunc
	now    func() time.Time
	pages  *pages
}

type formView struct {
	Notice    *flash
	Values    bookingForm
	Errors    appointment.FieldErrors
	TimeSlots []string
	MinDate   string
}

type confirmationView struct {
	Notice *flash
	Record appointment.Record
}

func (h *handlers) showForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, formView{Notice: popFlash(w, r)})
}

func (h *handlers) submitForm(w http.ResponseWriter, r *http.Request) {
	var form bookingForm
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, http.StatusBadRequest, formView{Notice: &flash{Kind: flashError, Message: msgBadForm}})
		return
	}
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		h.renderForm(w, http.StatusBadRequest, formView{Notice: &flash{Kind: flashError, Message: msgBadForm}})
		return
	}

	_, err := h.svc.Submit(r.Context(), form.toRequest())
	if err == nil {
		setFlash(w, flashSuccess, msgBooked)
		http.Redirect(w, r, "/confirmation", http.StatusSeeOther)
		return
	}

	var fieldErrs appointment.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		h.renderForm(w, http.StatusUnprocessableEntity, formView{Values: form, Errors: fieldErrs})
	case errors.Is(err, appointment.ErrNotificationFailed):
		h.renderForm(w, http.StatusBadGateway, formView{
			Notice: &flash{Kind: flashError, Message: msgBookFailed},
			Values: form,
		})
	default:
		h.logger.Error("submit appointment", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		h.renderForm(w, http.StatusInternalServerError, formView{
			Notice: &flash{Kind: flashError, Message: msgBookFailed},
			Values: form,
		})
	}
}

func (h *handlers) showConfirmation(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	h.pages.render(w, h.logger, "confirmation", http.StatusOK, confirmationView{
		Notice: popFlash(w, r),
		Record: rec,
	})
}

func (h *handlers) downloadPDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	data, err := h.render(rec)
	if err != nil {
		h.logger.Error("export appointment pdf",
			zap.Error(err),
			zap.String("appointment_id", rec.ID),
			zap.String("request_id", GetRequestID(r.Context())),
		)
		setFlash(w, flashError, msgExportFailed)
		http.Redirect(w, r, "/confirmation", http.StatusSeeOther)
		return
	}

	writePDF(w, receipt.Filename(rec), data)
}

// restart returns to the entry page. The stored record is left in place.
func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadRecord fetches the stored record or redirects to the entry page when
// there is none.
func (h *handlers) loadRecord(w http.ResponseWriter, r *http.Request) (appointment.Record, bool) {
	rec, err := h.svc.Current(r.Context())
	if err == nil {
		return rec, true
	}

	if !errors.Is(err, appointment.ErrNoRecord) {
		h.logger.Error("load appointment", zap.Error(err), zap.String("request_id", GetRequestID(r.Context())))
		setFlash(w, flashError, "Could not load your appointment. Please try again.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return appointment.Record{}, false
}

func (h *handlers) renderForm(w http.ResponseWriter, status int, view formView) {
	view.TimeSlots = h.svc.Settings().TimeSlots
	view.MinDate = h.now().Format(appointment.InputDateLayout)
	h.pages.render(w, h.logger, "form", status, view)
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
