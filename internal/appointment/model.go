package appointment

import (
	"time"
)

const (
	DefaultServiceID      = "service_0yti8r8"
	DefaultTemplateID     = "template_3t9rnqv"
	DefaultRecipientLabel = "Admin"
	DefaultStateKey       = "appointmentData"

	// DisplayDateLayout renders dates as "June 1, 2025".
	DisplayDateLayout = "January 2, 2006"
	// InputDateLayout is the wire format of a date picked in the form.
	InputDateLayout = "2006-01-02"

	MaxNameLength  = 100
	MaxPhoneLength = 32
)

// DefaultTimeSlots are the bookable slot labels offered by the form.
var DefaultTimeSlots = []string{
	"05:00 AM - 06:00 AM",
	"07:00 PM - 08:00 PM",
	"08:15 PM - 09:15 PM",
	"10:00 PM - 10:30 PM",
}

// DefaultDateFloor is the earliest date the form will ever accept.
var DefaultDateFloor = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Request is an unvalidated booking as entered by the user.
type Request struct {
	Name  string    `form:"name" validate:"min=2,max=100"`
	Phone string    `form:"phone" validate:"min=10,max=32"`
	Date  time.Time `form:"date" validate:"required,bookable"`
	Time  string    `form:"time" validate:"required,timeslot"`
}

// Record is a validated booking with its assigned identifier. It is the
// only thing kept in persisted state.
type Record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// NotificationParams is the fixed payload handed to the notification service.
type NotificationParams struct {
	ToName          string `json:"to_name"`
	AppointmentID   string `json:"appointment_id"`
	ClientName      string `json:"client_name"`
	PhoneNumber     string `json:"phone_number"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

type Notification struct {
	ServiceID  string
	TemplateID string
	Params     NotificationParams
}

// Settings holds the compiled-in constants of the booking flow so callers
// and tests can vary them.
type Settings struct {
	ServiceID      string
	TemplateID     string
	RecipientLabel string
	TimeSlots      []string
	DateFloor      time.Time
}

func DefaultSettings() Settings {
	slots := make([]string, len(DefaultTimeSlots))
	copy(slots, DefaultTimeSlots)

	return Settings{
		ServiceID:      DefaultServiceID,
		TemplateID:     DefaultTemplateID,
		RecipientLabel: DefaultRecipientLabel,
		TimeSlots:      slots,
		DateFloor:      DefaultDateFloor,
	}
}

func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// ParseInputDate parses a YYYY-MM-DD value. An empty or malformed value
// yields the zero time, which validation reports as a missing date.
func ParseInputDate(raw string) time.Time {
	t, err := time.Parse(InputDateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
