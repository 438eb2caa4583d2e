package appointment

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

type Validator struct {
	validate *validator.Validate
	settings Settings
	now      func() time.Time
}

func NewValidator(settings Settings, now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(),
		settings: settings,
		now:      now,
	}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.validate.RegisterValidation("bookable", v.bookable)
	_ = v.validate.RegisterValidation("timeslot", v.timeslot)

	return v
}

// Validate returns nil when req may be submitted, otherwise one message per
// offending field.
func (v *Validator) Validate(req Request) FieldErrors {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Name must be at most %d characters", MaxNameLength)
		}
		return "Name must be at least 2 characters"
	case "phone":
		return "Please enter a valid phone number"
	case "date":
		if fe.Tag() == "required" {
			return "Please select a date"
		}
		return "Please select a date that is not in the past"
	case "time":
		if fe.Tag() == "required" {
			return "Please select a time slot"
		}
		return "Please select one of the available time slots"
	}
	return fe.Error()
}

func (v *Validator) bookable(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}

	day := calendarDay(d)
	if day.Before(calendarDay(v.settings.DateFloor)) {
		return false
	}
	return !day.Before(calendarDay(v.now()))
}

func (v *Validator) timeslot(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, slot := range v.settings.TimeSlots {
		if slot == value {
			return true
		}
	}
	return false
}

// calendarDay drops the clock and zone so two dates compare by their
// year, month and day only.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
