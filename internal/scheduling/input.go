package scheduling

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"healthcare-scheduling-server/internal/apperrors"
	"healthcare-scheduling-server/internal/models"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// CreateInput describes a booking request. PatientID defaults to the actor.
type CreateInput struct {
	PatientID string `validate:"omitempty,max=36"`
	DoctorID  string `validate:"required,max=36"`
	Date      string `validate:"required"`
	TimeSlot  string `validate:"required,max=20"`
	Type      string `validate:"required"`
	Symptoms  string `validate:"max=2000"`
	Notes     string `validate:"max=2000"`
}

// TransitionInput is a request to move an appointment to Status.
type TransitionInput struct {
	Status       models.AppointmentStatus
	Reason       string
	Prescription *PrescriptionInput
}

// DetailsInput edits the free-text fields of an appointment.
type DetailsInput struct {
	Symptoms *string `validate:"omitempty,max=2000"`
	Notes    *string `validate:"omitempty,max=2000"`
}

// NormalizeDate accepts a calendar date or an RFC 3339 timestamp and returns
// the calendar date. Times are facility local, so the date part is taken as
// written.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", apperrors.Validation("date %q must be formatted as YYYY-MM-DD", raw)
}

// NormalizeTimeSlot trims the slot token and rejects an empty one.
func NormalizeTimeSlot(raw string) (string, error) {
	slot := strings.TrimSpace(raw)
	if slot == "" {
		return "", apperrors.Validation("time slot is required")
	}
	if len(slot) > 20 {
		return "", apperrors.Validation("time slot %q is too long", slot)
	}
	return slot, nil
}

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field()+" failed "+e.Tag())
			}
			return apperrors.Validation("invalid input: %s", strings.Join(fields, ", "))
		}
		return apperrors.Validation("invalid input: %v", err)
	}
	return nil
}
