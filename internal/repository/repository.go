package repository

import (
	"context"
	"errors"

	"healthcare-scheduling-server/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when a live appointment already holds the slot.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrStatusMismatch is returned when the stored status no longer matches the
	// precondition of a status update. The current appointment is returned with it.
	ErrStatusMismatch = errors.New("appointment status does not match precondition")
	// ErrTerminal is returned when details are edited on a completed or cancelled
	// appointment.
	ErrTerminal = errors.New("appointment is in a terminal state")
)

// AppointmentFilter scopes appointment queries. Empty fields match everything.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
}

// PrescriptionFilter scopes prescription queries. Empty fields match everything.
type PrescriptionFilter struct {
	PatientID string
	DoctorID  string
}

// StatusUpdate is a compare-and-swap status change. It applies only while the
// stored status equals From.
type StatusUpdate struct {
	AppointmentID string
	From          models.AppointmentStatus
	To            models.AppointmentStatus
	// CancellationReason is written when non-nil.
	CancellationReason *string
	// Prescription, when set, is inserted and linked to the appointment in the
	// same unit of work as the status change.
	Prescription *models.Prescription
	Change       models.StatusChange
}

// DetailsUpdate edits the free-text fields of a non-terminal appointment.
type DetailsUpdate struct {
	Symptoms *string
	Notes    *string
}

// Repository is the storage port of the scheduling core.
type Repository interface {
	// CreateAppointment inserts a if no live appointment holds its slot, and
	// fails with ErrSlotTaken otherwise. The check and the insert are atomic.
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// SlotBooked reports whether a non-cancelled appointment holds the slot.
	SlotBooked(ctx context.Context, doctorID, date, timeSlot string) (bool, error)
	UpdateStatus(ctx context.Context, update StatusUpdate) (*models.Appointment, error)
	UpdateDetails(ctx context.Context, id string, update DetailsUpdate) (*models.Appointment, error)
	CountByStatus(ctx context.Context, filter AppointmentFilter) (map[models.AppointmentStatus]int64, error)
	ListStatusChanges(ctx context.Context, appointmentID string) ([]models.StatusChange, error)

	GetPrescription(ctx context.Context, id string) (*models.Prescription, error)
	ListPrescriptions(ctx context.Context, filter PrescriptionFilter) ([]models.Prescription, error)
}
