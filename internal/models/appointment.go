package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AllStatuses lists every appointment status in lifecycle order.
var AllStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// ParseAppointmentStatus returns the status named by s, if any.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition may leave the status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AppointmentType represents the kind of visit being booked
type AppointmentType string

const (
	TypeGeneralCheckup AppointmentType = "General Checkup"
	TypeFollowUp       AppointmentType = "Follow-up"
	TypeConsultation   AppointmentType = "Consultation"
	TypeEmergency      AppointmentType = "Emergency"
)

// AllTypes lists the bookable appointment types.
var AllTypes = []AppointmentType{TypeGeneralCheckup, TypeFollowUp, TypeConsultation, TypeEmergency}

// ParseAppointmentType returns the type named by s, if any.
func ParseAppointmentType(s string) (AppointmentType, bool) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Appointment reserves one (doctor, date, time slot) for a patient.
//
// SlotHold is true while the appointment occupies its slot and NULL once it is
// cancelled. The unique index over (doctor_id, date, time_slot, slot_hold)
// therefore admits any number of cancelled rows but only one live booking.
type Appointment struct {
	BaseModel
	PatientID          string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID           string            `gorm:"size:36;not null;uniqueIndex:idx_doctor_slot_hold,priority:1" json:"doctorId"`
	Date               string            `gorm:"size:10;not null;uniqueIndex:idx_doctor_slot_hold,priority:2" json:"date"`
	TimeSlot           string            `gorm:"size:20;not null;uniqueIndex:idx_doctor_slot_hold,priority:3" json:"timeSlot"`
	SlotHold           *bool             `gorm:"uniqueIndex:idx_doctor_slot_hold,priority:4" json:"-"`
	Type               AppointmentType   `gorm:"size:32;not null" json:"type"`
	Status             AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CancellationReason *string           `gorm:"size:500" json:"cancellationReason"`
	Symptoms           string            `gorm:"type:text" json:"symptoms"`
	Notes              string            `gorm:"type:text" json:"notes"`
	PrescriptionID     *string           `gorm:"size:36" json:"prescriptionRef,omitempty"`
}

// Held returns the SlotHold value for a live booking.
func Held() *bool {
	held := true
	return &held
}
