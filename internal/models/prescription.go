package models

import (
	"time"
)

// Medicine is one line of a prescription.
type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription is the clinical record issued when a doctor completes an
// appointment. PatientID and DoctorID are copied from the appointment when the
// record is created and never re-derived.
type Prescription struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AppointmentID string     `gorm:"size:36;not null;uniqueIndex" json:"appointmentId"`
	PatientID     string     `gorm:"size:36;not null;index" json:"patientId"`
	DoctorID      string     `gorm:"size:36;not null;index" json:"doctorId"`
	Diagnosis     string     `gorm:"type:text;not null" json:"diagnosis"`
	Medicines     []Medicine `gorm:"type:text;serializer:json" json:"medicines"`
	Tests         []string   `gorm:"type:text;serializer:json" json:"tests"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
