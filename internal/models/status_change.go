package models

import (
	"time"
)

// StatusChange is one entry of an appointment's audit trail.
type StatusChange struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	AppointmentID string            `gorm:"size:36;not null;index" json:"appointmentId"`
	FromStatus    AppointmentStatus `gorm:"size:20;not null" json:"fromStatus"`
	ToStatus      AppointmentStatus `gorm:"size:20;not null" json:"toStatus"`
	ActorID       string            `gorm:"size:36;not null" json:"actorId"`
	ActorRole     Role              `gorm:"size:20;not null" json:"actorRole"`
	Forced        bool              `gorm:"default:false" json:"forced"`
	Reason        string            `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// TableName keeps the audit table name explicit.
func (StatusChange) TableName() string {
	return "appointment_status_changes"
}
