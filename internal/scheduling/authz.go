package scheduling

import (
	"healthcare-scheduling-server/internal/models"
)

// CanCreate reports whether actor may book an appointment for patientID.
// Only patients book, and only for themselves.
func CanCreate(actor models.Actor, patientID string) bool {
	return actor.Role == models.RolePatient && actor.ID != "" && actor.ID == patientID
}

// CanView reports whether actor may read a.
func CanView(actor models.Actor, a *models.Appointment) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return ownsAsPatient(actor, a)
	case models.RoleDoctor:
		return ownsAsDoctor(actor, a)
	}
	return false
}

// CanTransition reports whether actor may request the move of a to target.
// Whether the move itself is legal is decided by the lifecycle table.
func CanTransition(actor models.Actor, a *models.Appointment, target models.AppointmentStatus) bool {
	switch target {
	case models.StatusCancelled:
		return actor.IsAdmin() || ownsAsPatient(actor, a) || ownsAsDoctor(actor, a)
	case models.StatusConfirmed:
		return actor.IsAdmin() || ownsAsDoctor(actor, a)
	case models.StatusCompleted:
		return ownsAsDoctor(actor, a)
	default:
		return CanView(actor, a)
	}
}

// CanForce reports whether actor may use the status override.
func CanForce(actor models.Actor) bool {
	return actor.IsAdmin()
}

// CanViewPrescription reports whether actor may read p.
func CanViewPrescription(actor models.Actor, p *models.Prescription) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RolePatient:
		return actor.ID != "" && p.PatientID == actor.ID
	case models.RoleDoctor:
		return actor.DoctorID != "" && p.DoctorID == actor.DoctorID
	}
	return false
}

func ownsAsPatient(actor models.Actor, a *models.Appointment) bool {
	return actor.Role == models.RolePatient && actor.ID != "" && a.PatientID == actor.ID
}

func ownsAsDoctor(actor models.Actor, a *models.Appointment) bool {
	return actor.Role == models.RoleDoctor && actor.DoctorID != "" && a.DoctorID == actor.DoctorID
}
