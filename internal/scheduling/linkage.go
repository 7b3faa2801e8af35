package scheduling

import (
	"strings"

	"healthcare-scheduling-server/internal/apperrors"
	"healthcare-scheduling-server/internal/models"
)

// PrescriptionInput is the clinical payload a doctor may attach when completing
// an appointment.
type PrescriptionInput struct {
	Diagnosis string            `json:"diagnosis"`
	Medicines []models.Medicine `json:"medicines"`
	Tests     []string          `json:"tests"`
	Notes     string            `json:"notes"`
}

// newPrescription builds the record bound to a. Patient and doctor are copied
// from the appointment as it is at this moment.
func newPrescription(a *models.Appointment, in PrescriptionInput) (*models.Prescription, error) {
	diagnosis := strings.TrimSpace(in.Diagnosis)
	if diagnosis == "" {
		return nil, apperrors.Validation("diagnosis is required")
	}
	for i, m := range in.Medicines {
		if strings.TrimSpace(m.Name) == "" {
			return nil, apperrors.Validation("medicine %d has no name", i+1)
		}
	}

	medicines := make([]models.Medicine, len(in.Medicines))
	copy(medicines, in.Medicines)
	tests := make([]string, 0, len(in.Tests))
	for _, t := range in.Tests {
		if t = strings.TrimSpace(t); t != "" {
			tests = append(tests, t)
		}
	}

	return &models.Prescription{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Diagnosis:     diagnosis,
		Medicines:     medicines,
		Tests:         tests,
		Notes:         strings.TrimSpace(in.Notes),
	}, nil
}
