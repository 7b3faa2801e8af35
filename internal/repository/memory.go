package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthcare-scheduling-server/internal/models"
)

// MemoryRepository keeps appointments in process memory. Every mutation runs
// under one lock, so slot checks and inserts are serialized.
type MemoryRepository struct {
	mu            sync.RWMutex
	appointments  map[string]*models.Appointment
	prescriptions map[string]*models.Prescription
	changes       map[string][]models.StatusChange
	nextChangeID  uint
	now           func() time.Time
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		appointments:  make(map[string]*models.Appointment),
		prescriptions: make(map[string]*models.Prescription),
		changes:       make(map[string][]models.StatusChange),
		now:           time.Now,
	}
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotBookedLocked(a.DoctorID, a.Date, a.TimeSlot) {
		return ErrSlotTaken
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := r.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.SlotHold = models.Held()

	stored := *a
	r.appointments[a.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *MemoryRepository) ListAppointments(_ context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, a := range r.appointments {
		if matchesAppointment(a, filter) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) SlotBooked(_ context.Context, doctorID, date, timeSlot string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slotBookedLocked(doctorID, date, timeSlot), nil
}

func (r *MemoryRepository) slotBookedLocked(doctorID, date, timeSlot string) bool {
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date == date && a.TimeSlot == timeSlot && a.Status != models.StatusCancelled {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, update StatusUpdate) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[update.AppointmentID]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != update.From {
		out := *a
		return &out, ErrStatusMismatch
	}

	now := r.now()
	a.Status = update.To
	a.UpdatedAt = now
	if update.To == models.StatusCancelled {
		a.SlotHold = nil
	}
	if update.CancellationReason != nil {
		reason := *update.CancellationReason
		a.CancellationReason = &reason
	}
	if update.Prescription != nil {
		p := *update.Prescription
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.CreatedAt = now
		r.prescriptions[p.ID] = &p
		update.Prescription.ID = p.ID
		update.Prescription.CreatedAt = now
		id := p.ID
		a.PrescriptionID = &id
	}

	r.nextChangeID++
	change := update.Change
	change.ID = r.nextChangeID
	change.AppointmentID = a.ID
	change.CreatedAt = now
	r.changes[a.ID] = append(r.changes[a.ID], change)

	out := *a
	return &out, nil
}

func (r *MemoryRepository) UpdateDetails(_ context.Context, id string, update DetailsUpdate) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status.IsTerminal() {
		out := *a
		return &out, ErrTerminal
	}
	if update.Symptoms != nil {
		a.Symptoms = *update.Symptoms
	}
	if update.Notes != nil {
		a.Notes = *update.Notes
	}
	a.UpdatedAt = r.now()
	out := *a
	return &out, nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context, filter AppointmentFilter) (map[models.AppointmentStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.AppointmentStatus]int64)
	for _, a := range r.appointments {
		if matchesAppointment(a, filter) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (r *MemoryRepository) ListStatusChanges(_ context.Context, appointmentID string) ([]models.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StatusChange, len(r.changes[appointmentID]))
	copy(out, r.changes[appointmentID])
	return out, nil
}

func (r *MemoryRepository) GetPrescription(_ context.Context, id string) (*models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *MemoryRepository) ListPrescriptions(_ context.Context, filter PrescriptionFilter) ([]models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Prescription, 0)
	for _, p := range r.prescriptions {
		if filter.PatientID != "" && p.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID != "" && p.DoctorID != filter.DoctorID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesAppointment(a *models.Appointment, filter AppointmentFilter) bool {
	if filter.PatientID != "" && a.PatientID != filter.PatientID {
		return false
	}
	if filter.DoctorID != "" && a.DoctorID != filter.DoctorID {
		return false
	}
	return true
}
