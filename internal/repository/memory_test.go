package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-scheduling-server/internal/models"
)

func newAppointment(patientID string) *models.Appointment {
	return &models.Appointment{
		PatientID: patientID,
		DoctorID:  "doctor-1",
		Date:      "2024-06-01",
		TimeSlot:  "09:00",
		Type:      models.TypeGeneralCheckup,
		Status:    models.StatusPending,
	}
}

func TestMemoryRepository_CreateAppointment_SlotTaken(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(ctx, first))
	assert.NotEmpty(t, first.ID)

	err := repo.CreateAppointment(ctx, newAppointment("patient-2"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	booked, err := repo.SlotBooked(ctx, "doctor-1", "2024-06-01", "09:00")
	require.NoError(t, err)
	assert.True(t, booked)
}

func TestMemoryRepository_ConcurrentBookingsAdmitOne(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicted := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.CreateAppointment(ctx, newAppointment("patient"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrSlotTaken):
				conflicted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)

	all, err := repo.ListAppointments(ctx, AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryRepository_CancelFreesSlot(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(ctx, first))

	reason := "schedule conflict"
	cancelled, err := repo.UpdateStatus(ctx, StatusUpdate{
		AppointmentID:      first.ID,
		From:               models.StatusPending,
		To:                 models.StatusCancelled,
		CancellationReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.SlotHold)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, reason, *cancelled.CancellationReason)

	second := newAppointment("patient-2")
	require.NoError(t, repo.CreateAppointment(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMemoryRepository_UpdateStatus_Mismatch(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(ctx, a))

	current, err := repo.UpdateStatus(ctx, StatusUpdate{
		AppointmentID: a.ID,
		From:          models.StatusConfirmed,
		To:            models.StatusCompleted,
	})
	assert.ErrorIs(t, err, ErrStatusMismatch)
	require.NotNil(t, current)
	assert.Equal(t, models.StatusPending, current.Status)

	_, err = repo.UpdateStatus(ctx, StatusUpdate{AppointmentID: "missing", From: models.StatusPending, To: models.StatusConfirmed})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_UpdateStatus_LinksPrescription(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := newAppointment("patient-1")
	a.Status = models.StatusConfirmed
	require.NoError(t, repo.CreateAppointment(ctx, a))

	p := &models.Prescription{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Diagnosis:     "Hypertension",
		Medicines:     []models.Medicine{{Name: "Amlodipine", Dosage: "5mg", Frequency: "daily", Duration: "30 days"}},
	}
	done, err := repo.UpdateStatus(ctx, StatusUpdate{
		AppointmentID: a.ID,
		From:          models.StatusConfirmed,
		To:            models.StatusCompleted,
		Prescription:  p,
		Change:        models.StatusChange{FromStatus: models.StatusConfirmed, ToStatus: models.StatusCompleted, ActorID: "u-doc", ActorRole: models.RoleDoctor},
	})
	require.NoError(t, err)
	require.NotNil(t, done.PrescriptionID)
	assert.Equal(t, p.ID, *done.PrescriptionID)

	stored, err := repo.GetPrescription(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hypertension", stored.Diagnosis)

	changes, err := repo.ListStatusChanges(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.StatusCompleted, changes[0].ToStatus)
	assert.Equal(t, a.ID, changes[0].AppointmentID)
}

func TestMemoryRepository_UpdateDetails(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(ctx, a))

	symptoms := "headache"
	updated, err := repo.UpdateDetails(ctx, a.ID, DetailsUpdate{Symptoms: &symptoms})
	require.NoError(t, err)
	assert.Equal(t, "headache", updated.Symptoms)

	reason := "travel"
	_, err = repo.UpdateStatus(ctx, StatusUpdate{AppointmentID: a.ID, From: models.StatusPending, To: models.StatusCancelled, CancellationReason: &reason})
	require.NoError(t, err)

	notes := "too late"
	_, err = repo.UpdateDetails(ctx, a.ID, DetailsUpdate{Notes: &notes})
	assert.ErrorIs(t, err, ErrTerminal)
}

func TestMemoryRepository_ScopedQueries(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(ctx, a))
	b := newAppointment("patient-2")
	b.TimeSlot = "10:00"
	require.NoError(t, repo.CreateAppointment(ctx, b))
	c := newAppointment("patient-1")
	c.DoctorID = "doctor-2"
	c.Date = "2024-06-02"
	require.NoError(t, repo.CreateAppointment(ctx, c))

	mine, err := repo.ListAppointments(ctx, AppointmentFilter{PatientID: "patient-1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2024-06-02", mine[0].Date)

	counts, err := repo.CountByStatus(ctx, AppointmentFilter{DoctorID: "doctor-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusPending])
}
