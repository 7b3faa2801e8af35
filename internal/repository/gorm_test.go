package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthcare-scheduling-server/internal/models"
)

func newMockRepository(t *testing.T) (*GormRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return NewGormRepository(db), mock
}

func TestGormRepository_CreateAppointment(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO `appointments`").WillReturnResult(sqlmock.NewResult(0, 1))

	a := newAppointment("patient-1")
	require.NoError(t, repo.CreateAppointment(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	require.NotNil(t, a.SlotHold)
	assert.True(t, *a.SlotHold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_CreateAppointment_DuplicateSlot(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'idx_doctor_slot_hold'"})

	err := repo.CreateAppointment(context.Background(), newAppointment("patient-2"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_GetAppointment_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetAppointment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_SlotBooked(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	booked, err := repo.SlotBooked(context.Background(), "doctor-1", "2024-06-01", "09:00")
	require.NoError(t, err)
	assert.True(t, booked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_UpdateStatus_Mismatch(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("appt-1", "cancelled"))
	mock.ExpectRollback()

	current, err := repo.UpdateStatus(context.Background(), StatusUpdate{
		AppointmentID: "appt-1",
		From:          models.StatusConfirmed,
		To:            models.StatusCompleted,
	})
	assert.ErrorIs(t, err, ErrStatusMismatch)
	require.NotNil(t, current)
	assert.Equal(t, models.StatusCancelled, current.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_UpdateStatus_WithPrescription(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `appointments` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `prescriptions`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `appointments` SET .*`prescription_id`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `appointment_status_changes`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "prescription_id"}).AddRow("appt-1", "completed", "rx-1"))
	mock.ExpectCommit()

	p := &models.Prescription{
		ID:            "rx-1",
		AppointmentID: "appt-1",
		PatientID:     "patient-1",
		DoctorID:      "doctor-1",
		Diagnosis:     "Hypertension",
		Medicines:     []models.Medicine{{Name: "Amlodipine"}},
	}
	done, err := repo.UpdateStatus(context.Background(), StatusUpdate{
		AppointmentID: "appt-1",
		From:          models.StatusConfirmed,
		To:            models.StatusCompleted,
		Prescription:  p,
		Change:        models.StatusChange{FromStatus: models.StatusConfirmed, ToStatus: models.StatusCompleted, ActorID: "u-doc", ActorRole: models.RoleDoctor},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.PrescriptionID)
	assert.Equal(t, "rx-1", *done.PrescriptionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_CountByStatus(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT status, count\\(\\*\\) as total FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).
			AddRow("pending", 3).
			AddRow("cancelled", 1))

	counts, err := repo.CountByStatus(context.Background(), AppointmentFilter{DoctorID: "doctor-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusCancelled])
	assert.NoError(t, mock.ExpectationsWereMet())
}
