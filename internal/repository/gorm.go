package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"healthcare-scheduling-server/internal/models"
)

// mysqlDuplicateEntry is the MySQL error number for a unique index violation.
const mysqlDuplicateEntry = 1062

// GormRepository stores appointments in MySQL through gorm. Slot exclusivity is
// enforced by the idx_doctor_slot_hold unique index, not by a prior read.
type GormRepository struct {
	DB *gorm.DB
}

// NewGormRepository creates a new GormRepository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	a.SlotHold = models.Held()
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *GormRepository) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &a, nil
}

func (r *GormRepository) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	appointments := make([]models.Appointment, 0)
	err := r.DB.WithContext(ctx).
		Scopes(appointmentScope(filter)).
		Order("date desc").Order("time_slot asc").Order("created_at asc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *GormRepository) SlotBooked(ctx context.Context, doctorID, date, timeSlot string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time_slot = ? AND status <> ?", doctorID, date, timeSlot, models.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, update StatusUpdate) (*models.Appointment, error) {
	var current models.Appointment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		values := map[string]interface{}{"status": update.To}
		if update.To == models.StatusCancelled {
			values["slot_hold"] = nil
		}
		if update.CancellationReason != nil {
			values["cancellation_reason"] = *update.CancellationReason
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", update.AppointmentID, update.From).
			Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&current, "id = ?", update.AppointmentID).Error; err != nil {
				return err
			}
			return ErrStatusMismatch
		}

		if p := update.Prescription; p != nil {
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Appointment{}).
				Where("id = ?", update.AppointmentID).
				Update("prescription_id", p.ID).Error; err != nil {
				return err
			}
		}

		change := update.Change
		change.AppointmentID = update.AppointmentID
		if err := tx.Create(&change).Error; err != nil {
			return err
		}

		return tx.First(&current, "id = ?", update.AppointmentID).Error
	})
	if errors.Is(err, ErrStatusMismatch) {
		return &current, ErrStatusMismatch
	}
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &current, nil
}

func (r *GormRepository) UpdateDetails(ctx context.Context, id string, update DetailsUpdate) (*models.Appointment, error) {
	values := map[string]interface{}{}
	if update.Symptoms != nil {
		values["symptoms"] = *update.Symptoms
	}
	if update.Notes != nil {
		values["notes"] = *update.Notes
	}

	var current models.Appointment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(values) > 0 {
			res := tx.Model(&models.Appointment{}).
				Where("id = ? AND status IN ?", id, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
				Updates(values)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if err := tx.First(&current, "id = ?", id).Error; err != nil {
					return err
				}
				return ErrTerminal
			}
		}
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return ErrTerminal
		}
		return nil
	})
	if errors.Is(err, ErrTerminal) {
		return &current, ErrTerminal
	}
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &current, nil
}

func (r *GormRepository) CountByStatus(ctx context.Context, filter AppointmentFilter) (map[models.AppointmentStatus]int64, error) {
	var rows []struct {
		Status models.AppointmentStatus
		Total  int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Appointment{}).
		Scopes(appointmentScope(filter)).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *GormRepository) ListStatusChanges(ctx context.Context, appointmentID string) ([]models.StatusChange, error) {
	changes := make([]models.StatusChange, 0)
	err := r.DB.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id asc").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *GormRepository) GetPrescription(ctx context.Context, id string) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

func (r *GormRepository) ListPrescriptions(ctx context.Context, filter PrescriptionFilter) ([]models.Prescription, error) {
	prescriptions := make([]models.Prescription, 0)
	query := r.DB.WithContext(ctx)
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if err := query.Order("created_at desc").Find(&prescriptions).Error; err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func appointmentScope(filter AppointmentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.PatientID != "" {
			db = db.Where("patient_id = ?", filter.PatientID)
		}
		if filter.DoctorID != "" {
			db = db.Where("doctor_id = ?", filter.DoctorID)
		}
		return db
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
