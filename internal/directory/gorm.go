package directory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"healthcare-scheduling-server/internal/models"
)

// GormDirectory reads doctor profiles from the doctors table.
type GormDirectory struct {
	DB *gorm.DB
}

// NewGormDirectory creates a new GormDirectory.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

func (d *GormDirectory) Lookup(ctx context.Context, doctorID string) (Entry, error) {
	var doctor models.Doctor
	if err := d.DB.WithContext(ctx).Select("id", "user_id", "is_approved").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return Entry{DoctorID: doctor.ID, UserID: doctor.UserID, IsApproved: doctor.IsApproved}, nil
}

func (d *GormDirectory) DoctorIDForUser(ctx context.Context, userID string) (string, error) {
	var doctor models.Doctor
	if err := d.DB.WithContext(ctx).Select("id").First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return doctor.ID, nil
}
