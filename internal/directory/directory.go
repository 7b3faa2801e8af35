package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a doctor id or account does not resolve to a
// directory profile.
var ErrNotFound = errors.New("doctor not found")

// Entry is what the scheduling core needs to know about a doctor.
type Entry struct {
	DoctorID   string `json:"doctorId"`
	UserID     string `json:"userId"`
	IsApproved bool   `json:"isApproved"`
}

// Directory is the read-only doctor directory consumed by the scheduling core.
type Directory interface {
	// Lookup resolves a doctor profile id.
	Lookup(ctx context.Context, doctorID string) (Entry, error)
	// DoctorIDForUser maps an authenticated doctor account to its profile id.
	DoctorIDForUser(ctx context.Context, userID string) (string, error)
}
