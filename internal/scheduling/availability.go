package scheduling

import (
	"context"
)

// IsAvailable reports whether no live appointment holds the doctor's slot.
// It is advisory: CreateAppointment relies on the storage guarantee, not on
// this answer.
func (s *Service) IsAvailable(ctx context.Context, doctorID, date, timeSlot string) (bool, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return false, err
	}
	slot, err := NormalizeTimeSlot(timeSlot)
	if err != nil {
		return false, err
	}
	if _, err := s.lookupDoctor(ctx, doctorID); err != nil {
		return false, err
	}

	booked, err := s.repo.SlotBooked(ctx, doctorID, day, slot)
	if err != nil {
		return false, s.storageFault("check slot availability", err)
	}
	return !booked, nil
}
