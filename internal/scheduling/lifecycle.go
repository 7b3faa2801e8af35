package scheduling

import (
	"healthcare-scheduling-server/internal/apperrors"
	"healthcare-scheduling-server/internal/models"
)

// transitions lists, for each status, the statuses it may move to. Terminal
// statuses have no entry.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
}

// CanMove reports whether the lifecycle permits from -> to.
func CanMove(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransition error unless from -> to is in
// the transition table.
func CheckTransition(from, to models.AppointmentStatus) error {
	if CanMove(from, to) {
		return nil
	}
	return invalidTransition(from, to)
}

// CheckForcedTransition validates an admin override. It accepts every table
// transition and a re-apply of the current status, and still refuses to leave
// a terminal status.
func CheckForcedTransition(from, to models.AppointmentStatus) error {
	if from == to || CanMove(from, to) {
		return nil
	}
	return invalidTransition(from, to)
}

func invalidTransition(from, to models.AppointmentStatus) error {
	if from.IsTerminal() {
		return apperrors.InvalidTransition("appointment is %s; cannot change status to %s", from, to)
	}
	return apperrors.InvalidTransition("cannot change appointment status from %s to %s", from, to)
}
