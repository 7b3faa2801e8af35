package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"healthcare-scheduling-server/internal/apperrors"
	"healthcare-scheduling-server/internal/directory"
	"healthcare-scheduling-server/internal/metrics"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/repository"
)

// Service is the appointment scheduling core. Every operation takes the
// authenticated actor and returns *apperrors.Error values on failure.
type Service struct {
	repo      repository.Repository
	directory directory.Directory
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the core to its storage and directory. m may be nil.
func NewService(repo repository.Repository, dir directory.Directory, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		directory: dir,
		logger:    logger.With().Str("component", "scheduling").Logger(),
		metrics:   m,
	}
}

// Stats counts the appointments visible to an actor.
type Stats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// ResolveActor fills in the doctor profile of a doctor actor. A doctor account
// without a profile is returned unchanged and owns no appointments.
func (s *Service) ResolveActor(ctx context.Context, actor models.Actor) (models.Actor, error) {
	if actor.Role != models.RoleDoctor || actor.DoctorID != "" {
		return actor, nil
	}
	doctorID, err := s.directory.DoctorIDForUser(ctx, actor.ID)
	if errors.Is(err, directory.ErrNotFound) {
		return actor, nil
	}
	if err != nil {
		return actor, s.directoryFault(err)
	}
	actor.DoctorID = doctorID
	return actor, nil
}

// CreateAppointment books a slot for the actor. The new appointment is Pending.
func (s *Service) CreateAppointment(ctx context.Context, actor models.Actor, in CreateInput) (*models.Appointment, error) {
	a, err := s.createAppointment(ctx, actor, in)
	if err != nil {
		s.metrics.RecordBooking(string(apperrors.KindOf(err)))
		return nil, s.logFailure("create appointment", actor, err)
	}
	s.metrics.RecordBooking("created")
	s.logger.Info().
		Str("appointment_id", a.ID).
		Str("patient_id", a.PatientID).
		Str("doctor_id", a.DoctorID).
		Str("date", a.Date).
		Str("time_slot", a.TimeSlot).
		Msg("appointment booked")
	return a, nil
}

func (s *Service) createAppointment(ctx context.Context, actor models.Actor, in CreateInput) (*models.Appointment, error) {
	if in.PatientID == "" {
		in.PatientID = actor.ID
	}
	if !CanCreate(actor, in.PatientID) {
		return nil, apperrors.Forbidden("only patients may book appointments, and only for themselves")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	apptType, ok := models.ParseAppointmentType(in.Type)
	if !ok {
		return nil, apperrors.Validation("unknown appointment type %q", in.Type)
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	slot, err := NormalizeTimeSlot(in.TimeSlot)
	if err != nil {
		return nil, err
	}

	doctor, err := s.lookupDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsApproved {
		return nil, apperrors.Validation("doctor %s is not currently accepting appointments", in.DoctorID)
	}

	a := &models.Appointment{
		PatientID: in.PatientID,
		DoctorID:  doctor.DoctorID,
		Date:      date,
		TimeSlot:  slot,
		Type:      apptType,
		Status:    models.StatusPending,
		Symptoms:  strings.TrimSpace(in.Symptoms),
		Notes:     strings.TrimSpace(in.Notes),
	}
	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.Conflict("doctor %s is already booked on %s at %s", a.DoctorID, date, slot)
		}
		return nil, s.storageFault("create appointment", err)
	}
	return a, nil
}

// ListAppointments returns the appointments visible to actor: their own as a
// patient or doctor, everything as an admin.
func (s *Service) ListAppointments(ctx context.Context, actor models.Actor) ([]models.Appointment, error) {
	filter, ok := scopeFor(actor)
	if !ok {
		return []models.Appointment{}, nil
	}
	appointments, err := s.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, s.logFailure("list appointments", actor, s.storageFault("list appointments", err))
	}
	return appointments, nil
}

// GetAppointment returns one appointment if actor may view it.
func (s *Service) GetAppointment(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	a, err := s.viewable(ctx, actor, id)
	if err != nil {
		return nil, s.logFailure("get appointment", actor, err)
	}
	return a, nil
}

// TransitionAppointment moves an appointment along the lifecycle. The actor is
// authorized first, then the move is checked against the transition table.
// Completing with a prescription payload issues the clinical record in the
// same unit of work.
func (s *Service) TransitionAppointment(ctx context.Context, actor models.Actor, id string, in TransitionInput) (*models.Appointment, error) {
	a, err := s.transition(ctx, actor, id, in)
	if err != nil {
		s.metrics.RecordTransition(string(in.Status), string(apperrors.KindOf(err)), false)
		return nil, s.logFailure("transition appointment", actor, err)
	}
	s.metrics.RecordTransition(string(in.Status), "ok", false)
	return a, nil
}

func (s *Service) transition(ctx context.Context, actor models.Actor, id string, in TransitionInput) (*models.Appointment, error) {
	if _, ok := models.ParseAppointmentStatus(string(in.Status)); !ok {
		return nil, apperrors.Validation("unknown appointment status %q", in.Status)
	}
	current, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(actor, current, in.Status) {
		return nil, apperrors.Forbidden("not authorized to change this appointment to %s", in.Status)
	}
	if err := CheckTransition(current.Status, in.Status); err != nil {
		return nil, err
	}

	update := repository.StatusUpdate{
		AppointmentID: current.ID,
		From:          current.Status,
		To:            in.Status,
		Change:        s.change(actor, current.Status, in.Status, false, ""),
	}
	if in.Status == models.StatusCancelled {
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return nil, apperrors.Validation("a cancellation reason is required")
		}
		update.CancellationReason = &reason
		update.Change.Reason = reason
	}
	if in.Prescription != nil {
		if in.Status != models.StatusCompleted {
			return nil, apperrors.Validation("a prescription can only be issued when completing an appointment")
		}
		p, err := newPrescription(current, *in.Prescription)
		if err != nil {
			return nil, err
		}
		update.Prescription = p
	}

	updated, err := s.apply(ctx, update)
	if err != nil {
		return nil, err
	}
	if update.Prescription != nil {
		s.metrics.RecordPrescription()
		s.logger.Info().
			Str("appointment_id", updated.ID).
			Str("prescription_id", update.Prescription.ID).
			Msg("prescription issued")
	}
	s.audit(actor, update)
	return updated, nil
}

// ForceStatus is the audited admin override. It allows any table transition
// and a re-apply of the current status, never leaves a terminal status, still
// requires a reason to cancel, and never issues a prescription.
func (s *Service) ForceStatus(ctx context.Context, actor models.Actor, id string, status models.AppointmentStatus, reason string) (*models.Appointment, error) {
	a, err := s.force(ctx, actor, id, status, reason)
	if err != nil {
		s.metrics.RecordTransition(string(status), string(apperrors.KindOf(err)), true)
		return nil, s.logFailure("force appointment status", actor, err)
	}
	s.metrics.RecordTransition(string(status), "ok", true)
	return a, nil
}

func (s *Service) force(ctx context.Context, actor models.Actor, id string, status models.AppointmentStatus, reason string) (*models.Appointment, error) {
	if !CanForce(actor) {
		return nil, apperrors.Forbidden("only admins may override appointment status")
	}
	if _, ok := models.ParseAppointmentStatus(string(status)); !ok {
		return nil, apperrors.Validation("unknown appointment status %q", status)
	}
	current, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckForcedTransition(current.Status, status); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if status == models.StatusCancelled && reason == "" {
		return nil, apperrors.Validation("a cancellation reason is required")
	}

	update := repository.StatusUpdate{
		AppointmentID: current.ID,
		From:          current.Status,
		To:            status,
		Change:        s.change(actor, current.Status, status, true, reason),
	}
	if status == models.StatusCancelled && current.Status != models.StatusCancelled {
		update.CancellationReason = &reason
	}

	updated, err := s.apply(ctx, update)
	if err != nil {
		return nil, err
	}
	s.audit(actor, update)
	return updated, nil
}

// UpdateDetails edits symptoms and notes while the appointment is not terminal.
func (s *Service) UpdateDetails(ctx context.Context, actor models.Actor, id string, in DetailsInput) (*models.Appointment, error) {
	a, err := s.updateDetails(ctx, actor, id, in)
	if err != nil {
		return nil, s.logFailure("update appointment details", actor, err)
	}
	return a, nil
}

func (s *Service) updateDetails(ctx context.Context, actor models.Actor, id string, in DetailsInput) (*models.Appointment, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	current, err := s.viewable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperrors.InvalidTransition("appointment is %s and can no longer be edited", current.Status)
	}

	update := repository.DetailsUpdate{}
	if in.Symptoms != nil {
		v := strings.TrimSpace(*in.Symptoms)
		update.Symptoms = &v
	}
	if in.Notes != nil {
		v := strings.TrimSpace(*in.Notes)
		update.Notes = &v
	}

	updated, err := s.repo.UpdateDetails(ctx, current.ID, update)
	switch {
	case errors.Is(err, repository.ErrTerminal):
		return nil, apperrors.InvalidTransition("appointment is %s and can no longer be edited", updated.Status)
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("appointment %s not found", id)
	case err != nil:
		return nil, s.storageFault("update appointment details", err)
	}
	return updated, nil
}

// Stats counts the appointments visible to actor by status.
func (s *Service) Stats(ctx context.Context, actor models.Actor) (Stats, error) {
	filter, ok := scopeFor(actor)
	if !ok {
		return Stats{}, nil
	}
	counts, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		return Stats{}, s.logFailure("appointment stats", actor, s.storageFault("count appointments", err))
	}
	stats := Stats{
		Pending:   counts[models.StatusPending],
		Confirmed: counts[models.StatusConfirmed],
		Completed: counts[models.StatusCompleted],
		Cancelled: counts[models.StatusCancelled],
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Completed + stats.Cancelled
	return stats, nil
}

// History returns the status audit trail of an appointment, oldest first.
func (s *Service) History(ctx context.Context, actor models.Actor, id string) ([]models.StatusChange, error) {
	a, err := s.viewable(ctx, actor, id)
	if err != nil {
		return nil, s.logFailure("appointment history", actor, err)
	}
	changes, err := s.repo.ListStatusChanges(ctx, a.ID)
	if err != nil {
		return nil, s.logFailure("appointment history", actor, s.storageFault("list status changes", err))
	}
	return changes, nil
}

// ListPrescriptions returns the prescriptions visible to actor, newest first.
func (s *Service) ListPrescriptions(ctx context.Context, actor models.Actor) ([]models.Prescription, error) {
	scope, ok := scopeFor(actor)
	if !ok {
		return []models.Prescription{}, nil
	}
	prescriptions, err := s.repo.ListPrescriptions(ctx, repository.PrescriptionFilter{
		PatientID: scope.PatientID,
		DoctorID:  scope.DoctorID,
	})
	if err != nil {
		return nil, s.logFailure("list prescriptions", actor, s.storageFault("list prescriptions", err))
	}
	return prescriptions, nil
}

// GetPrescription returns one prescription to its patient, its doctor or an admin.
func (s *Service) GetPrescription(ctx context.Context, actor models.Actor, id string) (*models.Prescription, error) {
	p, err := s.repo.GetPrescription(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.logFailure("get prescription", actor, apperrors.NotFound("prescription %s not found", id))
	}
	if err != nil {
		return nil, s.logFailure("get prescription", actor, s.storageFault("get prescription", err))
	}
	if !CanViewPrescription(actor, p) {
		return nil, s.logFailure("get prescription", actor, apperrors.Forbidden("not authorized to view this prescription"))
	}
	return p, nil
}

// apply runs a compare-and-swap status update. A lost race surfaces as an
// InvalidTransition naming the status the appointment actually holds.
func (s *Service) apply(ctx context.Context, update repository.StatusUpdate) (*models.Appointment, error) {
	updated, err := s.repo.UpdateStatus(ctx, update)
	switch {
	case errors.Is(err, repository.ErrStatusMismatch):
		return nil, apperrors.InvalidTransition("appointment is now %s; cannot change status to %s", updated.Status, update.To)
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("appointment %s not found", update.AppointmentID)
	case err != nil:
		return nil, s.storageFault("update appointment status", err)
	}
	return updated, nil
}

func (s *Service) viewable(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	a, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, a) {
		return nil, apperrors.Forbidden("not authorized to view this appointment")
	}
	return a, nil
}

func (s *Service) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, s.storageFault("get appointment", err)
	}
	return a, nil
}

func (s *Service) lookupDoctor(ctx context.Context, doctorID string) (directory.Entry, error) {
	entry, err := s.directory.Lookup(ctx, doctorID)
	if errors.Is(err, directory.ErrNotFound) {
		return directory.Entry{}, apperrors.NotFound("doctor %s not found", doctorID)
	}
	if err != nil {
		return directory.Entry{}, s.directoryFault(err)
	}
	return entry, nil
}

func (s *Service) change(actor models.Actor, from, to models.AppointmentStatus, forced bool, reason string) models.StatusChange {
	return models.StatusChange{
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Forced:     forced,
		Reason:     reason,
	}
}

func (s *Service) audit(actor models.Actor, update repository.StatusUpdate) {
	s.logger.Info().
		Bool("audit", true).
		Str("appointment_id", update.AppointmentID).
		Str("actor_id", actor.ID).
		Str("actor_role", string(actor.Role)).
		Str("from", string(update.From)).
		Str("to", string(update.To)).
		Bool("forced", update.Change.Forced).
		Msg("appointment status changed")
}

func (s *Service) storageFault(op string, err error) error {
	return apperrors.Unavailable("storage unavailable: "+op, err)
}

func (s *Service) directoryFault(err error) error {
	return apperrors.Unavailable("doctor directory unavailable", err)
}

// logFailure logs err at WARN for domain errors and ERROR for faults, and
// returns it unchanged.
func (s *Service) logFailure(op string, actor models.Actor, err error) error {
	evt := s.logger.Warn()
	if apperrors.KindOf(err) == apperrors.KindUnavailable {
		evt = s.logger.Error()
	}
	evt.Err(err).
		Str("op", op).
		Str("actor_id", actor.ID).
		Str("actor_role", string(actor.Role)).
		Str("kind", string(apperrors.KindOf(err))).
		Msg("operation failed")
	return err
}

// scopeFor returns the storage filter limiting an actor to their own records.
// ok is false when the actor can see nothing.
func scopeFor(actor models.Actor) (repository.AppointmentFilter, bool) {
	switch actor.Role {
	case models.RoleAdmin:
		return repository.AppointmentFilter{}, true
	case models.RolePatient:
		if actor.ID == "" {
			return repository.AppointmentFilter{}, false
		}
		return repository.AppointmentFilter{PatientID: actor.ID}, true
	case models.RoleDoctor:
		if actor.DoctorID == "" {
			return repository.AppointmentFilter{}, false
		}
		return repository.AppointmentFilter{DoctorID: actor.DoctorID}, true
	}
	return repository.AppointmentFilter{}, false
}
