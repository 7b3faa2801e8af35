package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-scheduling-server/internal/middleware"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/scheduling"
	"healthcare-scheduling-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Service *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID string `json:"patientId" validate:"omitempty,max=36"`
	DoctorID  string `json:"doctorId" validate:"required,max=36"`
	Date      string `json:"date" validate:"required"`
	TimeSlot  string `json:"timeSlot" validate:"required,max=20"`
	Type      string `json:"type" validate:"required"`
	Symptoms  string `json:"symptoms" validate:"max=2000"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// UpdateStatusRequest is the generic transition request.
type UpdateStatusRequest struct {
	Status             string                        `json:"status" validate:"required"`
	CancellationReason string                        `json:"cancellationReason" validate:"max=500"`
	Prescription       *scheduling.PrescriptionInput `json:"prescription"`
}

// CancelAppointmentRequest carries the mandatory cancellation reason.
type CancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason" validate:"max=500"`
}

// CompleteAppointmentRequest optionally carries the prescription to issue.
type CompleteAppointmentRequest struct {
	Prescription *scheduling.PrescriptionInput `json:"prescription"`
}

// UpdateDetailsRequest edits symptoms and notes.
type UpdateDetailsRequest struct {
	Symptoms *string `json:"symptoms" validate:"omitempty,max=2000"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// CreateAppointment books a slot for the authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.CreateAppointment(c.Request.Context(), actor, scheduling.CreateInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Type:      req.Type,
		Symptoms:  req.Symptoms,
		Notes:     req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser lists the appointments visible to the caller.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	appointments, err := h.Service.ListAppointments(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appointments)
}

// GetAppointmentStats counts the caller's appointments by status.
func (h *AppointmentHandler) GetAppointmentStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.Service.Stats(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment statistics retrieved successfully", stats)
}

// GetAppointmentByID returns one appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	appointment, err := h.Service.GetAppointment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appointment)
}

// UpdateAppointmentDetails edits symptoms and notes of a non-terminal appointment.
func (h *AppointmentHandler) UpdateAppointmentDetails(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appointment, err := h.Service.UpdateDetails(c.Request.Context(), actor, c.Param("id"), scheduling.DetailsInput{
		Symptoms: req.Symptoms,
		Notes:    req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", appointment)
}

// GetAppointmentHistory returns the status audit trail.
func (h *AppointmentHandler) GetAppointmentHistory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	history, err := h.Service.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment history retrieved successfully", history)
}

// UpdateAppointmentStatus moves an appointment to the requested status.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.transition(c, scheduling.TransitionInput{
		Status:       models.AppointmentStatus(req.Status),
		Reason:       req.CancellationReason,
		Prescription: req.Prescription,
	})
}

// CancelAppointment cancels an appointment with a reason.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var req CancelAppointmentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, scheduling.TransitionInput{
		Status: models.StatusCancelled,
		Reason: req.CancellationReason,
	})
}

// ConfirmAppointment confirms a pending appointment.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	h.transition(c, scheduling.TransitionInput{Status: models.StatusConfirmed})
}

// CompleteAppointment completes a confirmed appointment, issuing a
// prescription when one is supplied.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	var req CompleteAppointmentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, scheduling.TransitionInput{
		Status:       models.StatusCompleted,
		Prescription: req.Prescription,
	})
}

func (h *AppointmentHandler) transition(c *gin.Context, in scheduling.TransitionInput) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	appointment, err := h.Service.TransitionAppointment(c.Request.Context(), actor, c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// actorOrAbort reads the actor set by AuthMiddleware.
func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not found in token")
		c.Abort()
		return models.Actor{}, false
	}
	return actor, true
}

// bindOptionalJSON binds a body when one is present. An empty body leaves obj
// at its zero value.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return utils.BindAndValidate(c, obj)
}
