package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/scheduling"
	"healthcare-scheduling-server/internal/utils"
)

// AdminHandler exposes operational overrides.
type AdminHandler struct {
	Service *scheduling.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *scheduling.Service) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ForceStatusRequest is the body of an admin status override.
type ForceStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// ForceAppointmentStatus applies an audited status override.
func (h *AdminHandler) ForceAppointmentStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req ForceStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appointment, err := h.Service.ForceStatus(c.Request.Context(), actor, c.Param("id"), models.AppointmentStatus(req.Status), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status overridden", appointment)
}
