package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-scheduling-server/internal/scheduling"
	"healthcare-scheduling-server/internal/utils"
)

// PrescriptionHandler serves the clinical records issued at completion.
type PrescriptionHandler struct {
	Service *scheduling.Service
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(svc *scheduling.Service) *PrescriptionHandler {
	return &PrescriptionHandler{Service: svc}
}

// GetPrescriptions lists the caller's prescriptions, newest first.
func (h *PrescriptionHandler) GetPrescriptions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	prescriptions, err := h.Service.ListPrescriptions(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Prescriptions retrieved successfully", prescriptions)
}

// GetPrescriptionByID returns one prescription.
func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	prescription, err := h.Service.GetPrescription(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Prescription retrieved successfully", prescription)
}
