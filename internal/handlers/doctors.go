package handlers

import (
	"github.com/gin-gonic/gin"

	"healthcare-scheduling-server/internal/scheduling"
	"healthcare-scheduling-server/internal/utils"
)

// DoctorHandler answers slot availability questions.
type DoctorHandler struct {
	Service *scheduling.Service
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(svc *scheduling.Service) *DoctorHandler {
	return &DoctorHandler{Service: svc}
}

// AvailabilityQuery holds the slot being asked about.
type AvailabilityQuery struct {
	Date     string `form:"date" validate:"required"`
	TimeSlot string `form:"timeSlot" validate:"required"`
}

// GetAvailability reports whether the doctor's slot is free.
func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	if err := utils.Validate(q); err != nil {
		utils.BadRequest(c, "Validation failed: "+utils.FormatValidationError(err))
		return
	}

	available, err := h.Service.IsAvailable(c.Request.Context(), c.Param("id"), q.Date, q.TimeSlot)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability retrieved successfully", gin.H{
		"doctorId":  c.Param("id"),
		"date":      q.Date,
		"timeSlot":  q.TimeSlot,
		"available": available,
	})
}
