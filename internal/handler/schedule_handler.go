package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/response"
)

type scheduleService interface {
	Page(ctx context.Context, week, day string) (*dto.SchedulePage, error)
	Create(ctx context.Context, in models.ScheduleInput) (*dto.ScheduleItem, error)
	Update(ctx context.Context, id string, in models.ScheduleInput) (*dto.ScheduleItem, error)
	Delete(ctx context.Context, id string, confirm bool) error
}

// ScheduleHandler serves the weekly schedule.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Page godoc
// @Summary Schedule view for one day of the current or next week
// @Tags Schedule
// @Produce json
// @Param week query string false "current or next"
// @Param day query string false "monday..saturday"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Page(c *gin.Context) {
	page, err := h.service.Page(c.Request.Context(), c.Query("week"), c.Query("day"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Create godoc
// @Summary Add a class
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body models.ScheduleInput true "Class"
// @Success 201 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var in models.ScheduleInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit a class
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body models.ScheduleInput true "Class"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var in models.ScheduleInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a class
// @Tags Schedule
// @Param id path string true "Schedule ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		renderError(c, err)
		return
	}
	response.NoContent(c)
}
