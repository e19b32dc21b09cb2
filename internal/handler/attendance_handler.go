package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/service"
	"github.com/noah-isme/sma-portal/pkg/response"
)

type attendanceService interface {
	Page(ctx context.Context, view service.AttendanceView) (*dto.AttendancePage, error)
	Roster(ctx context.Context, scheduleID, groupID string) (*dto.Roster, error)
	SaveBulk(ctx context.Context, scheduleID, groupID string, req dto.BulkAttendanceRequest) (*dto.BulkAttendanceResult, error)
	Create(ctx context.Context, in models.AttendanceInput) (*models.AttendanceRecord, error)
	Update(ctx context.Context, id string, in models.AttendanceStatusUpdate) (*models.AttendanceRecord, error)
	Stats(ctx context.Context, studentID string) (*models.AttendanceStats, error)
}

type exportService interface {
	Attendance(ctx context.Context, format string, q models.AttendanceQuery) (*service.ExportFile, error)
}

// AttendanceHandler serves the attendance views.
type AttendanceHandler struct {
	service attendanceService
	export  exportService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(service attendanceService, export exportService) *AttendanceHandler {
	return &AttendanceHandler{service: service, export: export}
}

// Page godoc
// @Summary Attendance view for the current role
// @Tags Attendance
// @Produce json
// @Param tab query string false "today, teacher or student"
// @Param group_id query string false "Group filter for the teacher tab"
// @Param schedule_id query string false "Class whose roster to load"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Page(c *gin.Context) {
	page, err := h.service.Page(c.Request.Context(), service.AttendanceView{
		Tab:        c.Query("tab"),
		GroupID:    c.Query("group_id"),
		ScheduleID: c.Query("schedule_id"),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Stats godoc
// @Summary Attendance statistics
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Student (teachers only)"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Query("student_id"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Export godoc
// @Summary Download attendance records
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	file, err := h.export.Attendance(c.Request.Context(), c.Query("format"), models.AttendanceQuery{
		StudentID: c.Query("student_id"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Create godoc
// @Summary Record one student's attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.AttendanceInput true "Record"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var in models.AttendanceInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Change an attendance status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body models.AttendanceStatusUpdate true "Status"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var in models.AttendanceStatusUpdate
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	record, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Roster godoc
// @Summary Students to mark for a class
// @Tags Attendance
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Param group_id query string false "Group of the class, used for the last fallback"
// @Success 200 {object} response.Envelope
// @Router /attendance/schedules/{scheduleId}/students [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context(), c.Param("scheduleId"), c.Query("group_id"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// SaveBulk godoc
// @Summary Save the attendance of a whole class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Param payload body dto.BulkAttendanceRequest true "student_id -> status"
// @Success 200 {object} response.Envelope
// @Router /attendance/schedules/{scheduleId} [post]
func (h *AttendanceHandler) SaveBulk(c *gin.Context) {
	req, err := bindBulk(c)
	if err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	result, err := h.service.SaveBulk(c.Request.Context(), c.Param("scheduleId"), c.Query("group_id"), req)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// bindBulk reads either a JSON body or a roster form whose fields are status[<student_id>].
func bindBulk(c *gin.Context) (dto.BulkAttendanceRequest, error) {
	var req dto.BulkAttendanceRequest
	if isFormPost(c) {
		statuses, ok := c.GetPostFormMap("status")
		if ok {
			req.AttendanceData = statuses
		}
		return req, nil
	}
	err := c.ShouldBindJSON(&req)
	return req, err
}
