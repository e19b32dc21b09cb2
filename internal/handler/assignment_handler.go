package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context) (*dto.AssignmentsPage, error)
	Get(ctx context.Context, id string) (*dto.AssignmentDetail, error)
	Create(ctx context.Context, in models.AssignmentInput) (*dto.AssignmentItem, error)
	Update(ctx context.Context, id string, in models.AssignmentInput) (*dto.AssignmentItem, error)
	Delete(ctx context.Context, id string, confirm bool) error
	Submit(ctx context.Context, id string, sub models.Submission) (map[string]interface{}, error)
	UploadFile(ctx context.Context, id, filename string, content io.Reader) (*models.FileInfo, error)
	DownloadFile(ctx context.Context, fileID string) (*apiclient.Download, error)
	DeleteFile(ctx context.Context, id, fileID string, confirm bool) error
}

// AssignmentHandler serves the assignment views and file transfers.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// List godoc
// @Summary Assignments visible to the current user
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Get godoc
// @Summary Assignment detail
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Publish an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body models.AssignmentInput true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	in, ok := bindAssignment(c)
	if !ok {
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
// @Summary Edit an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.AssignmentInput true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	in, ok := bindAssignment(c)
	if !ok {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// bindAssignment accepts the legacy due_date form field as the deadline.
func bindAssignment(c *gin.Context) (models.AssignmentInput, bool) {
	var in models.AssignmentInput
	if err := c.ShouldBind(&in); err != nil {
		response.Error(c, bindError(err, "invalid assignment payload"))
		return in, false
	}
	if in.Deadline == "" {
		in.Deadline = c.PostForm("due_date")
	}
	return in, true
}

// Delete godoc
// @Summary Delete an assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		renderError(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit work for an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.Submission true "Submission"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submit [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBind(&sub); err != nil {
		response.Error(c, bindError(err, "invalid submission payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"), sub)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Upload godoc
// @Summary Attach a file to an assignment
// @Tags Assignments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Assignment ID"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Router /assignments/{id}/files [post]
func (h *AssignmentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, bindError(err, "cannot read uploaded file"))
		return
	}
	defer file.Close()

	info, err := h.service.UploadFile(c.Request.Context(), c.Param("id"), header.Filename, file)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Created(c, info)
}

// DeleteFile godoc
// @Summary Remove a file from an assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Param fileId path string true "File ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Router /assignments/{id}/files/{fileId} [delete]
func (h *AssignmentHandler) DeleteFile(c *gin.Context) {
	if err := h.service.DeleteFile(c.Request.Context(), c.Param("id"), c.Param("fileId"), confirmed(c)); err != nil {
		renderError(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Download an assignment file
// @Tags Assignments
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Router /files/{id} [get]
func (h *AssignmentHandler) Download(c *gin.Context) {
	download, err := h.service.DownloadFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	defer download.Body.Close()

	headers := map[string]string{}
	if download.Disposition != "" {
		headers["Content-Disposition"] = download.Disposition
	}
	contentType := download.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	length := download.ContentLength
	if length <= 0 {
		length = -1
	}
	c.DataFromReader(http.StatusOK, length, contentType, download.Body, headers)
}
