package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

// ListAssignments calls GET /assignments.
func (c *Client) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	list := []models.Assignment{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/assignments", fallback: "Failed to fetch assignments"}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetAssignment calls GET /assignments/{id}.
func (c *Client) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var a models.Assignment
	if err := c.do(ctx, request{method: http.MethodGet, path: "/assignments/" + pathEscape(id), fallback: "Failed to fetch assignment details"}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment calls POST /assignments. A bare YYYY-MM-DD deadline is sent as the end of
// that day.
func (c *Client) CreateAssignment(ctx context.Context, in models.AssignmentInput) (*models.Assignment, error) {
	in.Deadline = dates.EndOfDay(in.Deadline)
	var a models.Assignment
	if err := c.do(ctx, request{method: http.MethodPost, path: "/assignments", body: in, fallback: "Failed to create assignment"}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAssignment calls PUT /assignments/{id} with the same deadline normalisation as create.
func (c *Client) UpdateAssignment(ctx context.Context, id string, in models.AssignmentInput) (*models.Assignment, error) {
	in.Deadline = dates.EndOfDay(in.Deadline)
	var a models.Assignment
	if err := c.do(ctx, request{method: http.MethodPut, path: "/assignments/" + pathEscape(id), body: in, fallback: "Failed to update assignment"}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAssignment calls DELETE /assignments/{id}.
func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/assignments/" + pathEscape(id), fallback: "Failed to delete assignment"}, nil)
}

// SubmitAssignment calls POST /assignments/{id}/submit.
func (c *Client) SubmitAssignment(ctx context.Context, id string, sub models.Submission) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/assignments/" + pathEscape(id) + "/submit", body: sub, fallback: "Failed to submit assignment"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadFile calls POST /assignments/{id}/files with a multipart "file" part.
func (c *Client) UploadFile(ctx context.Context, assignmentID, filename string, content io.Reader) (*models.FileInfo, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to upload file")
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Failed to read uploaded file")
	}
	if err := w.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to upload file")
	}

	var info models.FileInfo
	err = c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/assignments/" + pathEscape(assignmentID) + "/files",
		raw:      &buf,
		rawType:  w.FormDataContentType(),
		fallback: "Failed to upload file",
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Download is a streamed file body. The caller must close Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Disposition   string
}

// DownloadFile calls GET /files/{id} and streams the body back.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*Download, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: "/files/" + pathEscape(fileID), fallback: "Failed to download file"})
	if err != nil {
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", fileID)
	}
	return &Download{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Disposition:   disposition,
	}, nil
}

// DeleteFile calls DELETE /assignments/{id}/files/{fileId}.
func (c *Client) DeleteFile(ctx context.Context, assignmentID, fileID string) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/assignments/" + pathEscape(assignmentID) + "/files/" + pathEscape(fileID),
		fallback: "Failed to delete file",
	}, nil)
}
