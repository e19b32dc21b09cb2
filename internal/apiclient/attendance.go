package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

const malformedAttendance = "malformed attendance payload"

// DecodeAttendance parses an attendance response. The backend answers with a bare array, an
// object wrapping a "results" array, or a single record; null and empty bodies mean no
// records. Anything else is rejected as VALIDATION_ERROR.
func DecodeAttendance(raw []byte) ([]models.AttendanceRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.AttendanceRecord{}, nil
	}

	switch raw[0] {
	case '[':
		return decodeAttendanceArray(raw)
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, malformed(err)
		}
		if results, ok := probe["results"]; ok {
			results = bytes.TrimSpace(results)
			if len(results) == 0 || results[0] != '[' {
				return nil, appErrors.Clone(appErrors.ErrValidation, malformedAttendance)
			}
			return decodeAttendanceArray(results)
		}
		var record models.AttendanceRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, malformed(err)
		}
		return []models.AttendanceRecord{normalizeRecord(record)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, malformedAttendance)
	}
}

func decodeAttendanceArray(raw []byte) ([]models.AttendanceRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed(err)
	}
	records := make([]models.AttendanceRecord, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if bytes.Equal(item, []byte("null")) {
			continue
		}
		if len(item) == 0 || item[0] != '{' {
			return nil, appErrors.Clone(appErrors.ErrValidation, malformedAttendance)
		}
		var record models.AttendanceRecord
		if err := json.Unmarshal(item, &record); err != nil {
			return nil, malformed(err)
		}
		records = append(records, normalizeRecord(record))
	}
	return records, nil
}

func normalizeRecord(r models.AttendanceRecord) models.AttendanceRecord {
	r.Status = models.NormalizeStatus(string(r.Status))
	r.Date = dates.DatePart(r.Date)
	return r
}

func malformed(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, malformedAttendance)
}

// ListAttendance calls GET /attendance.
func (c *Client) ListAttendance(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRecord, error) {
	query := url.Values{}
	setIf(query, "schedule_id", q.ScheduleID)
	setIf(query, "student_id", q.StudentID)
	setIf(query, "date_from", q.DateFrom)
	setIf(query, "date_to", q.DateTo)
	return c.attendance(ctx, query, "Failed to fetch attendance records")
}

// AttendanceBySchedule calls GET /attendance?schedule_id=.
func (c *Client) AttendanceBySchedule(ctx context.Context, scheduleID string) ([]models.AttendanceRecord, error) {
	return c.attendance(ctx, url.Values{"schedule_id": {scheduleID}}, "Failed to fetch attendance for schedule")
}

func (c *Client) attendance(ctx context.Context, query url.Values, fallback string) ([]models.AttendanceRecord, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/attendance", query: query, fallback: fallback}, &raw); err != nil {
		return nil, err
	}
	return DecodeAttendance(raw)
}

// AttendanceStats calls GET /attendance/stats, for studentID when given.
func (c *Client) AttendanceStats(ctx context.Context, studentID string) (*models.AttendanceStats, error) {
	query := url.Values{}
	setIf(query, "student_id", studentID)
	var stats models.AttendanceStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/attendance/stats", query: query, fallback: "Failed to fetch attendance statistics"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateAttendance calls POST /attendance.
func (c *Client) CreateAttendance(ctx context.Context, in models.AttendanceInput) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := c.do(ctx, request{method: http.MethodPost, path: "/attendance", body: in, fallback: "Failed to create attendance record"}, &record); err != nil {
		return nil, err
	}
	record = normalizeRecord(record)
	return &record, nil
}

// UpdateAttendance calls PUT /attendance/{id}.
func (c *Client) UpdateAttendance(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/attendance/" + pathEscape(id),
		body:     models.AttendanceStatusUpdate{Status: status},
		fallback: "Failed to update attendance record",
	}, &record)
	if err != nil {
		return nil, err
	}
	record = normalizeRecord(record)
	return &record, nil
}

// BulkResult is the backend acknowledgement of a bulk save.
type BulkResult struct {
	Message string `json:"message"`
}

// BulkAttendance applies a student -> status mapping for one schedule in a single request.
func (c *Client) BulkAttendance(ctx context.Context, scheduleID string, statuses map[string]models.AttendanceStatus) (*BulkResult, error) {
	var result BulkResult
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/attendance/bulk",
		body:     models.BulkAttendance{ScheduleID: scheduleID, AttendanceData: statuses},
		fallback: "Failed to process bulk attendance",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StudentsBySchedule calls GET /attendance/students_by_schedule/{scheduleId}.
func (c *Client) StudentsBySchedule(ctx context.Context, scheduleID string) ([]models.RosterRow, error) {
	rows := []models.RosterRow{}
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/attendance/students_by_schedule/" + pathEscape(scheduleID),
		fallback: "Failed to fetch students for schedule",
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func setIf(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
