package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type stubRecords struct {
	records []models.AttendanceRecord
	err     error
}

func (s *stubRecords) Records(context.Context, models.AttendanceQuery) ([]models.AttendanceRecord, error) {
	return s.records, s.err
}

func newExportFixture(records *stubRecords) *ExportService {
	svc := NewExportService(records, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportAttendanceCSV(t *testing.T) {
	svc := newExportFixture(&stubRecords{records: []models.AttendanceRecord{
		{Date: "2024-03-04", Subject: "Maths", StartTime: "09:00:00", EndTime: "10:30:00", StudentName: "Sam", Status: models.StatusPresent},
		{Date: "2024-03-05", Subject: "Physics", StudentName: "Sam", Status: models.StatusAbsent},
	}})

	file, err := svc.Attendance(context.Background(), "", models.AttendanceQuery{})
	require.NoError(t, err)
	assert.Equal(t, "attendance_20240306.csv", file.Name)
	assert.Contains(t, file.ContentType, "text/csv")

	body := string(file.Data)
	assert.Contains(t, body, "Total classes,2")
	assert.Contains(t, body, "Missed hours,2")
	assert.Contains(t, body, "Attendance,50.0%")
	assert.Contains(t, body, "04.03.2024,Maths,09:00-10:30,Sam,present")
	assert.Contains(t, body, "05.03.2024,Physics,,Sam,absent")
	assert.True(t, strings.Index(body, "Date,Subject") > strings.Index(body, "Total classes"))
}

func TestExportAttendancePDF(t *testing.T) {
	svc := newExportFixture(&stubRecords{records: []models.AttendanceRecord{{Date: "2024-03-04", Status: models.StatusLate}}})

	file, err := svc.Attendance(context.Background(), "PDF", models.AttendanceQuery{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
	assert.True(t, strings.HasSuffix(file.Name, ".pdf"))
}

func TestExportAttendanceRejectsUnknownFormat(t *testing.T) {
	records := &stubRecords{}
	svc := newExportFixture(records)
	_, err := svc.Attendance(context.Background(), "xlsx", models.AttendanceQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportAttendancePropagatesBackendError(t *testing.T) {
	svc := newExportFixture(&stubRecords{err: appErrors.ErrNetwork})
	_, err := svc.Attendance(context.Background(), "csv", models.AttendanceQuery{})
	assert.ErrorIs(t, err, appErrors.ErrNetwork)
}
