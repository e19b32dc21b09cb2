package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var attendanceExportHeaders = []string{"Date", "Subject", "Time", "Student", "Status"}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

type attendanceRecords interface {
	Records(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRecord, error)
}

// ExportFile is a rendered document ready to be sent.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders the current user's attendance as a downloadable document.
type ExportService struct {
	records   attendanceRecords
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService wires the CSV and PDF exporters.
func NewExportService(records attendanceRecords, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		records: records,
		renderers: map[string]renderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Attendance exports the records matching q with a statistics summary.
func (s *ExportService) Attendance(ctx context.Context, format string, q models.AttendanceQuery) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	records, err := s.records.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := r.Render(attendanceDataset(records))
	if err != nil {
		s.logger.Error("failed to render attendance export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Name:        fmt.Sprintf("attendance_%s.%s", s.now().Format("20060102"), r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func attendanceDataset(records []models.AttendanceRecord) export.Dataset {
	stats := models.ComputeAttendanceStats(records)
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		date, ok := dates.Format(rec.Date)
		if !ok {
			date = rec.Date
		}
		slot := ""
		if rec.StartTime != "" {
			slot = dates.ShortTime(rec.StartTime) + "-" + dates.ShortTime(rec.EndTime)
		}
		rows = append(rows, map[string]string{
			"Date":    date,
			"Subject": rec.Subject,
			"Time":    slot,
			"Student": rec.StudentName,
			"Status":  string(rec.Status),
		})
	}
	return export.Dataset{
		Title:   "Attendance",
		Headers: attendanceExportHeaders,
		Rows:    rows,
		Summary: []export.SummaryLine{
			{Label: "Total classes", Value: fmt.Sprintf("%d", stats.TotalClasses)},
			{Label: "Present", Value: fmt.Sprintf("%d", stats.PresentCount)},
			{Label: "Absent", Value: fmt.Sprintf("%d", stats.AbsentCount)},
			{Label: "Late", Value: fmt.Sprintf("%d", stats.LateCount)},
			{Label: "Excused", Value: fmt.Sprintf("%d", stats.ExcusedCount)},
			{Label: "Attendance", Value: fmt.Sprintf("%.1f%%", stats.AttendancePercentage)},
			{Label: "Missed hours", Value: fmt.Sprintf("%.0f", stats.MissedHours)},
		},
	}
}
