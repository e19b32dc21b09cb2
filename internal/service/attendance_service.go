package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type attendanceBackend interface {
	ListAttendance(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRecord, error)
	AttendanceBySchedule(ctx context.Context, scheduleID string) ([]models.AttendanceRecord, error)
	AttendanceStats(ctx context.Context, studentID string) (*models.AttendanceStats, error)
	CreateAttendance(ctx context.Context, in models.AttendanceInput) (*models.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, error)
	BulkAttendance(ctx context.Context, scheduleID string, statuses map[string]models.AttendanceStatus) (*apiclient.BulkResult, error)
	StudentsBySchedule(ctx context.Context, scheduleID string) ([]models.RosterRow, error)
}

type rosterGroups interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GroupStudents(ctx context.Context, groupID string) ([]models.GroupStudent, error)
}

type attendanceSchedule interface {
	ListSchedule(ctx context.Context, q models.ScheduleQuery) ([]models.ScheduleEntry, error)
	ScheduleToday(ctx context.Context) ([]models.ScheduleEntry, error)
}

// AttendanceView selects what GET /attendance renders.
type AttendanceView struct {
	Tab        string
	GroupID    string
	ScheduleID string
}

// AttendanceService builds the attendance views and marks attendance.
type AttendanceService struct {
	backend   attendanceBackend
	groups    rosterGroups
	schedule  attendanceSchedule
	session   currentUser
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(backend attendanceBackend, groups rosterGroups, schedule attendanceSchedule, session currentUser, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		backend:   backend,
		groups:    groups,
		schedule:  schedule,
		session:   session,
		validator: validate,
		logger:    logger,
	}
}

// Page renders the attendance view for the current role. Secondary loads that fail are
// reported as warnings so the rest of the page still renders; auth failures are returned.
func (s *AttendanceService) Page(ctx context.Context, view AttendanceView) (*dto.AttendancePage, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	caps := CapabilitiesFor(user.Role)

	tab := strings.ToLower(strings.TrimSpace(view.Tab))
	if tab == "" {
		tab = caps.DefaultAttendanceTab
	}
	if !containsTab(caps.AttendanceTabs, tab) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "attendance tab not available for this role")
	}

	page := &dto.AttendancePage{ActiveTab: tab, Capabilities: caps}
	var err error
	switch tab {
	case dto.TabStudent:
		err = s.fillStudent(ctx, page)
	case dto.TabToday:
		err = s.fillToday(ctx, page)
	case dto.TabTeacher:
		err = s.fillTeacher(ctx, page, view)
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *AttendanceService) fillStudent(ctx context.Context, page *dto.AttendancePage) error {
	records, err := s.backend.ListAttendance(ctx, models.AttendanceQuery{})
	if err != nil {
		if appErrors.IsAuth(err) {
			return err
		}
		page.Warnings = append(page.Warnings, "Failed to load attendance records: "+appErrors.FromError(err).Message)
		records = []models.AttendanceRecord{}
	}
	page.Records = records

	stats, err := s.backend.AttendanceStats(ctx, "")
	if err != nil {
		if appErrors.IsAuth(err) {
			return err
		}
		s.logger.Warn("attendance stats unavailable, computing locally", zap.Error(err))
		local := models.ComputeAttendanceStats(records)
		stats = &local
	}
	page.Stats = stats
	return nil
}

func (s *AttendanceService) fillToday(ctx context.Context, page *dto.AttendancePage) error {
	today, err := s.schedule.ScheduleToday(ctx)
	if err != nil {
		if appErrors.IsAuth(err) {
			return err
		}
		s.logger.Warn("failed to load today's schedule", zap.Error(err))
		page.Warnings = append(page.Warnings, "Failed to load today's schedule")
		today = nil
	}
	page.TodaySchedule = DecorateSchedule(today)
	return nil
}

func (s *AttendanceService) fillTeacher(ctx context.Context, page *dto.AttendancePage, view AttendanceView) error {
	entries, err := s.schedule.ListSchedule(ctx, models.ScheduleQuery{})
	if err != nil {
		return err
	}
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		if appErrors.IsAuth(err) {
			return err
		}
		page.Warnings = append(page.Warnings, "Failed to load groups")
		groups = []models.Group{}
	}
	page.Groups = groups
	page.SelectedGroup = view.GroupID
	page.Schedule = DecorateSchedule(FilterScheduleByGroup(entries, view.GroupID))

	if view.ScheduleID == "" {
		return nil
	}
	page.SelectedSlot = view.ScheduleID
	groupID := view.GroupID
	for _, e := range entries {
		if e.ID == view.ScheduleID {
			groupID = e.GroupID
			break
		}
	}
	roster, err := s.Roster(ctx, view.ScheduleID, groupID)
	if err != nil {
		if appErrors.IsAuth(err) {
			return err
		}
		page.Warnings = append(page.Warnings, appErrors.FromError(err).Message)
		return nil
	}
	page.Roster = roster.Students
	return nil
}

// Roster returns the students to mark for a class. It tries students_by_schedule, then the
// existing attendance of the class, then the group list with everyone present.
func (s *AttendanceService) Roster(ctx context.Context, scheduleID, groupID string) (*dto.Roster, error) {
	if err := s.requireMarker(ctx); err != nil {
		return nil, err
	}

	rows, err := s.backend.StudentsBySchedule(ctx, scheduleID)
	if err == nil {
		return &dto.Roster{ScheduleID: scheduleID, Source: dto.RosterFromSchedule, Students: rosterFromRows(scheduleID, rows)}, nil
	}
	if appErrors.IsAuth(err) {
		return nil, err
	}
	s.logger.Warn("students_by_schedule failed, trying attendance", zap.String("schedule_id", scheduleID), zap.Error(err))

	records, err := s.backend.AttendanceBySchedule(ctx, scheduleID)
	if err != nil {
		if appErrors.IsAuth(err) {
			return nil, err
		}
		s.logger.Warn("attendance by schedule failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, appErrors.Clone(appErrors.FromError(err), "Failed to load student attendance for the class")
	}
	if len(records) > 0 {
		return &dto.Roster{ScheduleID: scheduleID, Source: dto.RosterFromAttendance, Students: rosterFromRecords(records)}, nil
	}

	if groupID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group is required to build the roster")
	}
	students, err := s.groups.GroupStudents(ctx, groupID)
	if err != nil {
		if appErrors.IsAuth(err) {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.FromError(err), "Failed to load the student list for the class")
	}
	roster := make([]models.StudentAttendance, 0, len(students))
	for _, st := range students {
		roster = append(roster, models.StudentAttendance{
			StudentID:   st.ID,
			StudentName: models.User{FullName: st.FullName, Username: st.Username, Email: st.Email}.DisplayName(),
			Email:       st.Email,
			ScheduleID:  scheduleID,
			Status:      models.StatusPresent,
		})
	}
	return &dto.Roster{ScheduleID: scheduleID, Source: dto.RosterFromGroup, Students: roster}, nil
}

// SaveBulk stores the statuses of a class in one request and returns the refreshed roster.
// Students posted without a status are marked present.
func (s *AttendanceService) SaveBulk(ctx context.Context, scheduleID, groupID string, req dto.BulkAttendanceRequest) (*dto.BulkAttendanceResult, error) {
	if err := s.requireMarker(ctx); err != nil {
		return nil, err
	}
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule is required")
	}
	if len(req.AttendanceData) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance_data must not be empty")
	}
	statuses := make(map[string]models.AttendanceStatus, len(req.AttendanceData))
	for studentID, raw := range req.AttendanceData {
		status := models.NormalizeStatus(raw)
		if status == "" {
			status = models.StatusPresent
		}
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status "+raw+" for student "+studentID)
		}
		statuses[studentID] = status
	}

	result, err := s.backend.BulkAttendance(ctx, scheduleID, statuses)
	if err != nil {
		return nil, err
	}
	out := &dto.BulkAttendanceResult{Message: result.Message}
	if out.Message == "" {
		out.Message = "Attendance saved"
	}

	roster, err := s.Roster(ctx, scheduleID, groupID)
	if err != nil {
		if appErrors.IsAuth(err) {
			return nil, err
		}
		s.logger.Warn("failed to refresh roster after bulk save", zap.String("schedule_id", scheduleID), zap.Error(err))
		roster = &dto.Roster{ScheduleID: scheduleID, Students: []models.StudentAttendance{}}
	}
	out.Roster = *roster
	return out, nil
}

// Create records one student's attendance.
func (s *AttendanceService) Create(ctx context.Context, in models.AttendanceInput) (*models.AttendanceRecord, error) {
	if err := s.requireMarker(ctx); err != nil {
		return nil, err
	}
	in.Status = models.NormalizeStatus(string(in.Status))
	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err, "schedule, student and a valid status are required")
	}
	return s.backend.CreateAttendance(ctx, in)
}

// Update changes the status of a record.
func (s *AttendanceService) Update(ctx context.Context, id string, in models.AttendanceStatusUpdate) (*models.AttendanceRecord, error) {
	if err := s.requireMarker(ctx); err != nil {
		return nil, err
	}
	in.Status = models.NormalizeStatus(string(in.Status))
	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err, "status must be present, absent, late or excused")
	}
	return s.backend.UpdateAttendance(ctx, id, in.Status)
}

// Stats returns attendance statistics. Students always get their own; teachers may ask for a
// student. When the backend cannot serve them they are computed from the records.
func (s *AttendanceService) Stats(ctx context.Context, studentID string) (*models.AttendanceStats, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	if user.EffectiveRole() == models.RoleStudent {
		studentID = ""
	}
	stats, err := s.backend.AttendanceStats(ctx, studentID)
	if err == nil {
		return stats, nil
	}
	if appErrors.IsAuth(err) {
		return nil, err
	}
	s.logger.Warn("attendance stats unavailable, computing locally", zap.Error(err))
	records, listErr := s.backend.ListAttendance(ctx, models.AttendanceQuery{StudentID: studentID})
	if listErr != nil {
		return nil, err
	}
	local := models.ComputeAttendanceStats(records)
	return &local, nil
}

// Records returns the attendance records visible to the current user.
func (s *AttendanceService) Records(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRecord, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	if user.EffectiveRole() == models.RoleStudent {
		q.StudentID = ""
	}
	return s.backend.ListAttendance(ctx, q)
}

func (s *AttendanceService) requireMarker(ctx context.Context) error {
	user := s.session.User(ctx)
	if user == nil {
		return appErrors.ErrNotAuthenticated
	}
	if !CapabilitiesFor(user.Role).MarkAttendance {
		return appErrors.Clone(appErrors.ErrForbidden, "only teachers mark attendance")
	}
	return nil
}

func rosterFromRows(scheduleID string, rows []models.RosterRow) []models.StudentAttendance {
	out := make([]models.StudentAttendance, 0, len(rows))
	for _, r := range rows {
		status := models.NormalizeStatus(r.AttendanceStatus)
		if !status.Valid() {
			status = models.StatusPresent
		}
		out = append(out, models.StudentAttendance{
			StudentID:    r.StudentID,
			StudentName:  r.FullName,
			Email:        r.Email,
			ScheduleID:   scheduleID,
			AttendanceID: r.AttendanceID,
			Status:       status,
		})
	}
	return out
}

func rosterFromRecords(records []models.AttendanceRecord) []models.StudentAttendance {
	out := make([]models.StudentAttendance, 0, len(records))
	for _, r := range records {
		out = append(out, models.StudentAttendance{
			StudentID:    r.StudentID,
			StudentName:  r.StudentName,
			ScheduleID:   r.ScheduleID,
			AttendanceID: r.ID,
			Status:       r.Status,
		})
	}
	return out
}

func containsTab(tabs []string, tab string) bool {
	for _, t := range tabs {
		if t == tab {
			return true
		}
	}
	return false
}
