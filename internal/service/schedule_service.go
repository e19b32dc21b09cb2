package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

// Fallback labels for entries the backend returns without a teacher, group or room.
const (
	NoTeacherLabel = "Teacher not specified"
	NoGroupLabel   = "Group not specified"
	NoRoomLabel    = "Room not specified"
)

type scheduleBackend interface {
	ListSchedule(ctx context.Context, q models.ScheduleQuery) ([]models.ScheduleEntry, error)
	ScheduleByDay(ctx context.Context, day string) ([]models.ScheduleEntry, error)
	ScheduleByGroup(ctx context.Context, groupID string) ([]models.ScheduleEntry, error)
	ScheduleToday(ctx context.Context) ([]models.ScheduleEntry, error)
	CreateSchedule(ctx context.Context, in models.ScheduleInput) (*models.ScheduleEntry, error)
	UpdateSchedule(ctx context.Context, id string, in models.ScheduleInput) (*models.ScheduleEntry, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// ScheduleService builds the weekly schedule view and runs schedule mutations.
type ScheduleService struct {
	backend   scheduleBackend
	session   currentUser
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(backend scheduleBackend, session currentUser, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{backend: backend, session: session, validator: validate, logger: logger, now: time.Now}
}

// Page renders the two-week strip with the entries of the selected day. week defaults to
// current and day to monday.
func (s *ScheduleService) Page(ctx context.Context, week, day string) (*dto.SchedulePage, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}

	week = strings.ToLower(strings.TrimSpace(week))
	if week == "" {
		week = dto.WeekCurrent
	}
	if week != dto.WeekCurrent && week != dto.WeekNext {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week must be current or next")
	}
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		day = models.Weekdays[0]
	}
	if !models.IsWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be monday through saturday")
	}

	monday := dates.WeekStart(s.now())
	current := weekStrip(monday, week == dto.WeekCurrent, day)
	next := weekStrip(monday.AddDate(0, 0, 7), week == dto.WeekNext, day)

	selected := current
	if week == dto.WeekNext {
		selected = next
	}
	date := ""
	for _, tab := range selected {
		if tab.Selected {
			date = tab.Date
		}
	}

	entries, err := s.ForDay(ctx, date, day)
	if err != nil {
		return nil, err
	}
	return &dto.SchedulePage{
		Week:         week,
		Day:          day,
		Date:         date,
		CurrentWeek:  current,
		NextWeek:     next,
		Entries:      entries,
		Capabilities: CapabilitiesFor(user.Role),
	}, nil
}

// ForDay loads the classes of date. When the date-range query fails it falls back to the
// day-of-week endpoint.
func (s *ScheduleService) ForDay(ctx context.Context, date, day string) ([]dto.ScheduleItem, error) {
	entries, err := s.backend.ListSchedule(ctx, models.ScheduleQuery{StartDate: date, EndDate: date})
	if err != nil {
		if appErrors.IsAuth(err) {
			return nil, err
		}
		s.logger.Warn("date schedule query failed, falling back to weekday", zap.String("date", date), zap.String("day", day), zap.Error(err))
		entries, err = s.backend.ScheduleByDay(ctx, day)
		if err != nil {
			return nil, err
		}
	}
	return DecorateSchedule(entries), nil
}

// Today loads today's classes.
func (s *ScheduleService) Today(ctx context.Context) ([]dto.ScheduleItem, error) {
	entries, err := s.backend.ScheduleToday(ctx)
	if err != nil {
		return nil, err
	}
	return DecorateSchedule(entries), nil
}

// ForGroup loads every class of a group.
func (s *ScheduleService) ForGroup(ctx context.Context, groupID string) ([]dto.ScheduleItem, error) {
	entries, err := s.backend.ScheduleByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return DecorateSchedule(FilterScheduleByGroup(entries, groupID)), nil
}

// Create adds a class slot.
func (s *ScheduleService) Create(ctx context.Context, in models.ScheduleInput) (*dto.ScheduleItem, error) {
	user, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if in.TeacherID == "" && user.EffectiveRole() == models.RoleTeacher {
		in.TeacherID = user.ID
	}
	entry, err := s.backend.CreateSchedule(ctx, in)
	if err != nil {
		return nil, err
	}
	item := decorateEntry(*entry)
	return &item, nil
}

// Update edits a class slot.
func (s *ScheduleService) Update(ctx context.Context, id string, in models.ScheduleInput) (*dto.ScheduleItem, error) {
	if _, err := s.manager(ctx); err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	entry, err := s.backend.UpdateSchedule(ctx, id, in)
	if err != nil {
		return nil, err
	}
	item := decorateEntry(*entry)
	return &item, nil
}

// Delete removes a class slot. Nothing is sent without confirmation.
func (s *ScheduleService) Delete(ctx context.Context, id string, confirm bool) error {
	if _, err := s.manager(ctx); err != nil {
		return err
	}
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm deletion of the class")
	}
	return s.backend.DeleteSchedule(ctx, id)
}

func (s *ScheduleService) manager(ctx context.Context) (*models.User, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	if !CapabilitiesFor(user.Role).ManageSchedule {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers manage the schedule")
	}
	return user, nil
}

func (s *ScheduleService) validateInput(in models.ScheduleInput) error {
	if err := s.validator.Struct(in); err != nil {
		return validationError(err, "subject, date, times, room and group are required")
	}
	start, okStart := clockTime(in.StartTime)
	end, okEnd := clockTime(in.EndTime)
	if !okStart || !okEnd {
		return appErrors.Clone(appErrors.ErrValidation, "times must be HH:MM")
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return nil
}

func clockTime(raw string) (time.Time, bool) {
	t, err := time.Parse("15:04", dates.ShortTime(strings.TrimSpace(raw)))
	return t, err == nil
}

func weekStrip(monday time.Time, active bool, day string) []dto.DayTab {
	tabs := make([]dto.DayTab, 0, len(models.Weekdays))
	for i, name := range models.Weekdays {
		d := monday.AddDate(0, 0, i)
		tabs = append(tabs, dto.DayTab{
			Day:      name,
			Date:     d.Format(dates.DateLayout),
			Label:    d.Format(dates.DayMonthLayout),
			Selected: active && name == day,
		})
	}
	return tabs
}

// DecorateSchedule trims times to HH:MM, orders entries by start time and numbers them from 1.
func DecorateSchedule(entries []models.ScheduleEntry) []dto.ScheduleItem {
	items := make([]dto.ScheduleItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, decorateEntry(e))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime < items[j].StartTime
	})
	for i := range items {
		items[i].ClassNumber = i + 1
	}
	return items
}

func decorateEntry(e models.ScheduleEntry) dto.ScheduleItem {
	e.StartTime = dates.ShortTime(e.StartTime)
	e.EndTime = dates.ShortTime(e.EndTime)
	return dto.ScheduleItem{
		ScheduleEntry: e,
		ClassNumber:   1,
		TeacherLabel:  orDefault(e.TeacherName, NoTeacherLabel),
		GroupLabel:    orDefault(e.GroupName, NoGroupLabel),
		RoomLabel:     orDefault(e.Room, NoRoomLabel),
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
