package service

import (
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

const soonThresholdDays = 3

type assignmentFiles interface {
	SubmitAssignment(ctx context.Context, id string, sub models.Submission) (map[string]interface{}, error)
	UploadFile(ctx context.Context, assignmentID, filename string, content io.Reader) (*models.FileInfo, error)
	DownloadFile(ctx context.Context, fileID string) (*apiclient.Download, error)
	DeleteFile(ctx context.Context, assignmentID, fileID string) error
}

type groupBackend interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
}

type currentUser interface {
	User(ctx context.Context) *models.User
}

// AssignmentService builds the assignment views and runs assignment mutations.
type AssignmentService struct {
	assignments assignmentBackend
	files       assignmentFiles
	groups      groupBackend
	session     currentUser
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService. assignments is normally the
// OverridePatcher wrapping the backend client.
func NewAssignmentService(assignments assignmentBackend, files assignmentFiles, groups groupBackend, session currentUser, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		assignments: assignments,
		files:       files,
		groups:      groups,
		session:     session,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the assignments visible to the current user.
func (s *AssignmentService) List(ctx context.Context) (*dto.AssignmentsPage, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.assignments.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	groups := s.loadGroups(ctx)
	names := groupNames(groups)

	visible := FilterAssignments(*user, list)
	now := s.now()
	items := make([]dto.AssignmentItem, 0, len(visible))
	for _, a := range visible {
		if a.GroupName == "" {
			a.GroupName = names[a.GroupID]
		}
		items = append(items, DecorateAssignment(a, now))
	}
	return &dto.AssignmentsPage{
		Assignments:  items,
		Groups:       groups,
		Capabilities: CapabilitiesFor(user.Role),
	}, nil
}

// Get returns one assignment for the detail view.
func (s *AssignmentService) Get(ctx context.Context, id string) (*dto.AssignmentDetail, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.GroupName == "" && a.GroupID != "" {
		a.GroupName = groupNames(s.loadGroups(ctx))[a.GroupID]
	}
	return &dto.AssignmentDetail{
		Assignment:   DecorateAssignment(*a, s.now()),
		Capabilities: CapabilitiesFor(user.Role),
	}, nil
}

// Create publishes a new assignment. The author defaults to the signed-in teacher.
func (s *AssignmentService) Create(ctx context.Context, in models.AssignmentInput) (*dto.AssignmentItem, error) {
	user, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if in.TeacherID == "" {
		in.TeacherID = user.ID
	}
	if in.TeacherName == "" {
		in.TeacherName = user.DisplayName()
	}
	a, err := s.assignments.CreateAssignment(ctx, in)
	if err != nil {
		return nil, err
	}
	item := DecorateAssignment(*a, s.now())
	return &item, nil
}

// Update edits an assignment.
func (s *AssignmentService) Update(ctx context.Context, id string, in models.AssignmentInput) (*dto.AssignmentItem, error) {
	user, err := s.manager(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if in.TeacherName == "" && (in.TeacherID == "" || in.TeacherID == user.ID) {
		in.TeacherName = user.DisplayName()
	}
	a, err := s.assignments.UpdateAssignment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	item := DecorateAssignment(*a, s.now())
	return &item, nil
}

// Delete removes an assignment. Nothing is sent without confirmation.
func (s *AssignmentService) Delete(ctx context.Context, id string, confirm bool) error {
	if _, err := s.manager(ctx); err != nil {
		return err
	}
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm deletion of the assignment")
	}
	return s.assignments.DeleteAssignment(ctx, id)
}

// Submit sends a student's submission.
func (s *AssignmentService) Submit(ctx context.Context, id string, sub models.Submission) (map[string]interface{}, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	if !CapabilitiesFor(user.Role).SubmitAssignments {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students submit assignments")
	}
	if sub.Content == "" && len(sub.FileIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission needs content or files")
	}
	return s.files.SubmitAssignment(ctx, id, sub)
}

// UploadFile attaches a file to an assignment.
func (s *AssignmentService) UploadFile(ctx context.Context, id, filename string, content io.Reader) (*models.FileInfo, error) {
	if _, err := s.user(ctx); err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	return s.files.UploadFile(ctx, id, filename, content)
}

// DownloadFile streams an assignment file.
func (s *AssignmentService) DownloadFile(ctx context.Context, fileID string) (*apiclient.Download, error) {
	if _, err := s.user(ctx); err != nil {
		return nil, err
	}
	return s.files.DownloadFile(ctx, fileID)
}

// DeleteFile removes a file from an assignment after confirmation.
func (s *AssignmentService) DeleteFile(ctx context.Context, id, fileID string, confirm bool) error {
	if _, err := s.manager(ctx); err != nil {
		return err
	}
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm deletion of the file")
	}
	return s.files.DeleteFile(ctx, id, fileID)
}

func (s *AssignmentService) validateInput(in models.AssignmentInput) error {
	if err := s.validator.Struct(in); err != nil {
		return validationError(err, "title is required")
	}
	if in.Deadline != "" {
		if _, ok := dates.Parse(in.Deadline); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "deadline must be a date (YYYY-MM-DD)")
		}
	}
	return nil
}

func (s *AssignmentService) user(ctx context.Context) (*models.User, error) {
	user := s.session.User(ctx)
	if user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	return user, nil
}

func (s *AssignmentService) manager(ctx context.Context) (*models.User, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	if !CapabilitiesFor(user.Role).ManageAssignments {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers manage assignments")
	}
	return user, nil
}

func (s *AssignmentService) loadGroups(ctx context.Context) []models.Group {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		s.logger.Warn("failed to load groups for assignments", zap.Error(err))
		return nil
	}
	return groups
}

func groupNames(groups []models.Group) map[string]string {
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names
}

// DecorateAssignment adds the deadline display fields relative to now.
func DecorateAssignment(a models.Assignment, now time.Time) dto.AssignmentItem {
	item := dto.AssignmentItem{Assignment: a, DeadlineStatus: dto.DeadlineNone}
	if a.Deadline == "" {
		return item
	}
	display, ok := dates.Format(a.Deadline)
	if !ok {
		item.DeadlineDisplay = a.Deadline
		return item
	}
	item.DeadlineDisplay = display

	days, ok := dates.DaysUntil(a.Deadline, now)
	if !ok {
		return item
	}
	item.DaysRemaining = &days
	switch {
	case days < 0:
		item.DeadlineStatus = dto.DeadlineOverdue
	case days == 0:
		item.DeadlineStatus = dto.DeadlineToday
	case days <= soonThresholdDays:
		item.DeadlineStatus = dto.DeadlineSoon
	default:
		item.DeadlineStatus = dto.DeadlineOK
	}
	return item
}
