package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type stubAssignmentFiles struct {
	submitted   []string
	uploaded    string
	deleteCalls int
}

func (s *stubAssignmentFiles) SubmitAssignment(_ context.Context, id string, _ models.Submission) (map[string]interface{}, error) {
	s.submitted = append(s.submitted, id)
	return map[string]interface{}{"status": "submitted"}, nil
}

func (s *stubAssignmentFiles) UploadFile(_ context.Context, _, filename string, content io.Reader) (*models.FileInfo, error) {
	data, _ := io.ReadAll(content)
	s.uploaded = filename + ":" + string(data)
	return &models.FileInfo{ID: "f1", FileName: filename}, nil
}

func (s *stubAssignmentFiles) DownloadFile(context.Context, string) (*apiclient.Download, error) {
	return &apiclient.Download{Body: io.NopCloser(strings.NewReader("pdf")), ContentType: "application/pdf"}, nil
}

func (s *stubAssignmentFiles) DeleteFile(context.Context, string, string) error {
	s.deleteCalls++
	return nil
}

type stubGroups struct {
	groups   []models.Group
	students map[string][]models.GroupStudent
	err      error
}

func (s *stubGroups) ListGroups(context.Context) ([]models.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.groups, nil
}

func (s *stubGroups) GroupStudents(_ context.Context, groupID string) ([]models.GroupStudent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.students[groupID], nil
}

var (
	teacherUser = models.User{ID: "t1", Username: "ann", FullName: "Ann Lee", Role: models.RoleTeacher}
	studentUser = models.User{ID: "s1", Username: "sam", Role: models.RoleStudent, GroupID: "g1"}
	adminUser   = models.User{ID: "ad", Username: "root", Role: models.RoleAdmin}
)

func newAssignmentFixture(t *testing.T, user models.User) (*AssignmentService, *lossyAssignments, *stubAssignmentFiles) {
	t.Helper()
	backend := newLossyAssignments()
	backend.keep = true
	files := &stubAssignmentFiles{}
	groups := &stubGroups{groups: []models.Group{{ID: "g1", Name: "CS-101"}, {ID: "g2", Name: "CS-102"}}}
	svc := NewAssignmentService(backend, files, groups, userSession(t, user), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local) }
	return svc, backend, files
}

func TestAssignmentServiceListFiltersAndDecorates(t *testing.T) {
	svc, backend, _ := newAssignmentFixture(t, studentUser)
	backend.items = map[string]models.Assignment{
		"a1": {ID: "a1", Title: "Essay", GroupID: "g1", TeacherID: "t1", Deadline: "2024-01-12T23:59:59"},
		"a2": {ID: "a2", Title: "Lab", GroupID: "g2", TeacherID: "t1", Deadline: "2024-01-20"},
	}

	page, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Assignments, 1)
	item := page.Assignments[0]
	assert.Equal(t, "a1", item.ID)
	assert.Equal(t, "CS-101", item.GroupName)
	assert.Equal(t, "12.01.2024", item.DeadlineDisplay)
	require.NotNil(t, item.DaysRemaining)
	assert.Equal(t, 2, *item.DaysRemaining)
	assert.Equal(t, dto.DeadlineSoon, item.DeadlineStatus)
	assert.True(t, page.Capabilities.SubmitAssignments)
	assert.False(t, page.Capabilities.ManageAssignments)
}

func TestAssignmentServiceListSurvivesGroupFailure(t *testing.T) {
	backend := newLossyAssignments()
	backend.items = map[string]models.Assignment{"a1": {ID: "a1", GroupID: "g1", TeacherID: "t1"}}
	svc := NewAssignmentService(backend, &stubAssignmentFiles{}, &stubGroups{err: appErrors.ErrServer}, userSession(t, teacherUser), nil, nil)

	page, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Assignments, 1)
	assert.Empty(t, page.Assignments[0].GroupName)
	assert.Equal(t, dto.DeadlineNone, page.Assignments[0].DeadlineStatus)
}

func TestAssignmentServiceCreateDefaultsAuthor(t *testing.T) {
	svc, backend, _ := newAssignmentFixture(t, teacherUser)

	item, err := svc.Create(context.Background(), models.AssignmentInput{Title: "Essay", GroupID: "g1", Deadline: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "t1", item.TeacherID)
	assert.Equal(t, "Ann Lee", item.TeacherName)
	assert.Equal(t, "t1", backend.items["a1"].TeacherID)
	assert.Equal(t, dto.DeadlineOK, item.DeadlineStatus)
}

func TestAssignmentServiceCreateRejectsStudentsAndBadInput(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t, studentUser)
	_, err := svc.Create(context.Background(), models.AssignmentInput{Title: "Essay"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	teacherSvc, backend, _ := newAssignmentFixture(t, teacherUser)
	_, err = teacherSvc.Create(context.Background(), models.AssignmentInput{Deadline: "2024-01-15"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = teacherSvc.Create(context.Background(), models.AssignmentInput{Title: "Essay", Deadline: "next week"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, backend.items)
}

func TestAssignmentServiceDeleteRequiresConfirmation(t *testing.T) {
	svc, backend, files := newAssignmentFixture(t, teacherUser)
	backend.items["a1"] = models.Assignment{ID: "a1"}

	err := svc.Delete(context.Background(), "a1", false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	assert.Empty(t, backend.deleted)

	err = svc.DeleteFile(context.Background(), "a1", "f1", false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	assert.Zero(t, files.deleteCalls)

	require.NoError(t, svc.Delete(context.Background(), "a1", true))
	assert.Equal(t, []string{"a1"}, backend.deleted)
}

func TestAssignmentServiceSubmitIsForStudents(t *testing.T) {
	svc, _, files := newAssignmentFixture(t, studentUser)
	_, err := svc.Submit(context.Background(), "a1", models.Submission{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	result, err := svc.Submit(context.Background(), "a1", models.Submission{Content: "my answer"})
	require.NoError(t, err)
	assert.Equal(t, "submitted", result["status"])
	assert.Equal(t, []string{"a1"}, files.submitted)

	teacherSvc, _, _ := newAssignmentFixture(t, teacherUser)
	_, err = teacherSvc.Submit(context.Background(), "a1", models.Submission{Content: "x"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestAssignmentServiceUploadAndDownload(t *testing.T) {
	svc, _, files := newAssignmentFixture(t, teacherUser)
	info, err := svc.UploadFile(context.Background(), "a1", "task.pdf", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "f1", info.ID)
	assert.Equal(t, "task.pdf:data", files.uploaded)

	download, err := svc.DownloadFile(context.Background(), "f1")
	require.NoError(t, err)
	defer download.Body.Close()
	assert.Equal(t, "application/pdf", download.ContentType)
}

func TestAssignmentServiceRequiresSession(t *testing.T) {
	backend := newLossyAssignments()
	svc := NewAssignmentService(backend, &stubAssignmentFiles{}, &stubGroups{}, NewSessionService(&stubSessionRepo{}, nil, nil), nil, nil)
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotAuthenticated)
}

func TestDecorateAssignmentStatuses(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.Local)
	cases := map[string]string{
		"2024-01-09T23:59:59": dto.DeadlineOverdue,
		"2024-01-10T08:00:00": dto.DeadlineToday,
		"2024-01-13":          dto.DeadlineSoon,
		"2024-01-14":          dto.DeadlineOK,
		"":                    dto.DeadlineNone,
	}
	for deadline, want := range cases {
		item := DecorateAssignment(models.Assignment{Deadline: deadline}, now)
		assert.Equal(t, want, item.DeadlineStatus, deadline)
	}

	garbled := DecorateAssignment(models.Assignment{Deadline: "soon-ish"}, now)
	assert.Equal(t, "soon-ish", garbled.DeadlineDisplay)
	assert.Nil(t, garbled.DaysRemaining)
	assert.Equal(t, dto.DeadlineNone, garbled.DeadlineStatus)
}
