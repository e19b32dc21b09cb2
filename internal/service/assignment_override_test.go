package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/repository"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

// lossyAssignments behaves like a backend that forgets deadline and teacher_name.
type lossyAssignments struct {
	items   map[string]models.Assignment
	keep    bool
	nextID  string
	deleted []string
	listErr error
}

func newLossyAssignments() *lossyAssignments {
	return &lossyAssignments{items: map[string]models.Assignment{}, nextID: "a1"}
}

func (b *lossyAssignments) store(a models.Assignment, in models.AssignmentInput) models.Assignment {
	a.Title = in.Title
	a.GroupID = in.GroupID
	a.TeacherID = in.TeacherID
	if b.keep {
		a.Deadline = in.Deadline
		a.TeacherName = in.TeacherName
	}
	b.items[a.ID] = a
	return a
}

func (b *lossyAssignments) ListAssignments(context.Context) ([]models.Assignment, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]models.Assignment, 0, len(b.items))
	for _, a := range b.items {
		out = append(out, a)
	}
	return out, nil
}

func (b *lossyAssignments) GetAssignment(_ context.Context, id string) (*models.Assignment, error) {
	a, ok := b.items[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &a, nil
}

func (b *lossyAssignments) CreateAssignment(_ context.Context, in models.AssignmentInput) (*models.Assignment, error) {
	a := b.store(models.Assignment{ID: b.nextID}, in)
	return &a, nil
}

func (b *lossyAssignments) UpdateAssignment(_ context.Context, id string, in models.AssignmentInput) (*models.Assignment, error) {
	a := b.store(models.Assignment{ID: id}, in)
	return &a, nil
}

func (b *lossyAssignments) DeleteAssignment(_ context.Context, id string) error {
	delete(b.items, id)
	b.deleted = append(b.deleted, id)
	return nil
}

type stubOverrideMetrics struct {
	events []string
}

func (m *stubOverrideMetrics) ObserveOverride(field, action string) {
	m.events = append(m.events, field+":"+action)
}

func TestOverridePatcherKeepsDroppedFields(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	metrics := &stubOverrideMetrics{}
	patcher := NewOverridePatcher(backend, store, nil, metrics, nil)
	ctx := context.Background()

	created, err := patcher.CreateAssignment(ctx, models.AssignmentInput{
		Title: "Essay", Deadline: "2024-01-15", TeacherName: "Ann Lee", GroupID: "g1",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T23:59:59", created.Deadline)
	assert.Equal(t, "Ann Lee", created.TeacherName)

	override, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, "2024-01-15T23:59:59", override.Deadline)
	assert.Equal(t, "Ann Lee", override.TeacherName)
	assert.False(t, override.UpdatedAt.IsZero())

	list, err := patcher.ListAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-01-15T23:59:59", list[0].Deadline)
	assert.Equal(t, "Ann Lee", list[0].TeacherName)

	got, err := patcher.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T23:59:59", got.Deadline)
	assert.Contains(t, metrics.events, "deadline:saved")
	assert.Contains(t, metrics.events, "deadline:applied")
}

func TestOverridePatcherServerValueWins(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	patcher := NewOverridePatcher(backend, store, NeverStale{}, nil, nil)
	ctx := context.Background()

	_, err := patcher.CreateAssignment(ctx, models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15"})
	require.NoError(t, err)

	a := backend.items["a1"]
	a.Deadline = "2024-02-01T12:00:00"
	backend.items["a1"] = a

	got, err := patcher.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T12:00:00", got.Deadline)
}

func TestOverridePatcherNoOverrideWhenEchoComplete(t *testing.T) {
	backend := newLossyAssignments()
	backend.keep = true
	store := repository.NewMemoryOverrideRepository()
	patcher := NewOverridePatcher(backend, store, nil, nil, nil)

	_, err := patcher.CreateAssignment(context.Background(), models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15", TeacherName: "Ann"})
	require.NoError(t, err)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOverridePatcherUpdateMergesWithExisting(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	patcher := NewOverridePatcher(backend, store, nil, nil, nil)
	ctx := context.Background()

	_, err := patcher.CreateAssignment(ctx, models.AssignmentInput{Title: "Essay", TeacherName: "Ann"})
	require.NoError(t, err)
	updated, err := patcher.UpdateAssignment(ctx, "a1", models.AssignmentInput{Title: "Essay", Deadline: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T23:59:59", updated.Deadline)
	assert.Equal(t, "Ann", updated.TeacherName)

	override, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", override.TeacherName)
	assert.Equal(t, "2024-03-01T23:59:59", override.Deadline)
}

func TestOverridePatcherPersistedUpdateRefreshesOverride(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	metrics := &stubOverrideMetrics{}
	patcher := NewOverridePatcher(backend, store, nil, metrics, nil)
	ctx := context.Background()

	_, err := patcher.CreateAssignment(ctx, models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15", TeacherName: "Ann"})
	require.NoError(t, err)

	backend.keep = true
	updated, err := patcher.UpdateAssignment(ctx, "a1", models.AssignmentInput{Title: "Essay", Deadline: "2024-02-20", TeacherName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", updated.Deadline)
	assert.Equal(t, "Bob", updated.TeacherName)

	a := backend.items["a1"]
	a.Deadline = ""
	a.TeacherName = ""
	backend.items["a1"] = a

	got, err := patcher.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20T23:59:59", got.Deadline)
	assert.Equal(t, "Bob", got.TeacherName)
	assert.Contains(t, metrics.events, "deadline:refreshed")
	assert.Contains(t, metrics.events, "teacher_name:refreshed")
}

func TestOverridePatcherDropsEmptyOverride(t *testing.T) {
	backend := newLossyAssignments()
	backend.keep = true
	store := repository.NewMemoryOverrideRepository()
	require.NoError(t, store.Put(context.Background(), models.LocalOverride{AssignmentID: "a1"}))
	patcher := NewOverridePatcher(backend, store, nil, nil, nil)

	_, err := patcher.CreateAssignment(context.Background(), models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15"})
	require.NoError(t, err)

	override, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, override)
}

func TestOverridePatcherDeleteDropsOverride(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	patcher := NewOverridePatcher(backend, store, nil, nil, nil)
	ctx := context.Background()

	_, err := patcher.CreateAssignment(ctx, models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15"})
	require.NoError(t, err)
	require.NoError(t, patcher.DeleteAssignment(ctx, "a1"))

	override, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, override)
	assert.Equal(t, []string{"a1"}, backend.deleted)
}

func TestOverridePatcherMaxAgeEvicts(t *testing.T) {
	backend := newLossyAssignments()
	store := repository.NewMemoryOverrideRepository()
	metrics := &stubOverrideMetrics{}
	patcher := NewOverridePatcher(backend, store, MaxAgePolicy{MaxAge: time.Hour}, metrics, nil)
	ctx := context.Background()

	_, err := patcher.CreateAssignment(ctx, models.AssignmentInput{Title: "Essay", Deadline: "2024-01-15"})
	require.NoError(t, err)

	patcher.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err := patcher.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, got.Deadline)

	override, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, override)
	assert.Contains(t, metrics.events, "any:evicted")
}

func TestOverridePatcherPropagatesBackendErrors(t *testing.T) {
	backend := newLossyAssignments()
	backend.listErr = appErrors.ErrServer
	patcher := NewOverridePatcher(backend, repository.NewMemoryOverrideRepository(), nil, nil, nil)

	_, err := patcher.ListAssignments(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrServer)
}

func TestPolicyForMaxAge(t *testing.T) {
	assert.IsType(t, NeverStale{}, PolicyForMaxAge(0))
	assert.IsType(t, MaxAgePolicy{}, PolicyForMaxAge(time.Minute))

	now := time.Now()
	policy := MaxAgePolicy{MaxAge: time.Minute}
	assert.False(t, policy.Stale(models.LocalOverride{UpdatedAt: now}, now))
	assert.True(t, policy.Stale(models.LocalOverride{UpdatedAt: now.Add(-2 * time.Minute)}, now))
	assert.False(t, NeverStale{}.Stale(models.LocalOverride{UpdatedAt: now.AddDate(-1, 0, 0)}, now))
}
