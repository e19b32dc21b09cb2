package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/pkg/dates"
)

// Override fields tracked by the patcher.
const (
	FieldDeadline    = "deadline"
	FieldTeacherName = "teacher_name"
)

type assignmentBackend interface {
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	CreateAssignment(ctx context.Context, in models.AssignmentInput) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, in models.AssignmentInput) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

type overrideRepository interface {
	Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error)
	All(ctx context.Context) (map[string]models.LocalOverride, error)
	Put(ctx context.Context, o models.LocalOverride) error
	Delete(ctx context.Context, assignmentID string) error
}

type overrideMetrics interface {
	ObserveOverride(field, action string)
}

// OverridePolicy decides when a stored override is too old to apply.
type OverridePolicy interface {
	Stale(o models.LocalOverride, now time.Time) bool
}

// NeverStale keeps overrides forever.
type NeverStale struct{}

func (NeverStale) Stale(models.LocalOverride, time.Time) bool { return false }

// MaxAgePolicy expires overrides older than MaxAge. A non-positive MaxAge never expires.
type MaxAgePolicy struct {
	MaxAge time.Duration
}

func (p MaxAgePolicy) Stale(o models.LocalOverride, now time.Time) bool {
	if p.MaxAge <= 0 || o.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(o.UpdatedAt) > p.MaxAge
}

// PolicyForMaxAge returns NeverStale for zero and MaxAgePolicy otherwise.
func PolicyForMaxAge(maxAge time.Duration) OverridePolicy {
	if maxAge <= 0 {
		return NeverStale{}
	}
	return MaxAgePolicy{MaxAge: maxAge}
}

// OverridePatcher wraps the assignment backend and patches over fields the backend drops.
// When a create or update echo lacks a deadline or teacher name that was sent, the sent value
// is kept locally and overlaid on later reads wherever the backend value is empty. A value
// from the backend always wins.
type OverridePatcher struct {
	next    assignmentBackend
	store   overrideRepository
	policy  OverridePolicy
	metrics overrideMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewOverridePatcher constructs the decorator.
func NewOverridePatcher(next assignmentBackend, store overrideRepository, policy OverridePolicy, metrics overrideMetrics, logger *zap.Logger) *OverridePatcher {
	if policy == nil {
		policy = NeverStale{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverridePatcher{next: next, store: store, policy: policy, metrics: metrics, logger: logger, now: time.Now}
}

func (p *OverridePatcher) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	list, err := p.next.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := p.store.All(ctx)
	if err != nil {
		p.logger.Warn("failed to read assignment overrides", zap.Error(err))
		return list, nil
	}
	for i := range list {
		if o, ok := overrides[list[i].ID]; ok {
			p.apply(ctx, &list[i], o)
		}
	}
	return list, nil
}

func (p *OverridePatcher) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	a, err := p.next.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	p.overlay(ctx, a)
	return a, nil
}

func (p *OverridePatcher) CreateAssignment(ctx context.Context, in models.AssignmentInput) (*models.Assignment, error) {
	a, err := p.next.CreateAssignment(ctx, in)
	if err != nil {
		return nil, err
	}
	p.remember(ctx, a, in)
	return a, nil
}

func (p *OverridePatcher) UpdateAssignment(ctx context.Context, id string, in models.AssignmentInput) (*models.Assignment, error) {
	a, err := p.next.UpdateAssignment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		a.ID = id
	}
	p.remember(ctx, a, in)
	return a, nil
}

func (p *OverridePatcher) DeleteAssignment(ctx context.Context, id string) error {
	if err := p.next.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	if err := p.store.Delete(ctx, id); err != nil {
		p.logger.Warn("failed to drop assignment override", zap.String("assignment_id", id), zap.Error(err))
	}
	return nil
}

// remember stores the fields the echo dropped and patches them into the echo. Fields the echo
// did persist replace any older value held for them, so a later lossy read never resurfaces a
// superseded override.
func (p *OverridePatcher) remember(ctx context.Context, echo *models.Assignment, in models.AssignmentInput) {
	deadline := dates.EndOfDay(in.Deadline)
	missingDeadline := echo.Deadline == "" && deadline != ""
	missingTeacher := echo.TeacherName == "" && in.TeacherName != ""
	if echo.ID == "" {
		if missingDeadline || missingTeacher {
			p.logger.Warn("cannot keep override for assignment without id")
		}
		return
	}

	existing, err := p.store.Get(ctx, echo.ID)
	if err != nil {
		p.logger.Warn("failed to read assignment override", zap.String("assignment_id", echo.ID), zap.Error(err))
		existing = nil
	}
	if existing == nil && !missingDeadline && !missingTeacher {
		return
	}

	override := models.LocalOverride{AssignmentID: echo.ID}
	if existing != nil {
		override = *existing
	}
	changed := false
	switch {
	case missingDeadline:
		override.Deadline = deadline
		p.observe(FieldDeadline, "saved")
		changed = true
	case deadline != "" && override.Deadline != "":
		if echoed := dates.EndOfDay(echo.Deadline); echoed != override.Deadline {
			override.Deadline = echoed
			p.observe(FieldDeadline, "refreshed")
			changed = true
		}
	}
	switch {
	case missingTeacher:
		override.TeacherName = in.TeacherName
		p.observe(FieldTeacherName, "saved")
		changed = true
	case in.TeacherName != "" && override.TeacherName != "":
		if echo.TeacherName != override.TeacherName {
			override.TeacherName = echo.TeacherName
			p.observe(FieldTeacherName, "refreshed")
			changed = true
		}
	}

	if override.Empty() {
		if err := p.store.Delete(ctx, echo.ID); err != nil {
			p.logger.Warn("failed to drop assignment override", zap.String("assignment_id", echo.ID), zap.Error(err))
		}
		return
	}
	if !changed {
		p.apply(ctx, echo, override)
		return
	}
	if echo.Deadline == "" {
		echo.Deadline = override.Deadline
	}
	if echo.TeacherName == "" {
		echo.TeacherName = override.TeacherName
	}
	override.UpdatedAt = p.now().UTC()
	if err := p.store.Put(ctx, override); err != nil {
		p.logger.Warn("failed to save assignment override", zap.String("assignment_id", echo.ID), zap.Error(err))
		return
	}
	if missingDeadline || missingTeacher {
		p.logger.Info("backend dropped assignment fields, kept locally",
			zap.String("assignment_id", echo.ID),
			zap.Bool("deadline", missingDeadline),
			zap.Bool("teacher_name", missingTeacher),
		)
	}
}

func (p *OverridePatcher) overlay(ctx context.Context, a *models.Assignment) {
	if a == nil || a.ID == "" || (a.Deadline != "" && a.TeacherName != "") {
		return
	}
	o, err := p.store.Get(ctx, a.ID)
	if err != nil {
		p.logger.Warn("failed to read assignment override", zap.String("assignment_id", a.ID), zap.Error(err))
		return
	}
	if o != nil {
		p.apply(ctx, a, *o)
	}
}

func (p *OverridePatcher) apply(ctx context.Context, a *models.Assignment, o models.LocalOverride) {
	if p.policy.Stale(o, p.now()) {
		if err := p.store.Delete(ctx, o.AssignmentID); err != nil {
			p.logger.Warn("failed to evict stale override", zap.String("assignment_id", o.AssignmentID), zap.Error(err))
		}
		p.observe("any", "evicted")
		return
	}
	if a.Deadline == "" && o.Deadline != "" {
		a.Deadline = o.Deadline
		p.observe(FieldDeadline, "applied")
	}
	if a.TeacherName == "" && o.TeacherName != "" {
		a.TeacherName = o.TeacherName
		p.observe(FieldTeacherName, "applied")
	}
}

func (p *OverridePatcher) observe(field, action string) {
	if p.metrics != nil {
		p.metrics.ObserveOverride(field, action)
	}
}
