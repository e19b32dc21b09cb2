package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type sessionRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
	Delete(ctx context.Context) error
}

type sessionMetrics interface {
	ObserveSessionCleared(reason string)
}

// SessionService is the explicit session context: token, user, set, merge and clear over a
// pluggable repository.
type SessionService struct {
	repo    sessionRepository
	metrics sessionMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, metrics sessionMetrics, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
}

// Current returns the persisted session, or nil when there is none. A session that cannot be
// read back is cleared.
func (s *SessionService) Current(ctx context.Context) *models.Session {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load session", zap.Error(err))
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.logger.Warn("discarding corrupt session", zap.Error(err))
		s.clear(ctx, "corrupt")
		return nil
	}
	return &session
}

// Token returns the bearer token of the current session.
func (s *SessionService) Token(ctx context.Context) string {
	if session := s.Current(ctx); session != nil {
		return session.Token
	}
	return ""
}

// User returns the cached user of the current session.
func (s *SessionService) User(ctx context.Context) *models.User {
	session := s.Current(ctx)
	if session == nil {
		return nil
	}
	user := session.User
	return &user
}

// Set replaces the persisted session. The token expiry is read from the JWT exp claim when the
// token is a JWT; the signature is not checked.
func (s *SessionService) Set(ctx context.Context, session *models.Session) error {
	if session.ExpiresAt == nil {
		session.ExpiresAt = tokenExpiry(session.Token)
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}
	if err := s.repo.Save(ctx, raw); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	return nil
}

// MergeUser overlays profile fields onto the persisted session.
func (s *SessionService) MergeUser(ctx context.Context, user models.User) error {
	session := s.Current(ctx)
	if session == nil {
		return appErrors.ErrNotAuthenticated
	}
	session.MergeUser(user)
	return s.Set(ctx, session)
}

// Clear removes the persisted session.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// Authenticated returns the session when it has a token that is not known to be expired. An
// expired session is cleared.
func (s *SessionService) Authenticated(ctx context.Context) (*models.Session, bool) {
	session := s.Current(ctx)
	if !session.HasToken() {
		return nil, false
	}
	if session.Expired(s.now()) {
		s.logger.Info("session token expired", zap.String("user_id", session.ID))
		s.clear(ctx, "expired")
		return nil, false
	}
	return session, true
}

func (s *SessionService) clear(ctx context.Context, reason string) {
	if err := s.repo.Delete(ctx); err != nil {
		s.logger.Warn("failed to clear session", zap.String("reason", reason), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveSessionCleared(reason)
	}
}

func tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
