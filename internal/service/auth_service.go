package service

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type authBackend interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Token(ctx context.Context, username, password string) (*models.Token, error)
	Me(ctx context.Context) (*models.ProfileResult, error)
	UpdateMe(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
}

type authSession interface {
	Current(ctx context.Context) *models.Session
	Set(ctx context.Context, session *models.Session) error
	MergeUser(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// AuthService provides the login, registration and profile use cases.
type AuthService struct {
	backend   authBackend
	session   authSession
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(backend authBackend, session authSession, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{backend: backend, session: session, validator: validate, logger: logger}
}

// Register creates a student account. The caller still has to log in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	return s.backend.Register(ctx, req)
}

// Login exchanges credentials for a token, persists the session, then fetches the full
// profile and merges it in. A failed profile fetch keeps the login.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "username and password are required")
	}

	token, err := s.backend.Token(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token.AccessToken,
		TokenType: token.TokenType,
		User:      models.User{Username: req.Username},
	}
	if err := s.session.Set(ctx, session); err != nil {
		return nil, err
	}

	profile, err := s.backend.Me(ctx)
	switch {
	case err != nil:
		s.logger.Warn("profile fetch after login failed", zap.String("username", req.Username), zap.Error(err))
	case profile.User == nil:
		s.logger.Warn("profile fetch after login rejected", zap.String("username", req.Username), zap.Int("status", profile.Status))
	default:
		if err := s.session.MergeUser(ctx, *profile.User); err != nil {
			s.logger.Warn("failed to merge profile into session", zap.Error(err))
		}
	}

	if current := s.session.Current(ctx); current != nil {
		return current, nil
	}
	return session, nil
}

// Logout clears the persisted session.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// CurrentUser returns the cached user, or nil.
func (s *AuthService) CurrentUser(ctx context.Context) *models.User {
	session := s.session.Current(ctx)
	if session == nil {
		return nil
	}
	user := session.User
	return &user
}

// UserProfile fetches /auth/me. Without a token it fails fast with NOT_AUTHENTICATED; a
// rejected token is reported in the result with Status 401.
func (s *AuthService) UserProfile(ctx context.Context) (*models.ProfileResult, error) {
	if !s.session.Current(ctx).HasToken() {
		return nil, appErrors.ErrNotAuthenticated
	}
	result, err := s.backend.Me(ctx)
	if err != nil {
		return nil, err
	}
	if result.Status == http.StatusOK && result.User != nil {
		if err := s.session.MergeUser(ctx, *result.User); err != nil {
			s.logger.Warn("failed to refresh session from profile", zap.Error(err))
		}
	}
	return result, nil
}

// UpdateUserProfile saves profile edits and merges the response into the session.
func (s *AuthService) UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if !s.session.Current(ctx).HasToken() {
		return nil, appErrors.ErrNotAuthenticated
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	user, err := s.backend.UpdateMe(ctx, update)
	if err != nil {
		return nil, err
	}
	if err := s.session.MergeUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
