package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type stubAuthBackend struct {
	token       *models.Token
	tokenErr    error
	profile     *models.ProfileResult
	profileErr  error
	updated     *models.User
	registered  *models.RegisterRequest
	tokenCalls  int
	meCalls     int
	meSawToken  string
	sessionPeek *SessionService
}

func (s *stubAuthBackend) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	s.registered = &req
	return &models.User{ID: "new", Username: req.Username, Role: models.RoleStudent}, nil
}

func (s *stubAuthBackend) Token(context.Context, string, string) (*models.Token, error) {
	s.tokenCalls++
	if s.tokenErr != nil {
		return nil, s.tokenErr
	}
	return s.token, nil
}

func (s *stubAuthBackend) Me(ctx context.Context) (*models.ProfileResult, error) {
	s.meCalls++
	if s.sessionPeek != nil {
		s.meSawToken = s.sessionPeek.Token(ctx)
	}
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func (s *stubAuthBackend) UpdateMe(_ context.Context, update models.ProfileUpdate) (*models.User, error) {
	if s.updated != nil {
		return s.updated, nil
	}
	return &models.User{FullName: update.FullName, Email: update.Email}, nil
}

func newAuthFixture(backend *stubAuthBackend) (*AuthService, *SessionService) {
	session := NewSessionService(&stubSessionRepo{}, nil, nil)
	backend.sessionPeek = session
	return NewAuthService(backend, session, nil, nil), session
}

func TestAuthServiceLoginPersistsThenMergesProfile(t *testing.T) {
	backend := &stubAuthBackend{
		token: &models.Token{AccessToken: "tok", TokenType: "bearer"},
		profile: &models.ProfileResult{Status: 200, User: &models.User{
			ID: "u1", Username: "ann", FullName: "Ann Lee", Role: models.RoleTeacher, IsActive: true,
		}},
	}
	svc, session := newAuthFixture(backend)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "ann", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, "u1", result.ID)
	assert.Equal(t, models.RoleTeacher, result.Role)
	assert.Equal(t, "tok", backend.meSawToken, "profile fetch must run after the token is stored")
	assert.Equal(t, "Ann Lee", session.User(context.Background()).FullName)
}

func TestAuthServiceLoginKeepsSessionWhenProfileFails(t *testing.T) {
	backend := &stubAuthBackend{
		token:      &models.Token{AccessToken: "tok"},
		profileErr: appErrors.ErrServer,
	}
	svc, session := newAuthFixture(backend)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "ann", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ann", result.Username)
	assert.Equal(t, "tok", session.Token(context.Background()))
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	backend := &stubAuthBackend{tokenErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "Incorrect username or password")}
	svc, session := newAuthFixture(backend)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ann", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, appErrors.IsAuth(err))
	assert.Nil(t, session.Current(context.Background()))
	assert.Zero(t, backend.meCalls)
}

func TestAuthServiceLoginValidatesInput(t *testing.T) {
	backend := &stubAuthBackend{}
	svc, _ := newAuthFixture(backend)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ann"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, backend.tokenCalls)
}

func TestAuthServiceLogoutClearsSession(t *testing.T) {
	backend := &stubAuthBackend{token: &models.Token{AccessToken: "tok"}, profile: &models.ProfileResult{Status: 401}}
	svc, session := newAuthFixture(backend)
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ann", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, session.Current(context.Background()))
	assert.Nil(t, svc.CurrentUser(context.Background()))
}

func TestAuthServiceUserProfileRequiresToken(t *testing.T) {
	backend := &stubAuthBackend{}
	svc, _ := newAuthFixture(backend)

	_, err := svc.UserProfile(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotAuthenticated)
	assert.Zero(t, backend.meCalls)
}

func TestAuthServiceUserProfileReportsRejectedToken(t *testing.T) {
	backend := &stubAuthBackend{profile: &models.ProfileResult{Status: 401, Detail: "Authentication token expired or invalid"}}
	svc, session := newAuthFixture(backend)
	require.NoError(t, session.Set(context.Background(), &models.Session{Token: "tok", User: models.User{Username: "ann"}}))

	result, err := svc.UserProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 401, result.Status)
	assert.Nil(t, result.User)
	assert.Equal(t, "ann", session.User(context.Background()).Username)
}

func TestAuthServiceUpdateProfileMergesIntoSession(t *testing.T) {
	backend := &stubAuthBackend{updated: &models.User{ID: "u1", FullName: "Ann Updated", Email: "ann@uni.test"}}
	svc, session := newAuthFixture(backend)
	require.NoError(t, session.Set(context.Background(), &models.Session{Token: "tok", User: models.User{ID: "u1", Username: "ann"}}))

	user, err := svc.UpdateUserProfile(context.Background(), models.ProfileUpdate{FullName: "Ann Updated", Email: "ann@uni.test"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Updated", user.FullName)

	cached := session.User(context.Background())
	assert.Equal(t, "Ann Updated", cached.FullName)
	assert.Equal(t, "ann", cached.Username)
}

func TestAuthServiceRegisterValidates(t *testing.T) {
	backend := &stubAuthBackend{}
	svc, _ := newAuthFixture(backend)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "secret123"})
	require.Error(t, err)
	assert.Nil(t, backend.registered)

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "bob@uni.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
}
