package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

const profileRejected = "Authentication token expired or invalid"

type registerPayload struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role"`
}

// Register creates a student account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	fullName := req.FullName
	if fullName == "" {
		fullName = req.Username
	}
	var user models.User
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     registerPayload{Username: req.Username, Email: req.Email, Password: req.Password, FullName: fullName, Role: models.RoleStudent},
		fallback: "Failed to register",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Token exchanges credentials for a bearer token. Rejected credentials are reported as
// INVALID_CREDENTIALS and never touch the session.
func (c *Client) Token(ctx context.Context, username, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token models.Token
	err := c.do(ctx, request{
		method:             http.MethodPost,
		path:               "/auth/token",
		form:               form,
		fallback:           "Failed to login",
		bypassUnauthorized: true,
	}, &token)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && (appErr.Code == appErrors.ErrValidation.Code || appErr.Code == appErrors.ErrUnauthorized.Code) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, appErr.Message)
		}
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrServer, "backend returned no access token")
	}
	return &token, nil
}

// Me fetches the authenticated profile. A 401 is reported in the result, not as an error.
func (c *Client) Me(ctx context.Context) (*models.ProfileResult, error) {
	var user models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", fallback: "Failed to get user profile"}, &user)
	if err != nil {
		if appErrors.IsAuth(err) {
			return &models.ProfileResult{Status: http.StatusUnauthorized, Detail: profileRejected}, nil
		}
		return nil, err
	}
	return &models.ProfileResult{Status: http.StatusOK, User: &user}, nil
}

// UpdateMe updates the authenticated profile.
func (c *Client) UpdateMe(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/auth/me",
		body:     update,
		fallback: "Failed to update user profile",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
