package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/dto"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/service"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) *models.User
}

// AuthHandler serves the login, registration and navigation shell.
type AuthHandler struct {
	auth authService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Root sends the browser to the schedule.
func (h *AuthHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, defaultLanding)
}

// LoginPage godoc
// @Summary Login view model
// @Tags Auth
// @Produce json
// @Param redirectUrl query string false "Page to return to after login"
// @Param registered query string false "Set after a successful registration"
// @Success 200 {object} response.Envelope
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	page := dto.LoginPage{
		RedirectURL: safeRedirect(c.Query("redirectUrl")),
		Registered:  c.Query("registered") != "",
	}
	response.JSON(c, http.StatusOK, page)
}

// Login godoc
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}
	if req.RedirectURL == "" {
		req.RedirectURL = c.Query("redirectUrl")
	}
	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	target := safeRedirect(req.RedirectURL)
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	response.JSON(c, http.StatusOK, dto.LoginResult{User: session.User, RedirectURL: target})
}

// RegisterPage returns the empty registration view model.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"login_url": "/login"})
}

// Register godoc
// @Summary Create a student account
// @Tags Auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param payload body models.RegisterRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid registration payload"))
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, "/login?registered=1")
		return
	}
	response.JSON(c, http.StatusCreated, user, map[string]interface{}{"redirect_url": "/login?registered=1"})
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// Nav godoc
// @Summary Session-aware navigation menu
// @Tags Shell
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /nav [get]
func (h *AuthHandler) Nav(c *gin.Context) {
	response.JSON(c, http.StatusOK, navMenu(h.auth.CurrentUser(c.Request.Context())))
}

func navMenu(user *models.User) dto.NavMenu {
	if user == nil {
		return dto.NavMenu{Items: []dto.NavItem{
			{Label: "Login", Path: "/login"},
			{Label: "Register", Path: "/register"},
		}}
	}
	return dto.NavMenu{
		Authenticated: true,
		DisplayName:   user.DisplayName(),
		Role:          string(user.EffectiveRole()),
		Items: []dto.NavItem{
			{Label: "Schedule", Path: "/schedule"},
			{Label: "Assignments", Path: "/assignments"},
			{Label: "Attendance", Path: "/attendance"},
			{Label: "Profile", Path: "/profile"},
			{Label: "Logout", Path: "/logout", Method: http.MethodPost},
		},
	}
}

type profileService interface {
	UserProfile(ctx context.Context) (*models.ProfileResult, error)
	UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
}

// ProfileHandler serves the profile view.
type ProfileHandler struct {
	profiles profileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles profileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get godoc
// @Summary Current user profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	result, err := h.profiles.UserProfile(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if result.User == nil {
		renderError(c, appErrors.Clone(appErrors.ErrTokenRejected, result.Detail))
		return
	}
	response.JSON(c, http.StatusOK, dto.ProfilePage{User: *result.User, Capabilities: service.CapabilitiesFor(result.User.Role)})
}

// Update godoc
// @Summary Update the current user profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBind(&update); err != nil {
		response.Error(c, bindError(err, "invalid profile payload"))
		return
	}
	user, err := h.profiles.UpdateUserProfile(c.Request.Context(), update)
	if err != nil {
		renderError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ProfilePage{User: *user, Capabilities: service.CapabilitiesFor(user.Role)})
}
