package apiclient

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

type pageKey struct{}

// WithPage records the portal page a backend call is made for.
func WithPage(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pageKey{}, path)
}

// PageFromContext returns the page recorded by WithPage.
func PageFromContext(ctx context.Context) string {
	page, _ := ctx.Value(pageKey{}).(string)
	return page
}

// UnauthorizedPolicy decides what a backend 401 does to the session. Attendance traffic with a
// token still present is a soft failure; anything else ends the session.
type UnauthorizedPolicy struct {
	session SessionStore
	metrics Metrics
	logger  *zap.Logger
}

// NewUnauthorizedPolicy constructs the policy.
func NewUnauthorizedPolicy(session SessionStore, metrics Metrics, logger *zap.Logger) *UnauthorizedPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnauthorizedPolicy{session: session, metrics: metrics, logger: logger}
}

// Handle reacts to a 401 on requestPath. It returns TOKEN_REJECTED without touching the
// session, or clears the session once and returns SESSION_EXPIRED.
func (p *UnauthorizedPolicy) Handle(ctx context.Context, requestPath, detail string) error {
	page := PageFromContext(ctx)
	if (IsAttendanceRequest(requestPath) || IsAttendancePage(page)) && p.hasToken(ctx) {
		p.logger.Warn("backend rejected token on attendance flow, keeping session",
			zap.String("path", requestPath),
			zap.String("page", page),
		)
		msg := appErrors.ErrTokenRejected.Message
		if detail != "" {
			msg = detail
		}
		return appErrors.Clone(appErrors.ErrTokenRejected, msg)
	}

	if p.session != nil {
		if err := p.session.Clear(ctx); err != nil {
			p.logger.Warn("failed to clear session after 401", zap.Error(err))
		}
	}
	if p.metrics != nil {
		p.metrics.ObserveSessionCleared("unauthorized")
	}
	return appErrors.Clone(appErrors.ErrSessionExpired, "")
}

func (p *UnauthorizedPolicy) hasToken(ctx context.Context) bool {
	return p.session != nil && p.session.Token(ctx) != ""
}

// IsAttendanceRequest reports whether a backend path belongs to the attendance flow.
func IsAttendanceRequest(path string) bool {
	return strings.Contains(path, "/attendance") || strings.Contains(path, "/auth/me")
}

// IsAttendancePage reports whether a portal page is an attendance page.
func IsAttendancePage(page string) bool {
	return strings.Contains(page, "/attendance")
}

// LoginRedirect returns the login URL that returns the user to page after signing in.
func LoginRedirect(page string) string {
	if page == "" || page == "/login" || page == "/register" {
		return "/login"
	}
	return "/login?redirectUrl=" + url.QueryEscape(page)
}
