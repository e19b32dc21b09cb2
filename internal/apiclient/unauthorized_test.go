package apiclient

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

func rejectAll(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
}

func TestUnauthorizedOnRegularEndpointClearsSessionOnce(t *testing.T) {
	srv, _ := newBackend(t, rejectAll)
	session := &fakeSession{token: "tok"}
	metrics := &fakeMetrics{}
	client := newTestClient(srv, session, WithMetrics(metrics))

	ctx := WithPage(context.Background(), "/assignments")
	_, err := client.ListAssignments(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
	assert.Equal(t, 1, session.cleared)
	assert.Equal(t, 1, metrics.cleared)
	assert.Empty(t, session.token)
}

func TestUnauthorizedOnAttendanceEndpointWithTokenIsSoft(t *testing.T) {
	srv, _ := newBackend(t, rejectAll)
	session := &fakeSession{token: "tok"}
	client := newTestClient(srv, session)

	ctx := WithPage(context.Background(), "/schedule")
	_, err := client.ListAttendance(ctx, models.AttendanceQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTokenRejected))
	assert.True(t, appErrors.IsAuth(err))
	assert.Equal(t, 0, session.cleared)
	assert.Equal(t, "tok", session.token)
}

func TestUnauthorizedOnAttendancePageIsSoft(t *testing.T) {
	srv, _ := newBackend(t, rejectAll)
	session := &fakeSession{token: "tok"}
	client := newTestClient(srv, session)

	ctx := WithPage(context.Background(), "/attendance")
	_, err := client.ListGroups(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrTokenRejected))
	assert.Equal(t, 0, session.cleared)
}

func TestUnauthorizedOnAttendanceWithoutTokenClears(t *testing.T) {
	srv, _ := newBackend(t, rejectAll)
	session := &fakeSession{}
	client := newTestClient(srv, session)

	_, err := client.AttendanceStats(WithPage(context.Background(), "/attendance"), "")
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
	assert.Equal(t, 1, session.cleared)
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login?redirectUrl=%2Fassignments", LoginRedirect("/assignments"))
	assert.Equal(t, "/login", LoginRedirect("/login"))
	assert.Equal(t, "/login", LoginRedirect("/register"))
	assert.Equal(t, "/login", LoginRedirect(""))
}
