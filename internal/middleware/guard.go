package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/models"
)

// ContextUserKey is the gin context key storing the signed-in user.
const ContextUserKey = "currentUser"

type authenticator interface {
	Authenticated(ctx context.Context) (*models.Session, bool)
}

// RequireSession protects pages that need a live session. Without one the browser is sent to
// the login page with the current path as the return target.
func RequireSession(sessions authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Authenticated(c.Request.Context())
		if !ok {
			RedirectToLogin(c, c.Request.URL.Path)
			c.Abort()
			return
		}
		user := session.User
		c.Set(ContextUserKey, &user)
		c.Next()
	}
}

// RedirectToLogin sends the browser to the login page. GET keeps 302; other methods use 303 so
// the browser follows with a GET.
func RedirectToLogin(c *gin.Context, page string) {
	status := http.StatusFound
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	c.Redirect(status, apiclient.LoginRedirect(page))
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
