package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/sma-portal/internal/middleware"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/response"
)

const defaultLanding = "/schedule"

// renderError writes err as an error envelope. An expired session becomes the login redirect.
func renderError(c *gin.Context, err error) {
	if appErrors.HasCode(err, appErrors.ErrSessionExpired.Code) {
		_ = c.Error(err)
		middleware.RedirectToLogin(c, c.Request.URL.Path)
		return
	}
	response.Error(c, err)
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

// confirmed reads the confirm query or form flag.
func confirmed(c *gin.Context) bool {
	raw := c.Query("confirm")
	if raw == "" {
		raw = c.PostForm("confirm")
	}
	ok, _ := strconv.ParseBool(raw)
	return ok
}

// isFormPost reports whether the request came from an HTML form, which expects a redirect
// rather than a JSON body.
func isFormPost(c *gin.Context) bool {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// safeRedirect keeps only same-site absolute paths.
func safeRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return defaultLanding
	}
	if raw == "/login" || raw == "/register" {
		return defaultLanding
	}
	return raw
}
