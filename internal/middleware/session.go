package middleware

import (
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/hkdf"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/repository"
)

// CookieStoreOptions configure the browser session cookie.
type CookieStoreOptions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// NewCookieStore returns a signed and encrypted cookie store whose keys are derived from the
// configured secret.
func NewCookieStore(opts CookieStoreOptions) (cookie.Store, error) {
	hashKey, blockKey, err := deriveCookieKeys(opts.Secret)
	if err != nil {
		return nil, err
	}
	store := cookie.NewStore(hashKey, blockKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func deriveCookieKeys(secret string) ([]byte, []byte, error) {
	if secret == "" {
		return nil, nil, errors.New("session secret is empty")
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("portal-session-cookie"))
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

// BindSession exposes the browser session and the current page path on the request context
// so the session repositories and the backend client can reach them. It must run after
// sessions.Sessions.
func BindSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := repository.WithCarrier(c.Request.Context(), sessions.Default(c))
		ctx = apiclient.WithPage(ctx, c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
