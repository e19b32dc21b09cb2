package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-portal/internal/apiclient"
	"github.com/noah-isme/sma-portal/internal/models"
	"github.com/noah-isme/sma-portal/internal/repository"
	"github.com/noah-isme/sma-portal/internal/service"
)

type stubAuthenticator struct {
	session *models.Session
}

func (s stubAuthenticator) Authenticated(context.Context) (*models.Session, bool) {
	return s.session, s.session.HasToken()
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireSessionRedirectsToLogin(t *testing.T) {
	router := gin.New()
	router.Use(RequireSession(stubAuthenticator{}))
	router.GET("/attendance", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/assignments", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attendance?tab=today", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirectUrl=%2Fattendance", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/assignments", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequireSessionStoresUser(t *testing.T) {
	session := &models.Session{Token: "tok", User: models.User{ID: "u1", Role: models.RoleTeacher}}
	router := gin.New()
	router.Use(RequireSession(stubAuthenticator{session: session}))
	router.GET("/schedule", func(c *gin.Context) {
		user := CurrentUser(c)
		require.NotNil(t, user)
		c.String(http.StatusOK, user.ID)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	withUser := func(user *models.User) gin.HandlerFunc {
		return func(c *gin.Context) {
			if user != nil {
				c.Set(ContextUserKey, user)
			}
			c.Next()
		}
	}
	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"teacher", &models.User{Role: "TEACHER"}, http.StatusNoContent},
		{"admin", &models.User{Role: models.RoleAdmin}, http.StatusNoContent},
		{"student", &models.User{Role: models.RoleStudent}, http.StatusForbidden},
		{"unknown role", &models.User{Role: "guest"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/schedule", withUser(tc.user), RequireStaff(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schedule", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestTokenBucketLimitsAndRefills(t *testing.T) {
	limiter := NewTokenBucket(2, 60)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("5.6.7.8"))

	now = now.Add(2 * time.Second)
	assert.True(t, limiter.Allow("1.2.3.4"))
}

func TestTokenBucketSweepsRefilledBuckets(t *testing.T) {
	limiter := NewTokenBucket(3, 1)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("busy"))
	}
	assert.True(t, limiter.Allow("idle"))
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(61 * time.Second)
	assert.True(t, limiter.Allow("fresh"))
	assert.Equal(t, 2, limiter.Len())

	assert.True(t, limiter.Allow("busy"))
	assert.False(t, limiter.Allow("busy"))
}

func TestTokenBucketMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/login", NewTokenBucket(1, 1).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
}

func TestBindSessionExposesCarrierAndPage(t *testing.T) {
	router := gin.New()
	router.Use(sessions.Sessions("portal", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))), BindSession())
	router.GET("/attendance", func(c *gin.Context) {
		_, ok := repository.CarrierFromContext(c.Request.Context())
		assert.True(t, ok)
		c.String(http.StatusOK, apiclient.PageFromContext(c.Request.Context()))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attendance", nil))
	assert.Equal(t, "/attendance", rec.Body.String())
}

func TestMetricsMiddlewareObservesRoute(t *testing.T) {
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/assignments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assignments/42", nil))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" && label.GetValue() == "/assignments/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestDeriveCookieKeysIsDeterministic(t *testing.T) {
	hashA, blockA, err := deriveCookieKeys("secret")
	require.NoError(t, err)
	hashB, blockB, err := deriveCookieKeys("secret")
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)
	assert.Equal(t, blockA, blockB)
	assert.Len(t, blockA, 32)
	assert.NotEqual(t, hashA, blockA)

	other, _, err := deriveCookieKeys("other")
	require.NoError(t, err)
	assert.NotEqual(t, hashA, other)

	_, err = NewCookieStore(CookieStoreOptions{})
	assert.Error(t, err)
}

func TestCookieStoreRoundTripsSession(t *testing.T) {
	store, err := NewCookieStore(CookieStoreOptions{Secret: "secret", TTL: time.Hour})
	require.NoError(t, err)

	router := gin.New()
	router.Use(sessions.Sessions("portal", store))
	router.GET("/set", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set("sid", "abc")
		require.NoError(t, s.Save())
		c.Status(http.StatusNoContent)
	})
	router.GET("/get", func(c *gin.Context) {
		value, _ := sessions.Default(c).Get("sid").(string)
		c.String(http.StatusOK, value)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
}

func TestAuditLogsSuccessfulMutations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.User{ID: "t1", Role: models.RoleTeacher})
	})
	router.DELETE("/schedule/:id", Audit(zap.New(core), "delete", "schedule"), func(c *gin.Context) {
		if c.Query("fail") != "" {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/schedule/7?fail=1", nil))
	assert.Equal(t, 0, logs.Len())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/schedule/7", nil))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "delete", fields["action"])
	assert.Equal(t, "7", fields["resource_id"])
	assert.Equal(t, "t1", fields["user_id"])
}
