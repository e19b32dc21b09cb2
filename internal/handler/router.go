package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/middleware"
)

// Handlers groups every handler mounted by RegisterRoutes.
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Schedule    *ScheduleHandler
	Assignments *AssignmentHandler
	Attendance  *AttendanceHandler
	Groups      *GroupHandler
	Metrics     *MetricsHandler
}

// RouteOptions carries the middleware the routes depend on.
type RouteOptions struct {
	// Guard rejects requests without a live session.
	Guard gin.HandlerFunc
	// LoginLimit throttles login attempts. Nil disables it.
	LoginLimit gin.HandlerFunc
	// ExposeMetrics mounts /metrics.
	ExposeMetrics bool
	// AuditLogger records successful mutations. Nil disables auditing.
	AuditLogger *zap.Logger
}

// RegisterRoutes mounts the portal routes on r. The browser session middleware must already be
// installed on r.
func RegisterRoutes(r gin.IRouter, h Handlers, opts RouteOptions) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		if opts.ExposeMetrics {
			r.GET("/metrics", h.Metrics.Prometheus)
		}
	}

	r.GET("/", h.Auth.Root)
	r.GET("/nav", h.Auth.Nav)
	r.GET("/login", h.Auth.LoginPage)
	if opts.LoginLimit != nil {
		r.POST("/login", opts.LoginLimit, h.Auth.Login)
	} else {
		r.POST("/login", h.Auth.Login)
	}
	r.GET("/register", h.Auth.RegisterPage)
	r.POST("/register", h.Auth.Register)
	r.POST("/logout", h.Auth.Logout)

	secured := r.Group("")
	if opts.Guard != nil {
		secured.Use(opts.Guard)
	}
	staff := middleware.RequireStaff()
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(opts.AuditLogger, action, resource)
	}

	secured.GET("/profile", h.Profile.Get)
	secured.PUT("/profile", audit("update", "profile"), h.Profile.Update)

	secured.GET("/schedule", h.Schedule.Page)
	secured.POST("/schedule", staff, audit("create", "schedule"), h.Schedule.Create)
	secured.PUT("/schedule/:id", staff, audit("update", "schedule"), h.Schedule.Update)
	secured.DELETE("/schedule/:id", staff, audit("delete", "schedule"), h.Schedule.Delete)

	secured.GET("/assignments", h.Assignments.List)
	secured.POST("/assignments", staff, audit("create", "assignment"), h.Assignments.Create)
	secured.GET("/assignments/:id", h.Assignments.Get)
	secured.PUT("/assignments/:id", staff, audit("update", "assignment"), h.Assignments.Update)
	secured.DELETE("/assignments/:id", staff, audit("delete", "assignment"), h.Assignments.Delete)
	secured.POST("/assignments/:id/submit", audit("submit", "assignment"), h.Assignments.Submit)
	secured.POST("/assignments/:id/files", h.Assignments.Upload)
	secured.DELETE("/assignments/:id/files/:fileId", audit("delete", "assignment_file"), h.Assignments.DeleteFile)
	secured.GET("/files/:id", h.Assignments.Download)

	secured.GET("/groups", h.Groups.List)

	secured.GET("/attendance", h.Attendance.Page)
	secured.POST("/attendance", staff, audit("create", "attendance"), h.Attendance.Create)
	secured.GET("/attendance/stats", h.Attendance.Stats)
	secured.GET("/attendance/export", h.Attendance.Export)
	secured.PUT("/attendance/:id", staff, audit("update", "attendance"), h.Attendance.Update)
	secured.GET("/attendance/schedules/:scheduleId/students", staff, h.Attendance.Roster)
	secured.POST("/attendance/schedules/:scheduleId", staff, audit("bulk", "attendance"), h.Attendance.SaveBulk)
}
