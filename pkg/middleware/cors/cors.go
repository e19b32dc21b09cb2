package cors

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/pkg/middleware/requestid"
)

// New returns the CORS middleware for the given origins. An empty list reflects any origin,
// which keeps credentialed requests working in development.
func New(allowedOrigins []string) gin.HandlerFunc {
	return gincors.New(Config(allowedOrigins))
}

// Config builds the gin-contrib/cors configuration used by New.
func Config(allowedOrigins []string) gincors.Config {
	cfg := gincors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Requested-With", requestid.Header},
		ExposeHeaders:    []string{requestid.Header, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
