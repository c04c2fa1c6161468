package middlewares

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured origins. Production without an
// allowlist denies all cross-origin requests; elsewhere every origin is
// allowed.
func CORSMiddleware(allowedOrigins []string, production bool) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	switch {
	case len(allowedOrigins) > 0:
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	case production:
		// cors.New rejects a config with no origin source at all.
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	default:
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", CorrelationIdHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", CorrelationIdHeader)
	return cors.New(corsConfig)
}
