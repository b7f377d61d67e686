package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/exports"
	"docproc-backend/internal/processing"
	"docproc-backend/internal/shared/config"
	"docproc-backend/internal/shared/metrics"
	"docproc-backend/internal/shared/server/middleware"
	"docproc-backend/internal/shared/server/respond"
	"docproc-backend/internal/tags"
	"docproc-backend/internal/users"
)

// callbackRateRule bounds the unauthenticated callback endpoint.
var callbackRateRule = middleware.RateLimitRule{
	Rate:  5,
	Burst: 10,
}

// RouterDeps carries the handlers and configuration the router wires up.
type RouterDeps struct {
	Config          config.Config
	UsersHandler    *users.Handler
	DocumentHandler *documents.Handler
	TagsHandler     *tags.Handler
	ExportsHandler  *exports.Handler
	CallbackHandler *processing.Handler
	ResolveUser     middleware.UserResolver

	// LocalUploadsDir, when set, is served statically under /uploads so the
	// processing webhook can fetch files back. Empty for S3-backed stores.
	LocalUploadsDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.LocalUploadsDir != "" {
		r.Static("/uploads", deps.LocalUploadsDir)
	}

	deps.UsersHandler.RegisterPublicRoutes(&r.RouterGroup)

	callback := r.Group("/")
	callback.Use(middleware.RateLimit(middleware.NewRateLimiter(time.Now), callbackRateRule))
	deps.CallbackHandler.RegisterRoutes(callback)

	authed := r.Group("/")
	authed.Use(middleware.Auth(deps.ResolveUser))
	deps.UsersHandler.RegisterRoutes(authed)
	deps.DocumentHandler.RegisterRoutes(authed)
	deps.TagsHandler.RegisterRoutes(authed)
	deps.ExportsHandler.RegisterRoutes(authed)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
