package router

import (
	"net/http"
	"time"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/handler"
	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Session   *handler.SessionHandler
	Practice  *handler.PracticeHandler
	Analytics *handler.AnalyticsHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Compress())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireStudentJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireStudentJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
	)
	{
		studentAPI.GET("/tests", handlers.Catalog.ListTests)
		studentAPI.GET("/tests/:test_id/paper", handlers.Catalog.GetTestPaper)

		studentAPI.POST("/tests/:test_id/sessions", handlers.Session.CreateSession)
		studentAPI.GET("/sessions/:session_id", handlers.Session.GetSession)
		studentAPI.POST("/sessions/:session_id/device", handlers.Session.ReportDevice)
		studentAPI.POST("/sessions/:session_id/start", handlers.Session.StartSession)
		studentAPI.POST("/sessions/:session_id/answers", handlers.Session.SaveAnswer)
		studentAPI.POST("/sessions/:session_id/navigate", handlers.Session.Navigate)
		studentAPI.POST("/sessions/:session_id/submit", handlers.Session.SubmitSession)
		studentAPI.POST("/sessions/:session_id/cancel", handlers.Session.CancelSession)
		studentAPI.POST("/sessions/:session_id/flags", handlers.Session.ReportFlag)

		studentAPI.POST("/practice/evaluate", handlers.Practice.Evaluate)

		studentAPI.GET("/tests/:test_id/result", handlers.Analytics.GetLatestResult)
		studentAPI.GET("/results", handlers.Analytics.ListResults)
		studentAPI.GET("/activity", handlers.Analytics.GetActivity)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/tests/:id/monitor", handlers.Monitor.MonitorTestStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/tests", handlers.Catalog.CreateTest)
		adminAPI.GET("/tests/:test_id", handlers.Catalog.GetTest)
	}

	return router
}
