package v1

import (
	"net/http"
	"time"

	"agency-contact-api/config"
	"agency-contact-api/internal/delivery/http/middleware"
	"agency-contact-api/internal/delivery/http/response"
	"agency-contact-api/internal/domain"
	"agency-contact-api/internal/usecase"
	"agency-contact-api/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  usecase.HealthUsecase
	Guard     SubmissionGuard                    // optional duplicate guard
	GuardKey  func(domain.SubmissionForm) string // key derivation for Guard
	Audit     *security.SecurityLogger           // defaults to security.DefaultLogger()
	Provider  string                             // provider name recorded in audit events
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	origins, production := []string(nil), false
	limit, window := 0, time.Duration(0)
	if deps.Config != nil {
		origins, production = deps.Config.AllowedOrigins, deps.Config.IsProduction()
		limit = deps.Config.RateLimitContactThreshold
		window = time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
	}

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(origins, production)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.GlobalRateLimitMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	// Public routes
	contactLimit := middleware.ContactRateLimitConfig(limit, window)
	contactLimit.Audit = deps.Audit
	NewContactHandler(v1, deps, middleware.RateLimitMiddleware(contactLimit))

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
