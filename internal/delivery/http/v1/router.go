package v1

import (
	"net/http"
	"time"

	"handyman-recruitment-backend/config"
	"handyman-recruitment-backend/internal/delivery/http/middleware"
	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/logger"
	"handyman-recruitment-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CandidateUC   domain.CandidateUsecase
	EnquiryUC     domain.EnquiryUsecase
	ContactUC     domain.ContactUsecase
	AccessUC      domain.AccessUsecase
	HealthUC      usecase.HealthUsecase
	Verifier      middleware.TokenVerifier
	UploadLimiter *security.UploadLimiter
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.SlogLogger(logger.Log))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.CSRFMiddleware(cfg.IsProduction()))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		if status["status"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		response.Success(c, code, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public intake
	submitLimit := middleware.RateLimitMiddleware(middleware.SubmitRateLimitConfig(cfg.RateLimitSubmitThreshold, window))
	uploadLimit := middleware.UploadRateLimitMiddleware(deps.UploadLimiter)

	NewCandidateHandler(v1, deps.CandidateUC, cfg.MaxUploadBytes, submitLimit, uploadLimit)
	NewEnquiryHandler(v1, deps.EnquiryUC, submitLimit)
	NewContactHandler(v1, deps.ContactUC, submitLimit)

	// Authenticated
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(deps.Verifier, deps.AccessUC, true))
	{
		NewMeHandler(authed, deps.AccessUC)

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(deps.AccessUC, domain.RoleAdmin))
		NewAdminHandler(admin, deps.CandidateUC, deps.EnquiryUC, deps.ContactUC, deps.AccessUC)
	}

	return r
}
