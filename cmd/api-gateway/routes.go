package main

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/noah-isme/church-events-api/api/swagger"
	"github.com/noah-isme/church-events-api/internal/handler"
	"github.com/noah-isme/church-events-api/internal/middleware"
	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/internal/service"
	"github.com/noah-isme/church-events-api/pkg/config"
	"github.com/noah-isme/church-events-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/church-events-api/pkg/middleware/cors"
	"github.com/noah-isme/church-events-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/church-events-api/pkg/middleware/requestid"
)

type routerDeps struct {
	auth    middleware.TokenValidator
	metrics *service.MetricsService

	metricsH      *handler.MetricsHandler
	authH         *handler.AuthHandler
	registrationH *handler.RegistrationHandler
	otpH          *handler.OTPHandler
	eventH        *handler.EventHandler
	documentH     *handler.DocumentHandler
	quizAdminH    *handler.QuizAdminHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics, "/metrics"))

	r.GET("/health", deps.metricsH.Health)
	r.GET("/ready", deps.metricsH.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", deps.metricsH.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	// Public form submissions share one bucket per client.
	var throttle gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.PerMinute > 0 {
		throttle = ratelimit.PerClient(rate.Every(time.Minute/time.Duration(cfg.RateLimit.PerMinute)), cfg.RateLimit.Burst, 10*time.Minute)
	}

	api.POST("/bible-quiz/registrations", throttle, deps.registrationH.Submit)
	api.POST("/otp/send", throttle, deps.otpH.Send)
	api.POST("/otp/verify", throttle, deps.otpH.Verify)
	api.GET("/events", deps.eventH.ListUpcoming)
	api.GET("/events/:id", deps.eventH.Get)
	api.POST("/events/:id/registrations", throttle, deps.eventH.Register)
	api.GET("/documents/:token", deps.documentH.Download)

	auth := api.Group("/auth")
	auth.POST("/login", throttle, deps.authH.Login)
	auth.POST("/refresh", deps.authH.Refresh)
	auth.POST("/logout", middleware.JWT(deps.auth), deps.authH.Logout)
	auth.GET("/me", middleware.JWT(deps.auth), deps.authH.Me)

	readers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleViewer)
	writers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	owners := middleware.RequireRoles(models.RoleSuperAdmin)

	admin := api.Group("/admin", middleware.JWT(deps.auth))

	quiz := admin.Group("/bible-quiz")
	quiz.GET("/registrations", readers, deps.quizAdminH.List)
	quiz.GET("/registrations/:id", readers, deps.quizAdminH.Get)
	quiz.GET("/registrations/:id/document", readers, deps.quizAdminH.Document)
	quiz.DELETE("/registrations/:id", owners, deps.quizAdminH.Delete)
	quiz.GET("/summary", readers, deps.quizAdminH.Summary)
	quiz.GET("/export", readers, deps.quizAdminH.Export)

	events := admin.Group("/events")
	events.GET("", readers, deps.eventH.AdminList)
	events.GET("/:id", readers, deps.eventH.AdminGet)
	events.POST("", writers, deps.eventH.Create)
	events.PUT("/:id", writers, deps.eventH.Update)
	events.DELETE("/:id", writers, deps.eventH.Delete)
	events.GET("/:id/registrations", readers, deps.eventH.ListRegistrations)

	return r
}
