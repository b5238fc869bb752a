package api

import (
	"time"

	"r2d2-service/docs"
	"r2d2-service/internal/captcha"
	"r2d2-service/internal/metrics"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	APIToken    string
	CORSOrigins []string
	Debug       bool
	Captcha     captcha.Verifier
	FormLimiter *IPRateLimiter
}

func NewRouter(h *Handler, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", captchaTokenHeader, requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}

	router := gin.New()
	router.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		RequestID(),
		cors.New(corsConfig),
	)
	docs.SwaggerInfo.BasePath = "/"

	auth := RequireToken(cfg.APIToken)

	router.GET("/", h.rootHandler)
	router.GET("/health", h.healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	emailRoutes := router.Group("/email")
	{
		emailRoutes.POST("/send-email", auth, h.sendEmailHandler)
		emailRoutes.GET("/sent-emails", h.getSentEmailsHandler)
		emailRoutes.GET("/email-status/:id", h.getEmailStatusHandler)
		emailRoutes.GET("/all-emails", h.getAllEmailsHandler)
		emailRoutes.GET("/recent-sent", h.getRecentSentEmailsHandler)
		emailRoutes.POST("/cronjob-send-queued-emails", auth, h.sweepQueuedEmailsHandler)
		emailRoutes.PUT("/toggle-job", auth, h.toggleSweepJobHandler)
	}

	formRoutes := router.Group("/forms")
	{
		submit := []gin.HandlerFunc{}
		if cfg.FormLimiter != nil {
			submit = append(submit, cfg.FormLimiter.Middleware())
		}
		submit = append(submit, RequireCaptcha(cfg.Captcha, log.Sugar()), h.createZaansrechtFormHandler)
		formRoutes.POST("/zaansrecht", submit...)
		formRoutes.GET("/", auth, h.getFormsHandler)
		formRoutes.PUT("/:id/status", auth, h.updateFormStatusHandler)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
