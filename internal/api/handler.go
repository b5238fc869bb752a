package api

import (
	"context"
	"errors"
	"net/http"

	"r2d2-service/internal/services"
	"r2d2-service/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QueueSweeper interface {
	Sweep(ctx context.Context, trigger string) (services.SweepReport, error)
}

// JobController is the periodic sweep job as seen by the HTTP layer.
type JobController interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	Trigger()
}

// HealthCheck returns nil when a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	emailService services.EmailService
	formService  services.FormService
	sweeper      QueueSweeper
	jobs         JobController
	health       map[string]HealthCheck
	appCtx       context.Context
	log          *zap.SugaredLogger
}

func NewHandler(
	appCtx context.Context,
	emailService services.EmailService,
	formService services.FormService,
	sweeper QueueSweeper,
	jobs JobController,
	health map[string]HealthCheck,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		emailService: emailService,
		formService:  formService,
		sweeper:      sweeper,
		jobs:         jobs,
		health:       health,
		appCtx:       appCtx,
		log:          log,
	}
}

// writeError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	var dbErr *types.DatabaseError
	switch {
	case errors.Is(err, types.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msg + ": not found"})
	case errors.Is(err, types.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrCaptchaFailed), errors.Is(err, types.ErrTermsNotAccepted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrSweepInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &dbErr):
		h.log.Errorw(msg, "op", dbErr.Op, "error", dbErr.Err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected database error occurred"})
	default:
		h.log.Errorw(msg, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred"})
	}
}

// rootHandler
// @Summary  Service banner
// @Tags     Health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   / [get]
func (h *Handler) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello R2D2 services"})
}

// healthHandler
// @Summary  Health check
// @Description  Pings every backing service.
// @Tags     Health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) healthHandler(c *gin.Context) {
	result := gin.H{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.health {
		if err := check(c.Request.Context()); err != nil {
			h.log.Warnw("Health check failed", "dependency", name, "error", err)
			result[name] = "unavailable"
			result["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	c.JSON(code, result)
}
