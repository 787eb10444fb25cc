package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-screen-inspector/internal/config"
	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/logger"
	"go-screen-inspector/internal/observer"
	"go-screen-inspector/internal/service"
	"go-screen-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// NewHandler builds the HTTP bridge in front of the analysis service.
// metrics may be nil, in which case /metrics reports zeros.
func NewHandler(svc service.ScreenAnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsHandler(metrics))
	r.POST("/analyze", analyzeImage(svc, cfg))

	return r
}

func analyzeImage(svc service.ScreenAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing screen analysis request")

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				respondError(c, http.StatusRequestEntityTooLarge,
					apperrors.NewValidationError("request body too large", err))
				return
			}
			respondError(c, http.StatusBadRequest,
				apperrors.NewValidationError("invalid request format", err))
			return
		}

		resp, err := svc.Analyze(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), err)
			return
		}

		logger.WithFields(logrus.Fields{
			"request_id":                 resp.RequestID,
			"source":                     resp.Source,
			"processing_time_ms":         time.Since(startTime).Milliseconds(),
			"screen_reflection_detected": resp.ScreenReflectionDetected,
		}).Info("Screen analysis completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func metricsHandler(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var snapshot observer.MetricsSnapshot
		if metrics != nil {
			snapshot = metrics.GetMetrics()
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.CodeTimeout
	}
	return apperrors.CodeAnalysisError
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func respondError(c *gin.Context, status int, err error) {
	code := errorCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": status,
		"code":        code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: errorMessage(err),
	})
}
