package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"researchhub/pkg/apperr"
	"researchhub/pkg/logger"
	"researchhub/pkg/metrics"
	"researchhub/pkg/trace"
	"researchhub/pkg/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextClaims = "claims"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
}

// AuthMiddleware rejects requests without a valid, unrevoked bearer token
// and stores the caller's id under ContextUserID.
func AuthMiddleware(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			RenderError(c, log, apperr.Unauthorized("missing token"))
			return
		}
		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			RenderError(c, log, err)
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(contextClaims, claims)
		c.Next()
	}
}

// TraceMiddleware propagates X-Trace-ID, generating one when absent.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Set(trace.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if uid := c.GetInt64(ContextUserID); uid != 0 {
			fields = append(fields, zap.Int64("user_id", uid))
		}

		l := logger.WithTrace(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Error("HTTP request", fields...)
		case status >= 400:
			l.Warn("HTTP request", fields...)
		default:
			l.Info("HTTP request", fields...)
		}
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", trace.HeaderName()},
		ExposeHeaders:    []string{trace.HeaderName()},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
