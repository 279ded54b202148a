package handler

import (
	"strconv"

	"researchhub/pkg/apperr"
	"researchhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserID is the gin context key the auth middleware stores the caller's id under.
const ContextUserID = "user_id"

type errorBody struct {
	Kind      apperr.Kind `json:"kind"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
}

// RenderError writes err as {"error": {...}} with the status of its kind.
// Internal errors are logged with their cause; the client only sees the
// public message.
func RenderError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUpstream {
		logger.WithTrace(c, log).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": errorBody{
		Kind:      kind,
		Message:   apperr.PublicMessage(err),
		Retryable: apperr.Retryable(err),
	}})
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid %s", name)
	}
	return &id, nil
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}
