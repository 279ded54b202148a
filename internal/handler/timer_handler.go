package handler

import (
	"errors"
	"io"
	"net/http"

	"researchhub/internal/timer"
	"researchhub/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TimerHandler struct {
	timers *timer.Manager
	logger *zap.Logger
}

func NewTimerHandler(timers *timer.Manager, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{timers: timers, logger: logger}
}

// Start handles POST /timer/start. An empty body starts with the defaults.
func (h *TimerHandler) Start(c *gin.Context) {
	var cfg timer.Config
	if err := c.ShouldBindJSON(&cfg); err != nil && !errors.Is(err, io.EOF) {
		RenderError(c, h.logger, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	snap, err := h.timers.Start(userID(c), cfg.WithDefaults())
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Stop handles POST /timer/stop
func (h *TimerHandler) Stop(c *gin.Context) {
	snap, ok := h.timers.Stop(userID(c))
	if !ok {
		RenderError(c, h.logger, apperr.NotFound("timer session"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Status handles GET /timer; pending alerts are delivered once.
func (h *TimerHandler) Status(c *gin.Context) {
	snap, ok := h.timers.Status(userID(c))
	if !ok {
		RenderError(c, h.logger, apperr.NotFound("timer session"))
		return
	}
	c.JSON(http.StatusOK, snap)
}
