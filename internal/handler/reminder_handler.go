package handler

import (
	"context"
	"net/http"

	"researchhub/internal/model"
	"researchhub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReminderService interface {
	Create(ctx context.Context, userID int64, in service.CreateReminderInput) (*model.Reminder, error)
	List(ctx context.Context, userID int64, projectID, paperID *int64) ([]model.Reminder, error)
	Delete(ctx context.Context, userID, id int64) error
}

type ReminderHandler struct {
	reminders ReminderService
	logger    *zap.Logger
}

func NewReminderHandler(reminders ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, logger: logger}
}

// Create handles POST /reminders
func (h *ReminderHandler) Create(c *gin.Context) {
	var in service.CreateReminderInput
	if err := bindJSON(c, &in); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	r, err := h.reminders.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// List handles GET /reminders?project_id=|paper_id=
func (h *ReminderHandler) List(c *gin.Context) {
	projectID, err := queryID(c, "project_id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	paperID, err := queryID(c, "paper_id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	list, err := h.reminders.List(c.Request.Context(), userID(c), projectID, paperID)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": list})
}

// Delete handles DELETE /reminders/:id
func (h *ReminderHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	if err := h.reminders.Delete(c.Request.Context(), userID(c), id); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
