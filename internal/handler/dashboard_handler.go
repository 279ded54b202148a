package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dashboardLimit = 5

type DashboardHandler struct {
	projects ProjectService
	papers   PaperService
	logger   *zap.Logger
}

func NewDashboardHandler(projects ProjectService, papers PaperService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{projects: projects, papers: papers, logger: logger}
}

// Get handles GET /dashboard: the most recent projects and papers.
func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	projects, err := h.projects.List(ctx, userID(c), dashboardLimit)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	papers, err := h.papers.List(ctx, userID(c), dashboardLimit)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "papers": papers})
}
