package handler

import (
	"context"
	"net/http"

	"researchhub/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectService interface {
	GenerateIdea(ctx context.Context, userID int64, quiz model.IdeaQuiz) (*model.GeneratedIdea, error)
	Elaborate(ctx context.Context, ideaText string) (*model.Elaboration, error)
	Create(ctx context.Context, userID int64, p *model.Project) error
	List(ctx context.Context, userID int64, limit int) ([]model.ProjectWithProgress, error)
	Get(ctx context.Context, userID, id int64) (*model.ProjectWithProgress, error)
	Update(ctx context.Context, userID, id int64, u model.ProjectUpdate) (*model.Project, error)
	Complete(ctx context.Context, userID, id int64) (*model.Project, error)
	Delete(ctx context.Context, userID, id int64) error
	GenerateRoadmap(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error)
	Roadmap(ctx context.Context, userID, projectID int64) ([]model.RoadmapStep, error)
	ToggleStep(ctx context.Context, userID, projectID, stepID int64) (*model.RoadmapStep, error)
}

type ProjectHandler struct {
	projects ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// GenerateIdea handles POST /projects/ideas
func (h *ProjectHandler) GenerateIdea(c *gin.Context) {
	var quiz model.IdeaQuiz
	if err := bindJSON(c, &quiz); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	idea, err := h.projects.GenerateIdea(c.Request.Context(), userID(c), quiz)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// Elaborate handles POST /projects/ideas/elaborate
func (h *ProjectHandler) Elaborate(c *gin.Context) {
	var req struct {
		Idea string `json:"idea" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	e, err := h.projects.Elaborate(c.Request.Context(), req.Idea)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type createProjectRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	Complexity        int      `json:"complexity"`
	EstimatedDuration string   `json:"estimated_duration"`
	Features          string   `json:"features"`
	Challenges        string   `json:"challenges"`
	ProjectType       string   `json:"project_type"`
	ExperienceLevel   string   `json:"experience_level"`
	Languages         []string `json:"languages"`
	Device            string   `json:"device"`
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p := &model.Project{
		Name:              req.Name,
		Description:       req.Description,
		Complexity:        req.Complexity,
		EstimatedDuration: req.EstimatedDuration,
		Features:          req.Features,
		Challenges:        req.Challenges,
		ProjectType:       req.ProjectType,
		ExperienceLevel:   req.ExperienceLevel,
		Languages:         req.Languages,
		Device:            req.Device,
	}
	if err := h.projects.Create(c.Request.Context(), userID(c), p); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context(), userID(c), queryLimit(c))
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.projects.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles PATCH /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	var u model.ProjectUpdate
	if err := bindJSON(c, &u); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), userID(c), id, u)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Complete handles POST /projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.projects.Complete(c.Request.Context(), userID(c), id)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	if err := h.projects.Delete(c.Request.Context(), userID(c), id); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateRoadmap handles POST /projects/:id/roadmap/generate
func (h *ProjectHandler) GenerateRoadmap(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	steps, err := h.projects.GenerateRoadmap(c.Request.Context(), userID(c), id)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

// Roadmap handles GET /projects/:id/roadmap
func (h *ProjectHandler) Roadmap(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	steps, err := h.projects.Roadmap(c.Request.Context(), userID(c), id)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

// ToggleStep handles POST /projects/:id/roadmap/:stepID/toggle
func (h *ProjectHandler) ToggleStep(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	stepID, err := pathID(c, "stepID")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	step, err := h.projects.ToggleStep(c.Request.Context(), userID(c), id, stepID)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, step)
}
