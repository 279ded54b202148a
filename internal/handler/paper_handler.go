package handler

import (
	"context"
	"net/http"

	"researchhub/internal/model"
	"researchhub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaperService interface {
	Create(ctx context.Context, userID int64, in service.CreatePaperInput) (*model.ResearchPaper, error)
	List(ctx context.Context, userID int64, limit int) ([]model.ResearchPaper, error)
	Get(ctx context.Context, userID, id int64) (*model.PaperWithContents, error)
	Update(ctx context.Context, userID, id int64, u model.PaperUpdate) (*model.ResearchPaper, error)
	Delete(ctx context.Context, userID, id int64) error
	GenerateSection(ctx context.Context, userID, paperID int64, section model.SectionType) (string, error)
	SaveSection(ctx context.Context, userID, paperID int64, in service.SaveSectionInput) (*model.PaperContent, error)
	Format(ctx context.Context, userID, paperID int64, style string) (string, error)
}

type PaperHandler struct {
	papers PaperService
	logger *zap.Logger
}

func NewPaperHandler(papers PaperService, logger *zap.Logger) *PaperHandler {
	return &PaperHandler{papers: papers, logger: logger}
}

// Create handles POST /papers
func (h *PaperHandler) Create(c *gin.Context) {
	var in service.CreatePaperInput
	if err := bindJSON(c, &in); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.papers.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /papers
func (h *PaperHandler) List(c *gin.Context) {
	list, err := h.papers.List(c.Request.Context(), userID(c), queryLimit(c))
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"papers": list})
}

// Get handles GET /papers/:id
func (h *PaperHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.papers.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles PATCH /papers/:id
func (h *PaperHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	var u model.PaperUpdate
	if err := bindJSON(c, &u); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	p, err := h.papers.Update(c.Request.Context(), userID(c), id, u)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /papers/:id
func (h *PaperHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	if err := h.papers.Delete(c.Request.Context(), userID(c), id); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateSection handles POST /papers/:id/sections/generate
func (h *PaperHandler) GenerateSection(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	var req struct {
		SectionType model.SectionType `json:"section_type" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	text, err := h.papers.GenerateSection(c.Request.Context(), userID(c), id, req.SectionType)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"section_type": req.SectionType, "content": text})
}

// SaveSection handles PUT /papers/:id/sections
func (h *PaperHandler) SaveSection(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	var in service.SaveSectionInput
	if err := bindJSON(c, &in); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	content, err := h.papers.SaveSection(c.Request.Context(), userID(c), id, in)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// Format handles POST /papers/:id/format
func (h *PaperHandler) Format(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	var req struct {
		Style string `json:"style" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	out, err := h.papers.Format(c.Request.Context(), userID(c), id, req.Style)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": out})
}

// Venues handles GET /papers/venues?domain=
func (h *PaperHandler) Venues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"venues": service.SuggestVenues(c.Query("domain"))})
}
