package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"researchhub/internal/mail"
	"researchhub/internal/model"
	"researchhub/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

type DocumentService interface {
	Convert(ctx context.Context, text, format string) (string, error)
	ConvertDocx(ctx context.Context, data []byte, format string) (string, error)
	CheckPlagiarism(ctx context.Context, text string) (string, error)
	SearchScholar(ctx context.Context, q string) ([]model.ScholarResult, error)
	SendEmail(ctx context.Context, msg mail.Message) error
	Upload(ctx context.Context, userID int64, name, contentType string, r io.Reader) (string, error)
}

// ToolsHandler serves the stateless proxy endpoints.
type ToolsHandler struct {
	docs   DocumentService
	logger *zap.Logger
}

func NewToolsHandler(docs DocumentService, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{docs: docs, logger: logger}
}

// Scholar handles GET /scholar?q=
func (h *ToolsHandler) Scholar(c *gin.Context) {
	results, err := h.docs.SearchScholar(c.Request.Context(), c.Query("q"))
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// SendEmail handles POST /email
func (h *ToolsHandler) SendEmail(c *gin.Context) {
	var req struct {
		To      string `json:"to" binding:"required"`
		Subject string `json:"subject" binding:"required"`
		Text    string `json:"text" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	err := h.docs.SendEmail(c.Request.Context(), mail.Message{To: req.To, Subject: req.Subject, Text: req.Text})
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}

// Convert handles POST /convert. It accepts either JSON {text, format} or a
// multipart form with a .docx "file" and a "format" field.
func (h *ToolsHandler) Convert(c *gin.Context) {
	var (
		out string
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		out, err = h.convertUpload(c)
	} else {
		var req struct {
			Text   string `json:"text"`
			Format string `json:"format"`
		}
		if err = bindJSON(c, &req); err == nil {
			out, err = h.docs.Convert(c.Request.Context(), req.Text, req.Format)
		}
	}
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": out})
}

func (h *ToolsHandler) convertUpload(c *gin.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", apperr.Validation("a .docx file is required")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".docx") {
		return "", apperr.Validation("only .docx files can be converted")
	}
	data, err := readFormFile(fh)
	if err != nil {
		return "", err
	}
	return h.docs.ConvertDocx(c.Request.Context(), data, c.PostForm("format"))
}

// Plagiarism handles POST /plagiarism
func (h *ToolsHandler) Plagiarism(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	out, err := h.docs.CheckPlagiarism(c.Request.Context(), req.Text)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}

// Upload handles POST /uploads (multipart "file").
func (h *ToolsHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		RenderError(c, h.logger, apperr.Validation("file is required"))
		return
	}
	if fh.Size > maxUploadBytes {
		RenderError(c, h.logger, apperr.Validation("file exceeds %d bytes", maxUploadBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		RenderError(c, h.logger, apperr.Internal("open upload", err))
		return
	}
	defer f.Close()

	loc, err := h.docs.Upload(c.Request.Context(), userID(c), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": loc})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, apperr.Validation("file exceeds %d bytes", maxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("open upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, apperr.Internal("read upload", err)
	}
	return data, nil
}
