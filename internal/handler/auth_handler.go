package handler

import (
	"context"
	"net/http"

	"researchhub/internal/model"
	"researchhub/internal/service"
	"researchhub/pkg/apperr"
	"researchhub/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
	Logout(ctx context.Context, claims *util.Claims) error
	Me(ctx context.Context, userID int64) (*model.User, error)
}

type AuthHandler struct {
	auth   AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// Register handles POST /auth/signup
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := bindJSON(c, &req); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, _ := c.Get(contextClaims)
	claims, ok := v.(*util.Claims)
	if !ok {
		RenderError(c, h.logger, apperr.Unauthorized("missing token"))
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.auth.Me(c.Request.Context(), userID(c))
	if err != nil {
		RenderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": u.Email, "name": u.Name})
}
