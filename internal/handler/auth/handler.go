package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/session"
)

type Handler struct {
	svc *session.Service
}

func NewHandler(svc *session.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts login on public and the session routes on protected.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)

	auth := protected.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Logout(c *gin.Context) {
	actor := handler.Actor(c)
	if err := h.svc.Logout(c.Request.Context(), actor.SessionID, actor.IPAddress); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("logged out successfully", nil))
}

func (h *Handler) Me(c *gin.Context) {
	sess := handler.Session(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"admin":      sess.Admin,
		"expires_at": sess.ExpiresAt,
	}))
}
