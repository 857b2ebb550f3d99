package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/notification"
)

type Handler struct {
	svc *notification.Service
}

func NewHandler(svc *notification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	n := r.Group("/notifications")
	{
		n.GET("/merge-tags", h.MergeTags)

		drafts := n.Group("/drafts")
		drafts.POST("", h.Open)
		drafts.GET("/:id", h.Get)
		drafts.PATCH("/:id", h.Update)
		drafts.POST("/:id/tags", h.InsertTag)
		drafts.POST("/:id/submit", h.Submit)
		drafts.DELETE("/:id", h.Close)
	}
}

func (h *Handler) MergeTags(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.svc.MergeTags()))
}

func (h *Handler) Open(c *gin.Context) {
	var req model.OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	view, err := h.svc.Open(c.Request.Context(), handler.Actor(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(view))
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), handler.Actor(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) Update(c *gin.Context) {
	var req model.DraftUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	view, err := h.svc.Update(c.Request.Context(), handler.Actor(c), c.Param("id"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) InsertTag(c *gin.Context) {
	var req model.InsertTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	view, cursor, err := h.svc.InsertTag(c.Request.Context(), handler.Actor(c), c.Param("id"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"draft":   view.Draft,
		"preview": view.Preview,
		"cursor":  cursor,
	}))
}

// Submit sends the draft. Failures keep the draft open so the admin can retry.
func (h *Handler) Submit(c *gin.Context) {
	result, err := h.svc.Submit(c.Request.Context(), handler.Actor(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	msg := result.Message
	if msg == "" {
		msg = "Notification sent"
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(msg, result.Data))
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.svc.Close(c.Request.Context(), handler.Actor(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("draft discarded", nil))
}
