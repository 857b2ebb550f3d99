package addressbook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/addressbook"
)

type Handler struct {
	svc *addressbook.Service
}

func NewHandler(svc *addressbook.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	book := r.Group("/address-book")
	{
		book.GET("", h.List)
		book.POST("", h.Save)
		book.DELETE("", h.Clear)
		book.DELETE("/:id", h.Remove)
	}
}

func (h *Handler) List(c *gin.Context) {
	book, err := h.svc.List(c.Request.Context(), handler.Actor(c).AdminID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(book))
}

func (h *Handler) Save(c *gin.Context) {
	var req model.SaveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), handler.Actor(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(saved))
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), handler.Actor(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("address removed", nil))
}

func (h *Handler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), handler.Actor(c).AdminID); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("address book cleared", nil))
}
