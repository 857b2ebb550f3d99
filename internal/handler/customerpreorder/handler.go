package customerpreorder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/catalog"
)

type Handler struct {
	svc *catalog.CustomerPreOrderService
}

func NewHandler(svc *catalog.CustomerPreOrderService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cpo := r.Group("/customer-preorders")
	{
		cpo.GET("", h.List)
		cpo.GET("/:id", h.Get)
		cpo.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) List(c *gin.Context) {
	var filter model.BaseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), handler.Actor(c), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) Get(c *gin.Context) {
	cpo, err := h.svc.Get(c.Request.Context(), handler.Actor(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cpo))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req model.CustomerPreOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	cpo, err := h.svc.UpdateStatus(c.Request.Context(), handler.Actor(c), c.Param("id"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cpo))
}
