// Package resource serves the CRUD routes of the dashboard's add/edit dialogs.
package resource

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/catalog"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

const maxUploadBytes = 5 << 20

// Handler serves one resource. Upload names the multipart file field, or is
// empty for JSON-only resources.
type Handler[T any, R any] struct {
	svc    *catalog.Service[T, R]
	path   string
	upload string
}

func NewHandler[T any, R any](svc *catalog.Service[T, R], path string) *Handler[T, R] {
	return &Handler[T, R]{svc: svc, path: path}
}

// WithUploads accepts multipart forms with files under field.
func (h *Handler[T, R]) WithUploads(field string) *Handler[T, R] {
	h.upload = field
	return h
}

func (h *Handler[T, R]) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group(h.path)
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", h.Create)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler[T, R]) List(c *gin.Context) {
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

func (h *Handler[T, R]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), handler.Actor(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler[T, R]) Create(c *gin.Context) {
	req, files, ok := h.bind(c)
	if !ok {
		return
	}
	defer closeFiles(files)
	item, err := h.svc.Create(c.Request.Context(), handler.Actor(c), req, files)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler[T, R]) Update(c *gin.Context) {
	req, files, ok := h.bind(c)
	if !ok {
		return
	}
	defer closeFiles(files)
	item, err := h.svc.Update(c.Request.Context(), handler.Actor(c), c.Param("id"), req, files)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler[T, R]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), handler.Actor(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(fmt.Sprintf("%s deleted", h.svc.Entity()), nil))
}

// bind reads the form as JSON, or as multipart when uploads are enabled and
// the request is multipart.
func (h *Handler[T, R]) bind(c *gin.Context) (*R, []backend.FilePart, bool) {
	req := new(R)
	isMultipart := strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
	if h.upload == "" || !isMultipart {
		if err := c.ShouldBindJSON(req); err != nil {
			handler.RespondBindError(c, err)
			return nil, nil, false
		}
		return req, nil, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes*8)
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		handler.RespondBindError(c, err)
		return nil, nil, false
	}

	form, err := c.MultipartForm()
	if err != nil {
		handler.RespondError(c, errors.NewBadRequest("invalid multipart form", err))
		return nil, nil, false
	}
	files, err := fileParts(h.upload, form.File[h.upload])
	if err != nil {
		handler.RespondError(c, err)
		return nil, nil, false
	}
	return req, files, true
}

func fileParts(field string, headers []*multipart.FileHeader) ([]backend.FilePart, error) {
	parts := make([]backend.FilePart, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxUploadBytes {
			closeFiles(parts)
			return nil, errors.NewValidation(fmt.Sprintf("%s exceeds the 5MB upload limit", fh.Filename), field)
		}
		ct := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "image/") {
			closeFiles(parts)
			return nil, errors.NewValidation(fmt.Sprintf("%s is not an image", fh.Filename), field)
		}
		f, err := fh.Open()
		if err != nil {
			closeFiles(parts)
			return nil, errors.NewBadRequest("unreadable upload", err)
		}
		parts = append(parts, backend.FilePart{
			Field:       field,
			Filename:    fh.Filename,
			ContentType: ct,
			Content:     f,
		})
	}
	return parts, nil
}

func closeFiles(files []backend.FilePart) {
	for _, f := range files {
		if cl, ok := f.Content.(io.Closer); ok {
			cl.Close()
		}
	}
}
