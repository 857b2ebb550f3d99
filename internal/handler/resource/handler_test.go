package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/handler"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/catalog"
	"github.com/jwalitptl/solar-admin/pkg/errors"
	"github.com/jwalitptl/solar-admin/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
		validator.Register(v)
	}
}

type fakeRepo[T any] struct {
	created interface{}
	deleted string
	item    *T
	err     error
}

func (r *fakeRepo[T]) List(context.Context, string, model.BaseFilter) ([]T, error) {
	if r.item == nil {
		return nil, r.err
	}
	return []T{*r.item}, r.err
}

func (r *fakeRepo[T]) Get(context.Context, string, string) (*T, error) { return r.item, r.err }

func (r *fakeRepo[T]) Create(_ context.Context, _ string, body interface{}) (*T, error) {
	r.created = body
	return r.item, r.err
}

func (r *fakeRepo[T]) Update(_ context.Context, _ string, _ string, body interface{}) (*T, error) {
	r.created = body
	return r.item, r.err
}

func (r *fakeRepo[T]) Delete(_ context.Context, _ string, id string) error {
	r.deleted = id
	return r.err
}

func productRouter(repo *fakeRepo[model.Product]) *gin.Engine {
	r := gin.New()
	NewHandler(catalog.NewProductService(repo, nil), "/products").WithUploads("images").RegisterRoutes(r.Group(""))
	return r
}

func productForm(t *testing.T, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Mono Panel 450W"))
	require.NoError(t, w.WriteField("category_id", "cat-1"))
	require.NoError(t, w.WriteField("price", "129.99"))
	require.NoError(t, w.WriteField("stock", "12"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="panel.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreate_MultipartProductIsReassembled(t *testing.T) {
	repo := &fakeRepo[model.Product]{item: &model.Product{Base: model.Base{ID: "p-1"}, Name: "Mono Panel 450W"}}
	body, ct := productForm(t, "image/png")

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	form, ok := repo.created.(*backend.Multipart)
	require.True(t, ok, "product body must be multipart")
	assert.Equal(t, []string{"Mono Panel 450W"}, form.Fields["name"])
	assert.Equal(t, []string{"129.99"}, form.Fields["price"])
	require.Len(t, form.Files, 1)
	assert.Equal(t, "images", form.Files[0].Field)
	assert.Equal(t, "panel.png", form.Files[0].Filename)
}

func TestCreate_RejectsNonImageUpload(t *testing.T) {
	repo := &fakeRepo[model.Product]{}
	body, ct := productForm(t, "application/pdf")

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"images"}, decode(t, w).Fields)
	assert.Nil(t, repo.created)
}

func TestCreate_RequiredFieldsBlockTheCall(t *testing.T) {
	repo := &fakeRepo[model.Product]{}

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"description":"no name"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "category_id")
	assert.Nil(t, repo.created)
}

func TestGet_NotFoundFromBackend(t *testing.T) {
	repo := &fakeRepo[model.Product]{err: errors.NotFound("product", nil)}

	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGet_BackendMessageSurfaces(t *testing.T) {
	repo := &fakeRepo[model.Product]{err: &backend.Error{Status: http.StatusUnprocessableEntity, Message: "Stock cannot be negative"}}

	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/p-1", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Stock cannot be negative", decode(t, w).Message)
}

func TestDelete(t *testing.T) {
	repo := &fakeRepo[model.Product]{}

	w := httptest.NewRecorder()
	productRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/products/p-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-9", repo.deleted)
	assert.Equal(t, "product deleted", decode(t, w).Message)
}

func TestJSONResourceRejectsFiles(t *testing.T) {
	repo := &fakeRepo[model.Promotion]{}
	r := gin.New()
	NewHandler(catalog.NewPromotionService(repo, nil), "/promotions").RegisterRoutes(r.Group(""))

	body, ct := productForm(t, "image/png")
	req := httptest.NewRequest(http.MethodPost, "/promotions", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// without uploads the handler only reads JSON
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, repo.created)
}
