package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

type (
	ProductService        = Service[model.Product, model.ProductRequest]
	CategoryService       = Service[model.Category, model.CategoryRequest]
	PromotionService      = Service[model.Promotion, model.PromotionRequest]
	PreOrderService       = Service[model.PreOrder, model.PreOrderRequest]
	PickupLocationService = Service[model.PickupLocation, model.PickupLocationRequest]
	AdminUserService      = Service[model.AdminUser, model.AdminUserRequest]
)

const maxImages = 8

func NewProductService(repo repository.ResourceRepository[model.Product], auditor *audit.AuditLogger) *ProductService {
	return NewService("product", repo, EncodeProduct, Hooks[model.ProductRequest]{}, auditor,
		func(p *model.Product) string { return p.ID })
}

func NewCategoryService(repo repository.ResourceRepository[model.Category], auditor *audit.AuditLogger) *CategoryService {
	return NewService("category", repo, EncodeCategory, Hooks[model.CategoryRequest]{}, auditor,
		func(c *model.Category) string { return c.ID })
}

func NewPromotionService(repo repository.ResourceRepository[model.Promotion], auditor *audit.AuditLogger) *PromotionService {
	return NewService[model.Promotion, model.PromotionRequest]("promotion", repo, nil, Hooks[model.PromotionRequest]{}, auditor,
		func(p *model.Promotion) string { return p.ID })
}

func NewPreOrderService(repo repository.ResourceRepository[model.PreOrder], auditor *audit.AuditLogger) *PreOrderService {
	return NewService[model.PreOrder, model.PreOrderRequest]("preorder", repo, nil, Hooks[model.PreOrderRequest]{}, auditor,
		func(p *model.PreOrder) string { return p.ID })
}

func NewPickupLocationService(repo repository.ResourceRepository[model.PickupLocation], auditor *audit.AuditLogger) *PickupLocationService {
	return NewService[model.PickupLocation, model.PickupLocationRequest]("pickup_location", repo, nil, Hooks[model.PickupLocationRequest]{}, auditor,
		func(p *model.PickupLocation) string { return p.ID })
}

// NewAdminUserService requires a password when an admin is created; on edit
// an empty password leaves it unchanged.
func NewAdminUserService(repo repository.ResourceRepository[model.AdminUser], auditor *audit.AuditLogger) *AdminUserService {
	hooks := Hooks[model.AdminUserRequest]{
		BeforeCreate: func(req *model.AdminUserRequest) error {
			return requireField("password", req.Password)
		},
	}
	return NewService[model.AdminUser, model.AdminUserRequest]("admin_user", repo, nil, hooks, auditor,
		func(u *model.AdminUser) string { return u.ID })
}

// EncodeProduct assembles the product form as multipart, the way the backend
// expects uploads.
func EncodeProduct(req *model.ProductRequest, files []backend.FilePart) (interface{}, error) {
	if req.Specs != "" {
		var specs map[string]interface{}
		if err := json.Unmarshal([]byte(req.Specs), &specs); err != nil {
			return nil, errors.NewValidation("specs must be a JSON object", "specs")
		}
	}
	if len(req.ExistingImages)+len(files) > maxImages {
		return nil, errors.NewValidation("a product can have at most 8 images", "images")
	}

	form := backend.NewMultipart().
		Set("name", req.Name).
		Set("description", req.Description).
		Set("brand", req.Brand).
		Set("category_id", req.CategoryID).
		Set("price", formatFloat(req.Price)).
		Set("stock", strconv.Itoa(req.Stock)).
		Set("status", req.Status).
		Set("warranty_years", strconv.Itoa(req.WarrantyYears)).
		Set("specs", req.Specs)
	if req.SalePrice != nil {
		form.Set("sale_price", formatFloat(*req.SalePrice))
	}
	for _, img := range req.ExistingImages {
		form.Add("existing_images", img)
	}
	for _, f := range files {
		f.Field = "images"
		form.AddFile(f)
	}
	return form, nil
}

func EncodeCategory(req *model.CategoryRequest, files []backend.FilePart) (interface{}, error) {
	if len(files) > 1 {
		return nil, errors.NewValidation("a category takes a single image", "image")
	}
	form := backend.NewMultipart().
		Set("name", req.Name).
		Set("description", req.Description).
		Set("parent_id", req.ParentID)
	if req.Active != nil {
		form.Set("active", strconv.FormatBool(*req.Active))
	}
	for _, f := range files {
		f.Field = "image"
		form.AddFile(f)
	}
	return form, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
