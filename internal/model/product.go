package model

type Product struct {
	Base
	Name          string            `json:"name"`
	Slug          string            `json:"slug,omitempty"`
	Description   string            `json:"description,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	CategoryID    string            `json:"category_id,omitempty"`
	Price         float64           `json:"price"`
	SalePrice     *float64          `json:"sale_price,omitempty"`
	Stock         int               `json:"stock"`
	Status        string            `json:"status,omitempty"`
	Images        []string          `json:"images,omitempty"`
	Specs         JSONMap           `json:"specs,omitempty"`
	WarrantyYears int               `json:"warranty_years,omitempty"`
}

// ProductRequest is the add/edit product form.
type ProductRequest struct {
	Name          string   `json:"name" form:"name" binding:"required"`
	Description   string   `json:"description" form:"description"`
	Brand         string   `json:"brand" form:"brand"`
	CategoryID    string   `json:"category_id" form:"category_id" binding:"required"`
	Price         float64  `json:"price" form:"price" binding:"required,gt=0"`
	SalePrice     *float64 `json:"sale_price" form:"sale_price" binding:"omitempty,gt=0,ltefield=Price"`
	Stock         int      `json:"stock" form:"stock" binding:"min=0"`
	Status        string   `json:"status" form:"status" binding:"omitempty,oneof=active draft archived"`
	WarrantyYears int      `json:"warranty_years" form:"warranty_years" binding:"min=0"`
	// Specs is a JSON object string in multipart forms.
	Specs string `json:"specs" form:"specs"`
	// ExistingImages lists image URLs kept on edit.
	ExistingImages []string `json:"existing_images" form:"existing_images"`
}
