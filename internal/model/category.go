package model

type Category struct {
	Base
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Image       string `json:"image,omitempty"`
	Active      bool   `json:"active"`
}

type CategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description"`
	ParentID    string `json:"parent_id" form:"parent_id"`
	Active      *bool  `json:"active" form:"active"`
}
