package model

type AdminRole string

const (
	AdminRoleSuper  AdminRole = "super_admin"
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleEditor AdminRole = "editor"
)

type AdminUser struct {
	Base
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   AdminRole `json:"role"`
	Active bool      `json:"active"`
}

// AdminUserRequest is the add/edit admin form; Password is only required on create
// and is forwarded to the backend, never stored here.
type AdminUserRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Role     AdminRole `json:"role" binding:"required,oneof=super_admin admin editor"`
	Password string    `json:"password,omitempty" binding:"omitempty,min=8"`
	Active   *bool     `json:"active"`
}
