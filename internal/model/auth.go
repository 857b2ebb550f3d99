package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session is the stored admin session; BackendToken is the bearer token
// issued by the commerce backend at login.
type Session struct {
	ID           string    `json:"id"`
	Admin        AdminUser `json:"admin"`
	BackendToken string    `json:"backend_token"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginResult is returned to the dashboard after login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       AdminUser `json:"admin"`
}

// TokenClaims are the claims of the dashboard's session token.
type TokenClaims struct {
	jwt.RegisteredClaims
	SessionID string    `json:"sid"`
	Email     string    `json:"email"`
	Role      AdminRole `json:"role"`
}

// BackendSession is what the commerce backend returns on a successful login.
type BackendSession struct {
	Token     string
	Admin     AdminUser
	ExpiresAt *time.Time
}

// Actor identifies the signed-in admin behind a request. Token is the
// backend bearer token from the admin's session.
type Actor struct {
	SessionID string
	AdminID   string
	Token     string
	IPAddress string
}
