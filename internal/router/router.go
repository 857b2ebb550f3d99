package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/solar-admin/internal/middleware"
	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/pkg/validator"
)

// Handler mounts its routes under a router group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// SessionHandler mounts public and authenticated routes.
type SessionHandler interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	config RouterConfig

	health     Handler
	metrics    gin.HandlerFunc
	authH      SessionHandler
	// protected routes, mounted in order
	handlers   []Handler
	// mounted only for super admins
	restricted []Handler
}

type RouterConfig struct {
	Mode        string
	RateLimiter middleware.RateLimiterConfig
	CORSConfig  middleware.CORSConfig
	SizeLimit   middleware.SizeLimitConfig
	Security    middleware.SecurityConfig
}

type Option func(*Router)

func WithHealth(h Handler) Option { return func(r *Router) { r.health = h } }

// WithMetrics serves the prometheus endpoint and records request metrics.
func WithMetrics(serve, record gin.HandlerFunc) Option {
	return func(r *Router) {
		r.metrics = serve
		if record != nil {
			r.engine.Use(record)
		}
	}
}

func WithAuth(h SessionHandler) Option { return func(r *Router) { r.authH = h } }

func WithHandlers(hs ...Handler) Option {
	return func(r *Router) { r.handlers = append(r.handlers, hs...) }
}

func WithRestricted(hs ...Handler) Option {
	return func(r *Router) { r.restricted = append(r.restricted, hs...) }
}

func NewRouter(auth *middleware.AuthMiddleware, config RouterConfig, opts ...Option) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
		validator.Register(v)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(config.SizeLimit),
	)

	r := &Router{engine: engine, auth: auth, config: config}
	for _, opt := range opts {
		opt(r)
	}

	rateLimiter := middleware.NewRateLimiter(config.RateLimiter)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	if r.health != nil {
		r.health.RegisterRoutes(api)
	}
	if r.metrics != nil {
		api.GET("/health/metrics", r.metrics)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	if r.authH != nil {
		r.authH.RegisterRoutes(api, protected)
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(protected)
	}

	if len(r.restricted) > 0 {
		admin := protected.Group("")
		admin.Use(r.auth.RequireRole(model.AdminRoleSuper))
		for _, h := range r.restricted {
			h.RegisterRoutes(admin)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
