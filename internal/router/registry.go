package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/interface/middleware"
)

// Guards are the middleware inputs the registry needs to enforce Policies.
type Guards struct {
	Verifier middleware.TokenVerifier
	Roles    middleware.RoleLookup
	Logger   *logrus.Logger
	// Limiter runs in front of rate-limited routes; nil disables limiting.
	Limiter gin.HandlerFunc
}

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Policies    map[string]Policy
	guards      Guards
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine, g Guards) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api, Policies: Policies, guards: g}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// Handle registers a route under /api behind the guards its policy names.
// It panics when the route has no policy.
func (r *Registry) Handle(method, path string, handlers ...gin.HandlerFunc) {
	key := method + " " + path
	p, ok := r.Policies[key]
	if !ok {
		panic(fmt.Sprintf("router: no access policy for %s", key))
	}
	chain := make([]gin.HandlerFunc, 0, len(handlers)+3)
	if p.RateLimited && r.guards.Limiter != nil {
		chain = append(chain, r.guards.Limiter)
	}
	switch p.Access {
	case Authenticated:
		chain = append(chain, middleware.Auth(r.guards.Verifier))
	case Admin:
		chain = append(chain,
			middleware.Auth(r.guards.Verifier),
			middleware.RequireRole(r.guards.Roles, entity.RoleAdmin, r.guards.Logger),
		)
	}
	chain = append(chain, handlers...)
	r.API.Handle(method, path, chain...)
}

func (r *Registry) GET(path string, h ...gin.HandlerFunc)   { r.Handle(http.MethodGet, path, h...) }
func (r *Registry) POST(path string, h ...gin.HandlerFunc)  { r.Handle(http.MethodPost, path, h...) }
func (r *Registry) PUT(path string, h ...gin.HandlerFunc)   { r.Handle(http.MethodPut, path, h...) }
func (r *Registry) PATCH(path string, h ...gin.HandlerFunc) { r.Handle(http.MethodPatch, path, h...) }

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r)
	}
}
