package modules

import (
	handlers "github.com/oksasatya/library-management/internal/interface/http"
)

// AuthModule serves login, self-registration, the role list and /me.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(r Routes) {
	r.POST("/login", m.Handler.Login)
	r.POST("/register", m.Handler.Register)
	r.GET("/roles", m.Handler.ListRoles)
	r.GET("/me", m.Handler.Me)
}
