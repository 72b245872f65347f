package modules

import (
	handlers "github.com/oksasatya/library-management/internal/interface/http"
)

type MemberModule struct {
	Handler *handlers.MemberHandler
}

func NewMemberModule(h *handlers.MemberHandler) *MemberModule {
	return &MemberModule{Handler: h}
}

func (m *MemberModule) Register(r Routes) {
	r.GET("/members", m.Handler.List)
	r.GET("/members/:id", m.Handler.Get)
	r.POST("/members", m.Handler.Create)
	r.PATCH("/members/:id", m.Handler.Update)
	r.POST("/members/delete", m.Handler.Delete)
}
