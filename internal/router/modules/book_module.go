package modules

import (
	handlers "github.com/oksasatya/library-management/internal/interface/http"
)

type BookModule struct {
	Handler *handlers.BookHandler
}

func NewBookModule(h *handlers.BookHandler) *BookModule {
	return &BookModule{Handler: h}
}

func (m *BookModule) Register(r Routes) {
	r.GET("/books", m.Handler.List)
	r.GET("/books/available", m.Handler.ListAvailable)
	r.GET("/books/search", m.Handler.Search)
	r.GET("/books/:id", m.Handler.Get)
	r.POST("/books", m.Handler.Create)
	r.PATCH("/books/:id", m.Handler.Update)
	r.PUT("/books/:id/availability", m.Handler.SetAvailability)
	r.POST("/books/:id/cover", m.Handler.UploadCover)
	r.POST("/books/delete", m.Handler.Delete)
}
