package modules

import (
	handlers "github.com/oksasatya/library-management/internal/interface/http"
)

// UserModule wires account management and the dashboard counts.
// Writes are admin-only; see router.Policies.
type UserModule struct {
	Users *handlers.UserHandler
	Stats *handlers.StatsHandler
}

func NewUserModule(users *handlers.UserHandler, stats *handlers.StatsHandler) *UserModule {
	return &UserModule{Users: users, Stats: stats}
}

func (m *UserModule) Register(r Routes) {
	r.GET("/users", m.Users.List)
	r.GET("/users/by-email", m.Users.GetByEmail)
	r.GET("/users/:id", m.Users.GetByID)
	r.POST("/users", m.Users.Create)
	r.PATCH("/users/:email", m.Users.Update)
	r.POST("/users/delete", m.Users.Delete)

	r.GET("/stats/counts", m.Stats.Counts)
}
