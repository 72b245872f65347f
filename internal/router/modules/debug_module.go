package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/library-management/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar counters to callers on private networks only.
func (m *DebugModule) Register(r Routes) {
	r.GET("/debug/vars", middleware.PrivateOnly(), gin.WrapH(expvar.Handler()))
}
