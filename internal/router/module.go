package router

import "github.com/oksasatya/library-management/internal/router/modules"

// Module describes a feature module that registers its routes through the policy-aware Routes
type Module interface {
	Register(r modules.Routes)
}
