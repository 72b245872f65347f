package modules

import (
	handlers "github.com/oksasatya/library-management/internal/interface/http"
)

// LoanModule covers the loan lifecycle and the loan reports.
type LoanModule struct {
	Handler *handlers.LoanHandler
}

func NewLoanModule(h *handlers.LoanHandler) *LoanModule {
	return &LoanModule{Handler: h}
}

func (m *LoanModule) Register(r Routes) {
	r.GET("/loans", m.Handler.List)
	r.GET("/loans/:id", m.Handler.Get)
	r.POST("/loans", m.Handler.Borrow)
	r.PUT("/loans/:id/return-date", m.Handler.MarkReturned)
	r.POST("/loans/:id/return", m.Handler.CompleteReturn)
	r.POST("/loans/delete", m.Handler.Delete)

	r.GET("/reports/overdue", m.Handler.Overdue)
	r.GET("/reports/active", m.Handler.Active)
}
