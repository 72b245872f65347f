package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/pkg/response"
)

type StatsHandler struct {
	Svc    *app.StatsService
	Logger *logrus.Logger
}

func NewStatsHandler(svc *app.StatsService, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{Svc: svc, Logger: logger}
}

type countsResponse struct {
	TotalBooks   int64 `json:"total_books"`
	TotalUsers   int64 `json:"total_users"`
	TotalLoans   int64 `json:"total_loans"`
	TotalMembers int64 `json:"total_members"`
}

func (h *StatsHandler) Counts(c *gin.Context) {
	n, err := h.Svc.Counts(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, countsResponse{
		TotalBooks:   n.Books,
		TotalUsers:   n.Users,
		TotalLoans:   n.Loans,
		TotalMembers: n.Members,
	}, "counts", nil)
}
