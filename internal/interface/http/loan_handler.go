package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/pkg/response"
)

type LoanHandler struct {
	Svc    *app.LoanService
	Logger *logrus.Logger
}

func NewLoanHandler(svc *app.LoanService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{Svc: svc, Logger: logger}
}

type borrowRequest struct {
	MemberID   string  `json:"member_id" binding:"required"`
	BookID     string  `json:"book_id" binding:"required"`
	LoanDate   *string `json:"loan_date" binding:"omitempty,isodate"`
	ReturnDate *string `json:"return_date" binding:"omitempty,isodate"`
}

type markReturnedRequest struct {
	ReturnDate *string `json:"return_date" binding:"omitempty,isodate"`
}

type returnResponse struct {
	BookID        string `json:"book_id"`
	UpdatedCopies int    `json:"updated_copies"`
}

func (h *LoanHandler) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	loanDate, err := parseOptionalDate(req.LoanDate)
	if err != nil {
		badPayload(c, err)
		return
	}
	due, err := parseOptionalDate(req.ReturnDate)
	if err != nil {
		badPayload(c, err)
		return
	}
	in := app.BorrowInput{MemberID: req.MemberID, BookID: req.BookID, DueDate: due}
	if loanDate != nil {
		in.LoanDate = *loanDate
	}
	l, err := h.Svc.Borrow(c.Request.Context(), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, loanOf(l), "Loan created successfully", nil)
}

func (h *LoanHandler) MarkReturned(c *gin.Context) {
	var req markReturnedRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badPayload(c, err)
			return
		}
	}
	rd, err := parseOptionalDate(req.ReturnDate)
	if err != nil {
		badPayload(c, err)
		return
	}
	var day time.Time
	if rd != nil {
		day = *rd
	}
	l, err := h.Svc.MarkReturned(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loanOf(l), "Loan updated successfully", nil)
}

func (h *LoanHandler) CompleteReturn(c *gin.Context) {
	res, err := h.Svc.CompleteReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, returnResponse{BookID: res.BookID, UpdatedCopies: res.UpdatedCopies}, "Book returned successfully", nil)
}

func (h *LoanHandler) Delete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Svc.DeleteLoans(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loanBatchResponse{
		Deleted:     res.Deleted,
		NotFound:    res.NotFound,
		NotReturned: res.NotReturned,
		Failed:      res.Failed,
	}, "Loan deletion completed", nil)
}

func (h *LoanHandler) Get(c *gin.Context) {
	l, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loanOf(l), "loan", nil)
}

func (h *LoanHandler) List(c *gin.Context) {
	ls, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loansOf(ls), "loans", gin.H{"count": len(ls)})
}

func (h *LoanHandler) Overdue(c *gin.Context) {
	rows, err := h.Svc.ReportOverdue(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]overdueResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, overdueResponse{
			LoanID:     r.LoanID,
			MemberName: r.MemberName,
			BookTitle:  r.BookTitle,
			LoanDate:   entity.FormatDate(r.LoanDate),
			ReturnDate: entity.FormatDate(r.ReturnDate),
		})
	}
	response.Success(c, http.StatusOK, out, "overdue loans", gin.H{"count": len(out)})
}

func (h *LoanHandler) Active(c *gin.Context) {
	ls, err := h.Svc.ReportActive(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loansOf(ls), "active loans", gin.H{"count": len(ls)})
}
