package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/pkg/response"
)

type MemberHandler struct {
	Svc    *app.MemberService
	Logger *logrus.Logger
}

func NewMemberHandler(svc *app.MemberService, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{Svc: svc, Logger: logger}
}

type createMemberRequest struct {
	MembershipName string `json:"membership_name" binding:"required"`
	MembershipID   string `json:"membership_id" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"omitempty,phone"`
}

type updateMemberRequest struct {
	MembershipName *string `json:"membership_name"`
	MembershipID   *string `json:"membership_id"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,phone"`
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), app.CreateMemberInput{
		MembershipName: req.MembershipName,
		MembershipID:   req.MembershipID,
		Email:          req.Email,
		Phone:          req.Phone,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, memberOf(m), "Member created", nil)
}

func (h *MemberHandler) Get(c *gin.Context) {
	m, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, memberOf(m), "member", nil)
}

func (h *MemberHandler) List(c *gin.Context) {
	ms, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]memberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, memberOf(m))
	}
	response.Success(c, http.StatusOK, out, "members", gin.H{"count": len(out)})
}

func (h *MemberHandler) Update(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), c.Param("id"), app.MemberPatch{
		MembershipName: req.MembershipName,
		MembershipID:   req.MembershipID,
		Email:          req.Email,
		Phone:          req.Phone,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, memberOf(m), "Member updated successfully", nil)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Svc.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, batchOf(res), "Member deletion completed", nil)
}
