package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/pkg/response"
)

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,pwd"`
	Role      string `json:"role"`
}

type updateUserRequest struct {
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Password  *string   `json:"password" binding:"omitempty,pwd"`
	Enabled   *bool     `json:"enabled"`
	Roles     *[]string `json:"roles"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), app.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, userOf(u), "User created successfully", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	us, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, userOf(u))
	}
	response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out)})
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"email": "is required"})
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), email)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, userOf(u), "user", nil)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, userOf(u), "user", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("email"), app.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Enabled:   req.Enabled,
		Roles:     req.Roles,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, userOf(u), "User updated successfully", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
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
	response.Success(c, http.StatusOK, batchOf(res), "User deletion completed", nil)
}
