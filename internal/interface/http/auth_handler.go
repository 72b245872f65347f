package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/internal/interface/middleware"
	"github.com/oksasatya/library-management/pkg/response"
)

type AuthHandler struct {
	Auth   *app.AuthService
	Users  *app.UserService
	Roles  *app.RoleDirectory
	Logger *logrus.Logger
}

func NewAuthHandler(auth *app.AuthService, users *app.UserService, roles *app.RoleDirectory, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Users: users, Roles: roles, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email            string `json:"email" binding:"required,email"`
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name"`
	Password         string `json:"password" binding:"required,pwd"`
	SendWelcomeEmail bool   `json:"send_welcome_email"`
	Role             string `json:"role"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      loginUser `json:"user"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	u := res.User
	response.Success(c, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User: loginUser{
			FullName: u.FullName(),
			Username: u.Username,
			Email:    u.Email,
			UserType: u.UserType,
			Roles:    u.Roles,
		},
	}, "Login successful", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Users.Register(c.Request.Context(), app.RegisterInput{
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Password:         req.Password,
		SendWelcomeEmail: req.SendWelcomeEmail,
		Role:             req.Role,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, userOf(u), "User registered successfully", nil)
}

// Me returns the acting identity with its roles.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, userOf(u), "current user", nil)
}

func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles, err := h.Roles.ListAll(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, roles, "roles", nil)
}
