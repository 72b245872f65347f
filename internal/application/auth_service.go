package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
	"github.com/oksasatya/library-management/pkg/helpers"
)

// AuthService issues session tokens for stored credentials and verifies them.
type AuthService struct {
	Store  repo.Store
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(store repo.Store, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Store: store, JWT: jwt, Logger: logger}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// Authenticate checks email/password and returns the user with roles loaded.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Store.Users().GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "get user")
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, ErrUserDisabled
	}
	roles, err := s.Store.Roles().RolesOf(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("roles of %s: %w", u.Email, err)
	}
	u.Roles = roles
	return u, nil
}

// Issue returns a signed token for the identity once the password matches.
func (s *AuthService) Issue(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.JWT.Generate(u.Email)
}

// Verify returns the identity carried by token.
func (s *AuthService) Verify(token string) (string, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		s.Logger.WithError(err).WithField("email", entity.NormalizeEmail(email)).Info("login rejected")
		return nil, err
	}
	token, exp, err := s.JWT.Generate(u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Error("generate token failed")
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}
