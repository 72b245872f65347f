package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
	"github.com/oksasatya/library-management/pkg/helpers"
	"github.com/oksasatya/library-management/pkg/mailer"
	mailtpl "github.com/oksasatya/library-management/pkg/mailer/templates"
)

// DefaultCreateUserRole is assigned by CreateUser when the caller names none.
const DefaultCreateUserRole = entity.RoleUser

// MailInfo carries the links rendered into welcome e-mails.
type MailInfo struct {
	CompanyName string
	SupportURL  string
	LoginURL    string
}

type UserService struct {
	Store     repo.Store
	Publisher JobPublisher // optional; welcome e-mails are skipped when nil
	Mail      MailInfo
	Logger    *logrus.Logger
}

func NewUserService(store repo.Store, publisher JobPublisher, mail MailInfo, logger *logrus.Logger) *UserService {
	return &UserService{Store: store, Publisher: publisher, Mail: mail, Logger: logger}
}

type RegisterInput struct {
	Email            string
	FirstName        string
	LastName         string
	Password         string
	SendWelcomeEmail bool
	// Role defaults to entity.RoleSystemUser.
	Role string
}

type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// UserPatch carries the fields of a partial update; nil means unchanged.
// Roles, when set, replaces every assigned role.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Password  *string
	Enabled   *bool
	Roles     *[]string
}

// Register creates an account through the public path. The role must exist
// and must not be a privileged one.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := entity.NormalizeEmail(in.Email)
	if err := checkCredentials(email, in.Password); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = entity.RoleSystemUser
	}
	if entity.IsPrivilegedRole(role) {
		return nil, invalid(fmt.Sprintf("role %q cannot be chosen at registration", role))
	}

	u, err := s.create(ctx, email, in.FirstName, in.LastName, in.Password, role, func(tx repo.Store) error {
		ok, err := tx.Roles().Exists(ctx, role)
		if err != nil {
			return fmt.Errorf("check role: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrRoleNotFound, role)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if in.SendWelcomeEmail {
		s.sendWelcome(ctx, u)
	}
	s.Logger.WithFields(logrus.Fields{"email": u.Email, "role": role}).Info("user registered")
	return u, nil
}

// CreateUser is the administrative variant of Register. The role is not
// validated: a name with no role record is left unlinked and logged, and the
// returned user carries only the roles that were linked.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	email := entity.NormalizeEmail(in.Email)
	if err := checkCredentials(email, in.Password); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = DefaultCreateUserRole
	}
	u, err := s.create(ctx, email, in.FirstName, in.LastName, in.Password, role, nil)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"email": u.Email, "roles": u.Roles}).Info("user created")
	return u, nil
}

func checkCredentials(email, password string) error {
	if email == "" {
		return invalid("email is required")
	}
	if password == "" {
		return invalid("password is required")
	}
	return nil
}

// create inserts the user and links its role in one transaction. The e-mail
// check runs first, then check, so a taken address wins over a bad role.
func (s *UserService) create(ctx context.Context, email, first, last, password, role string, check func(tx repo.Store) error) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:     email,
		Password:  hash,
		FirstName: first,
		LastName:  last,
		Username:  usernameOf(email),
		UserType:  entity.RoleSystemUser,
		Enabled:   true,
	}
	err = s.Store.WithinTx(ctx, func(tx repo.Store) error {
		exists, err := tx.Users().Exists(ctx, email)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if exists {
			return ErrUserExists
		}
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrAlreadyExists) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		u.Roles, err = s.linkRoles(ctx, tx, email, []string{role})
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// linkRoles replaces the user's roles with the names that have a role record
// and returns them. Unknown names are logged and dropped; roles are only ever
// created by RoleDirectory.EnsureDefaults.
func (s *UserService) linkRoles(ctx context.Context, tx repo.Store, email string, names []string) ([]string, error) {
	known := []string{}
	var unknown []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(known, name) || slices.Contains(unknown, name) {
			continue
		}
		ok, err := tx.Roles().Exists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check role: %w", err)
		}
		if ok {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		s.Logger.WithFields(logrus.Fields{"email": email, "roles": unknown}).Warn("unknown roles not linked")
	}
	if err := tx.Roles().SetRoles(ctx, email, known); err != nil {
		return nil, fmt.Errorf("set roles: %w", err)
	}
	return known, nil
}

func usernameOf(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func (s *UserService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Publisher == nil {
		s.Logger.WithField("email", u.Email).Debug("welcome email skipped: no publisher")
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data: mailtpl.NewWelcomeData(u.FullName(), u.Email,
			mailtpl.WithCompany(s.Mail.CompanyName),
			mailtpl.WithSupportURL(s.Mail.SupportURL),
			mailtpl.WithLoginURL(s.Mail.LoginURL),
			mailtpl.WithTime(u.CreatedAt),
		),
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("enqueue welcome email failed")
	}
}

func (s *UserService) withRoles(ctx context.Context, u *entity.User) (*entity.User, error) {
	roles, err := s.Store.Roles().RolesOf(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("roles of %s: %w", u.Email, err)
	}
	u.Roles = roles
	return u, nil
}

func (s *UserService) Get(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Store.Users().GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "get user")
	}
	return s.withRoles(ctx, u)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrUserNotFound, "get user")
	}
	return s.withRoles(ctx, u)
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if _, err := s.withRoles(ctx, u); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, email string, p UserPatch) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	var hash string
	if p.Password != nil {
		if *p.Password == "" {
			return nil, invalid("password must not be empty")
		}
		h, err := helpers.HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	var out *entity.User
	err := s.Store.WithinTx(ctx, func(tx repo.Store) error {
		u, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return lookup(err, ErrUserNotFound, "get user")
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if hash != "" {
			u.Password = hash
		}
		if p.Enabled != nil {
			u.Enabled = *p.Enabled
		}
		if err := tx.Users().Update(ctx, u); err != nil {
			return lookup(err, ErrUserNotFound, "update user")
		}
		if p.Roles != nil {
			if _, err := s.linkRoles(ctx, tx, email, *p.Roles); err != nil {
				return err
			}
		}
		roles, err := tx.Roles().RolesOf(ctx, email)
		if err != nil {
			return fmt.Errorf("roles of %s: %w", email, err)
		}
		u.Roles = roles
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("email", email).Info("user updated")
	return out, nil
}

// Delete removes users by e-mail. Addresses are trimmed and lower-cased first,
// and the result lists carry the normalized form.
func (s *UserService) Delete(ctx context.Context, emails []string) (*entity.BatchResult, error) {
	seen := map[string]bool{}
	norm := make([]string, 0, len(emails))
	for _, e := range emails {
		e = entity.NormalizeEmail(e)
		if seen[e] {
			continue
		}
		seen[e] = true
		norm = append(norm, e)
	}
	return deleteEach(ctx, s.Logger, norm, func(ctx context.Context, email string) error {
		err := s.Store.Users().Delete(ctx, email)
		if err == nil {
			s.Logger.WithField("email", email).Info("user deleted")
		}
		return err
	}), nil
}
