package application

import (
	"errors"
	"fmt"

	repo "github.com/oksasatya/library-management/internal/domain/repository"
	"github.com/oksasatya/library-management/pkg/helpers"
)

// Not-found errors wrap repo.ErrNotFound so callers can test the kind with errors.Is.
var (
	ErrUserNotFound   = fmt.Errorf("user %w", repo.ErrNotFound)
	ErrBookNotFound   = fmt.Errorf("book %w", repo.ErrNotFound)
	ErrMemberNotFound = fmt.Errorf("member %w", repo.ErrNotFound)
	ErrLoanNotFound   = fmt.Errorf("loan %w", repo.ErrNotFound)
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrTokenExpired       = helpers.ErrTokenExpired
	ErrTokenMalformed     = helpers.ErrTokenMalformed

	ErrValidation   = errors.New("validation failed")
	ErrRoleNotFound = fmt.Errorf("%w: role does not exist", ErrValidation)
	ErrUserExists   = errors.New("user already exists")

	ErrNoCopiesAvailable = errors.New("no copies available for loan")
	ErrNotConfigured     = errors.New("not configured")
)

// invalid returns an ErrValidation carrying msg.
func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// lookup maps repo.ErrNotFound to the caller's domain error and wraps anything else.
func lookup(err, notFound error, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
