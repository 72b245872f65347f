package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

var (
	// ErrNotFound is returned by every repository when the requested record is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by Create when the natural key is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// UserRepository defines the interface for user-related database operations.
// Users are addressed by their normalized email.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

// RoleRepository owns roles and the user_roles join relation.
type RoleRepository interface {
	List(ctx context.Context) ([]*entity.Role, error)
	Exists(ctx context.Context, name string) (bool, error)
	Ensure(ctx context.Context, name string) (*entity.Role, error)
	RolesOf(ctx context.Context, email string) ([]string, error)
	// SetRoles replaces every role linked to email. Names without a role
	// record are not linked and never create one.
	SetRoles(ctx context.Context, email string, roles []string) error
}

// BookFilter narrows List; nil fields do not filter.
type BookFilter struct {
	Available *bool
}

type BookRepository interface {
	Create(ctx context.Context, b *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	// GetForUpdate reads the book and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*entity.Book, error)
	List(ctx context.Context, f BookFilter) ([]*entity.Book, error)
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *entity.Member) error
	GetByID(ctx context.Context, id string) (*entity.Member, error)
	List(ctx context.Context) ([]*entity.Member, error)
	Update(ctx context.Context, m *entity.Member) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type LoanRepository interface {
	Create(ctx context.Context, l *entity.Loan) error
	GetByID(ctx context.Context, id string) (*entity.Loan, error)
	List(ctx context.Context) ([]*entity.Loan, error)
	// ListReturnDateBefore returns loans whose return date is set and earlier than day.
	ListReturnDateBefore(ctx context.Context, day time.Time) ([]*entity.Loan, error)
	Update(ctx context.Context, l *entity.Loan) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Store groups the repositories of one logical datastore. Repositories obtained
// from the Store passed to WithinTx share a single transaction: either every write
// made through them commits or none does.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Books() BookRepository
	Members() MemberRepository
	Loans() LoanRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
