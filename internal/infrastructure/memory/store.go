// Package memory is an in-process repository.Store. It backs STORE_DRIVER=memory
// and the application tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type data struct {
	users     map[string]entity.User // by email
	roles     map[string]entity.Role // by name
	userRoles map[string][]string    // email -> role names
	books     map[string]entity.Book
	members   map[string]entity.Member
	loans     map[string]entity.Loan
}

func newData() *data {
	return &data{
		users:     map[string]entity.User{},
		roles:     map[string]entity.Role{},
		userRoles: map[string][]string{},
		books:     map[string]entity.Book{},
		members:   map[string]entity.Member{},
		loans:     map[string]entity.Loan{},
	}
}

func (d *data) clone() *data {
	c := &data{
		users:     maps.Clone(d.users),
		roles:     maps.Clone(d.roles),
		userRoles: make(map[string][]string, len(d.userRoles)),
		books:     maps.Clone(d.books),
		members:   maps.Clone(d.members),
		loans:     maps.Clone(d.loans),
	}
	for k, v := range d.userRoles {
		c.userRoles[k] = append([]string(nil), v...)
	}
	return c
}

// Store keeps every collection behind one mutex. A transaction holds the mutex
// for its whole duration and works on a copy that replaces the live data only
// when fn succeeds.
type Store struct {
	mu   *sync.Mutex
	root *Store
	d    *data
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	s := &Store{mu: &sync.Mutex{}, d: newData(), now: time.Now}
	s.root = s
	return s
}

// view runs fn against the current data, taking the lock unless a transaction
// already holds it.
func (s *Store) view(fn func(d *data) error) error {
	if s.inTx {
		return fn(s.d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.root.d)
}

func (s *Store) Users() repository.UserRepository     { return &userRepo{s} }
func (s *Store) Roles() repository.RoleRepository     { return &roleRepo{s} }
func (s *Store) Books() repository.BookRepository     { return &bookRepo{s} }
func (s *Store) Members() repository.MemberRepository { return &memberRepo{s} }
func (s *Store) Loans() repository.LoanRepository     { return &loanRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, root: s.root, d: s.root.d.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.root.d = tx.d
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var _ repository.Store = (*Store)(nil)
