package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.users[u.Email]; ok {
			return repository.ErrAlreadyExists
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		now := r.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		v := *u
		v.Roles = nil
		d.users[u.Email] = v
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.view(func(d *data) error {
		for _, u := range d.users {
			if u.ID == id {
				v := u
				out = &v
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.view(func(d *data) error {
		u, ok := d.users[email]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) Exists(_ context.Context, email string) (bool, error) {
	var ok bool
	err := r.s.view(func(d *data) error {
		_, ok = d.users[email]
		return nil
	})
	return ok, err
}

func (r *userRepo) List(_ context.Context) ([]*entity.User, error) {
	out := []*entity.User{}
	err := r.s.view(func(d *data) error {
		for _, u := range d.users {
			v := u
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.s.view(func(d *data) error {
		cur, ok := d.users[u.Email]
		if !ok {
			return repository.ErrNotFound
		}
		u.ID, u.CreatedAt, u.UpdatedAt = cur.ID, cur.CreatedAt, r.s.now()
		v := *u
		v.Roles = nil
		d.users[u.Email] = v
		return nil
	})
}

func (r *userRepo) Delete(_ context.Context, email string) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.users[email]; !ok {
			return repository.ErrNotFound
		}
		delete(d.users, email)
		delete(d.userRoles, email)
		return nil
	})
}

func (r *userRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(func(d *data) error { n = int64(len(d.users)); return nil })
	return n, err
}

type roleRepo struct{ s *Store }

func (r *roleRepo) List(_ context.Context) ([]*entity.Role, error) {
	out := []*entity.Role{}
	err := r.s.view(func(d *data) error {
		for _, role := range d.roles {
			v := role
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *roleRepo) Exists(_ context.Context, name string) (bool, error) {
	var ok bool
	err := r.s.view(func(d *data) error {
		_, ok = d.roles[name]
		return nil
	})
	return ok, err
}

func ensureRole(d *data, name string, now time.Time) entity.Role {
	role, ok := d.roles[name]
	if !ok {
		role = entity.Role{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
		d.roles[name] = role
	}
	return role
}

func (r *roleRepo) Ensure(_ context.Context, name string) (*entity.Role, error) {
	var out entity.Role
	err := r.s.view(func(d *data) error {
		out = ensureRole(d, name, r.s.now())
		return nil
	})
	return &out, err
}

func (r *roleRepo) RolesOf(_ context.Context, email string) ([]string, error) {
	out := []string{}
	err := r.s.view(func(d *data) error {
		out = append(out, d.userRoles[email]...)
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *roleRepo) SetRoles(_ context.Context, email string, roles []string) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.users[email]; !ok {
			return repository.ErrNotFound
		}
		names := []string{}
		for _, name := range roles {
			if _, ok := d.roles[name]; !ok {
				continue
			}
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		d.userRoles[email] = names
		return nil
	})
}

type bookRepo struct{ s *Store }

func (r *bookRepo) Create(_ context.Context, b *entity.Book) error {
	return r.s.view(func(d *data) error {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		now := r.s.now()
		b.CreatedAt, b.UpdatedAt = now, now
		d.books[b.ID] = *b
		return nil
	})
}

func (r *bookRepo) GetByID(_ context.Context, id string) (*entity.Book, error) {
	var out *entity.Book
	err := r.s.view(func(d *data) error {
		b, ok := d.books[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: writers already serialize on the store mutex.
func (r *bookRepo) GetForUpdate(ctx context.Context, id string) (*entity.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *bookRepo) List(_ context.Context, f repository.BookFilter) ([]*entity.Book, error) {
	out := []*entity.Book{}
	err := r.s.view(func(d *data) error {
		for _, b := range d.books {
			if f.Available != nil && b.IsAvailable != *f.Available {
				continue
			}
			v := b
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *bookRepo) Update(_ context.Context, b *entity.Book) error {
	return r.s.view(func(d *data) error {
		cur, ok := d.books[b.ID]
		if !ok {
			return repository.ErrNotFound
		}
		b.CreatedAt, b.UpdatedAt = cur.CreatedAt, r.s.now()
		d.books[b.ID] = *b
		return nil
	})
}

func (r *bookRepo) Delete(_ context.Context, id string) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.books[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.books, id)
		return nil
	})
}

func (r *bookRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(func(d *data) error { n = int64(len(d.books)); return nil })
	return n, err
}

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(_ context.Context, m *entity.Member) error {
	return r.s.view(func(d *data) error {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		now := r.s.now()
		m.CreatedAt, m.UpdatedAt = now, now
		d.members[m.ID] = *m
		return nil
	})
}

func (r *memberRepo) GetByID(_ context.Context, id string) (*entity.Member, error) {
	var out *entity.Member
	err := r.s.view(func(d *data) error {
		m, ok := d.members[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *memberRepo) List(_ context.Context) ([]*entity.Member, error) {
	out := []*entity.Member{}
	err := r.s.view(func(d *data) error {
		for _, m := range d.members {
			v := m
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].MembershipName != out[j].MembershipName {
			return out[i].MembershipName < out[j].MembershipName
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *memberRepo) Update(_ context.Context, m *entity.Member) error {
	return r.s.view(func(d *data) error {
		cur, ok := d.members[m.ID]
		if !ok {
			return repository.ErrNotFound
		}
		m.CreatedAt, m.UpdatedAt = cur.CreatedAt, r.s.now()
		d.members[m.ID] = *m
		return nil
	})
}

func (r *memberRepo) Delete(_ context.Context, id string) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.members[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.members, id)
		return nil
	})
}

func (r *memberRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(func(d *data) error { n = int64(len(d.members)); return nil })
	return n, err
}

type loanRepo struct{ s *Store }

func storedLoan(l *entity.Loan) entity.Loan {
	v := *l
	v.DueDate = copyTime(l.DueDate)
	v.ReturnDate = copyTime(l.ReturnDate)
	return v
}

func (r *loanRepo) Create(_ context.Context, l *entity.Loan) error {
	return r.s.view(func(d *data) error {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		now := r.s.now()
		l.CreatedAt, l.UpdatedAt = now, now
		d.loans[l.ID] = storedLoan(l)
		return nil
	})
}

func (r *loanRepo) GetByID(_ context.Context, id string) (*entity.Loan, error) {
	var out *entity.Loan
	err := r.s.view(func(d *data) error {
		l, ok := d.loans[id]
		if !ok {
			return repository.ErrNotFound
		}
		v := storedLoan(&l)
		out = &v
		return nil
	})
	return out, err
}

func (r *loanRepo) filter(keep func(l *entity.Loan) bool) ([]*entity.Loan, error) {
	out := []*entity.Loan{}
	err := r.s.view(func(d *data) error {
		for _, l := range d.loans {
			if !keep(&l) {
				continue
			}
			v := storedLoan(&l)
			out = append(out, &v)
		}
		return nil
	})
	return out, err
}

func (r *loanRepo) List(_ context.Context) ([]*entity.Loan, error) {
	out, err := r.filter(func(*entity.Loan) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoanDate.Equal(out[j].LoanDate) {
			return out[i].LoanDate.Before(out[j].LoanDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *loanRepo) ListReturnDateBefore(_ context.Context, day time.Time) ([]*entity.Loan, error) {
	out, err := r.filter(func(l *entity.Loan) bool {
		return l.ReturnDate != nil && l.ReturnDate.Before(day)
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReturnDate.Equal(*out[j].ReturnDate) {
			return out[i].ReturnDate.Before(*out[j].ReturnDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *loanRepo) Update(_ context.Context, l *entity.Loan) error {
	return r.s.view(func(d *data) error {
		cur, ok := d.loans[l.ID]
		if !ok {
			return repository.ErrNotFound
		}
		l.CreatedAt, l.UpdatedAt = cur.CreatedAt, r.s.now()
		d.loans[l.ID] = storedLoan(l)
		return nil
	})
}

func (r *loanRepo) Delete(_ context.Context, id string) error {
	return r.s.view(func(d *data) error {
		if _, ok := d.loans[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.loans, id)
		return nil
	})
}

func (r *loanRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(func(d *data) error { n = int64(len(d.loans)); return nil })
	return n, err
}
