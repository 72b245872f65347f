package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type UserRepository struct {
	q querier
}

const userColumns = `id, email, password_hash, first_name, last_name, username, user_type, enabled, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Username,
		&u.UserType, &u.Enabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, username, user_type, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Password, u.FirstName, u.LastName, u.Username, u.UserType, u.Enabled)

	return uniqueViolation(row.Scan(&u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, err
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.q.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, first_name = $2, last_name = $3, username = $4,
		    user_type = $5, enabled = $6, updated_at = $7
		WHERE email = $8
	`, u.Password, u.FirstName, u.LastName, u.Username, u.UserType, u.Enabled, u.UpdatedAt, u.Email)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	res, err := r.q.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.q, `SELECT count(*) FROM users`)
}

var _ repository.UserRepository = (*UserRepository)(nil)
