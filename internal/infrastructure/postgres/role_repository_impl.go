package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type RoleRepository struct {
	q querier
}

func (r *RoleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Role{}
	for rows.Next() {
		role := &entity.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *RoleRepository) Exists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, name).Scan(&ok)
	return ok, err
}

// Ensure creates the role when missing and returns it either way.
func (r *RoleRepository) Ensure(ctx context.Context, name string) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.q.QueryRow(ctx, `
		INSERT INTO roles (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id, name, created_at, updated_at
	`, uuid.NewString(), name).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RoleRepository) RolesOf(ctx context.Context, email string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT ro.name
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		JOIN roles ro ON ro.id = ur.role_id
		WHERE u.email = $1
		ORDER BY ro.name
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// SetRoles replaces the user's role links. Names with no row in roles are
// skipped by the join.
func (r *RoleRepository) SetRoles(ctx context.Context, email string, roles []string) error {
	var userID string
	if err := r.q.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID); err != nil {
		return notFound(err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = ANY($2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roles)
	return err
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
