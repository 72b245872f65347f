package application

import (
	"context"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

// DefaultRoles are created at startup. They are the only roles that exist
// unless an operator adds rows to the roles table.
var DefaultRoles = []string{entity.RoleAdmin, entity.RoleLibrarian, entity.RoleSystemUser, entity.RoleUser}

type RoleDirectory struct {
	Store repo.Store
}

func NewRoleDirectory(store repo.Store) *RoleDirectory {
	return &RoleDirectory{Store: store}
}

// RolesOf returns the roles linked to email; unknown identities have none.
func (d *RoleDirectory) RolesOf(ctx context.Context, email string) ([]string, error) {
	return d.Store.Roles().RolesOf(ctx, entity.NormalizeEmail(email))
}

func (d *RoleDirectory) ListAll(ctx context.Context) ([]string, error) {
	roles, err := d.Store.Roles().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out, nil
}

func (d *RoleDirectory) EnsureDefaults(ctx context.Context) error {
	for _, name := range DefaultRoles {
		if _, err := d.Store.Roles().Ensure(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
