package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type MemberRepository struct {
	q querier
}

const memberColumns = `id, membership_name, membership_id, email, phone, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (*entity.Member, error) {
	m := &entity.Member{}
	if err := row.Scan(&m.ID, &m.MembershipName, &m.MembershipID, &m.Email, &m.Phone, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *MemberRepository) Create(ctx context.Context, m *entity.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.q.QueryRow(ctx, `
		INSERT INTO members (id, membership_name, membership_id, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, m.ID, m.MembershipName, m.MembershipID, m.Email, m.Phone).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanMember(r.q.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (r *MemberRepository) List(ctx context.Context) ([]*entity.Member, error) {
	rows, err := r.q.Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY membership_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) Update(ctx context.Context, m *entity.Member) error {
	if !validID(m.ID) {
		return repository.ErrNotFound
	}
	m.UpdatedAt = time.Now()
	res, err := r.q.Exec(ctx, `
		UPDATE members
		SET membership_name = $1, membership_id = $2, email = $3, phone = $4, updated_at = $5
		WHERE id = $6
	`, m.MembershipName, m.MembershipID, m.Email, m.Phone, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, `DELETE FROM members WHERE id = $1`, id)
}

func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.q, `SELECT count(*) FROM members`)
}

var _ repository.MemberRepository = (*MemberRepository)(nil)
