package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type LoanRepository struct {
	q querier
}

const loanColumns = `id, member_id, book_id, loan_date, due_date, return_date, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*entity.Loan, error) {
	l := &entity.Loan{}
	if err := row.Scan(&l.ID, &l.MemberID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *entity.Loan) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.q.QueryRow(ctx, `
		INSERT INTO loans (id, member_id, book_id, loan_date, due_date, return_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, l.ID, l.MemberID, l.BookID, l.LoanDate, l.DueDate, l.ReturnDate).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanLoan(r.q.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
}

func (r *LoanRepository) list(ctx context.Context, sql string, args ...any) ([]*entity.Loan, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LoanRepository) List(ctx context.Context) ([]*entity.Loan, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY loan_date, id`)
}

func (r *LoanRepository) ListReturnDateBefore(ctx context.Context, day time.Time) ([]*entity.Loan, error) {
	return r.list(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE return_date IS NOT NULL AND return_date < $1
		ORDER BY return_date, id
	`, day)
}

func (r *LoanRepository) Update(ctx context.Context, l *entity.Loan) error {
	if !validID(l.ID) {
		return repository.ErrNotFound
	}
	l.UpdatedAt = time.Now()
	res, err := r.q.Exec(ctx, `
		UPDATE loans
		SET member_id = $1, book_id = $2, loan_date = $3, due_date = $4, return_date = $5, updated_at = $6
		WHERE id = $7
	`, l.MemberID, l.BookID, l.LoanDate, l.DueDate, l.ReturnDate, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, `DELETE FROM loans WHERE id = $1`, id)
}

func (r *LoanRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.q, `SELECT count(*) FROM loans`)
}

var _ repository.LoanRepository = (*LoanRepository)(nil)
