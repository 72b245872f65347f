package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/library-management/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Users() repository.UserRepository     { return &UserRepository{q: s.q} }
func (s *Store) Roles() repository.RoleRepository     { return &RoleRepository{q: s.q} }
func (s *Store) Books() repository.BookRepository     { return &BookRepository{q: s.q} }
func (s *Store) Members() repository.MemberRepository { return &MemberRepository{q: s.q} }
func (s *Store) Loans() repository.LoanRepository     { return &LoanRepository{q: s.q} }

// WithinTx runs fn inside one database transaction. Nested calls join the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, q: tx, inTx: true})
	})
}

// validID rejects strings that cannot be a uuid so lookups report not found
// instead of a cast error from Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// uniqueViolation turns a 23505 error into repository.ErrAlreadyExists.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", repository.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func count(ctx context.Context, q querier, sql string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, sql).Scan(&n)
	return n, err
}

func deleteByID(ctx context.Context, q querier, sql, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := q.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
