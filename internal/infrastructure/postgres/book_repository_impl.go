package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

type BookRepository struct {
	q querier
}

const bookColumns = `id, title, author, isbn, published_date, number_of_copy, is_available, cover_url, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }) (*entity.Book, error) {
	b := &entity.Book{}
	var published *time.Time
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &published, &b.NumberOfCopy,
		&b.IsAvailable, &b.CoverURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	if published != nil {
		b.PublishedDate = *published
	}
	return b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return r.q.QueryRow(ctx, `
		INSERT INTO books (id, title, author, isbn, published_date, number_of_copy, is_available, cover_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, b.ID, b.Title, b.Author, b.ISBN, nullDate(b.PublishedDate), b.NumberOfCopy, b.IsAvailable, b.CoverURL).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanBook(r.q.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
}

// GetForUpdate takes a row lock; concurrent borrowers of the same book queue
// behind it until the holder commits.
func (r *BookRepository) GetForUpdate(ctx context.Context, id string) (*entity.Book, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanBook(r.q.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id))
}

func (r *BookRepository) List(ctx context.Context, f repository.BookFilter) ([]*entity.Book, error) {
	sql := `SELECT ` + bookColumns + ` FROM books`
	var args []any
	if f.Available != nil {
		sql += ` WHERE is_available = $1`
		args = append(args, *f.Available)
	}
	sql += ` ORDER BY title, id`

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookRepository) Update(ctx context.Context, b *entity.Book) error {
	if !validID(b.ID) {
		return repository.ErrNotFound
	}
	b.UpdatedAt = time.Now()
	res, err := r.q.Exec(ctx, `
		UPDATE books
		SET title = $1, author = $2, isbn = $3, published_date = $4, number_of_copy = $5,
		    is_available = $6, cover_url = $7, updated_at = $8
		WHERE id = $9
	`, b.Title, b.Author, b.ISBN, nullDate(b.PublishedDate), b.NumberOfCopy, b.IsAvailable, b.CoverURL, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, `DELETE FROM books WHERE id = $1`, id)
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.q, `SELECT count(*) FROM books`)
}

var _ repository.BookRepository = (*BookRepository)(nil)
