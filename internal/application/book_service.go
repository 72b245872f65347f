package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

// MaxCoverBytes bounds cover uploads.
const MaxCoverBytes = 5 << 20

type BookService struct {
	Store    repo.Store
	Index    BookIndex      // optional
	Uploader ObjectUploader // optional
	Logger   *logrus.Logger
}

func NewBookService(store repo.Store, index BookIndex, uploader ObjectUploader, logger *logrus.Logger) *BookService {
	return &BookService{Store: store, Index: index, Uploader: uploader, Logger: logger}
}

type CreateBookInput struct {
	Title         string
	Author        string
	ISBN          string
	PublishedDate time.Time
	NumberOfCopy  int
	// IsAvailable defaults to true when nil.
	IsAvailable *bool
}

// BookPatch carries the fields of a partial update; nil means unchanged.
type BookPatch struct {
	Title         *string
	Author        *string
	ISBN          *string
	PublishedDate *time.Time
	NumberOfCopy  *int
}

func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*entity.Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}
	if in.NumberOfCopy < 0 {
		return nil, invalid("number_of_copy must not be negative")
	}
	available := in.IsAvailable == nil || *in.IsAvailable
	b := &entity.Book{
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		PublishedDate: in.PublishedDate,
		NumberOfCopy:  in.NumberOfCopy,
		IsAvailable:   available && in.NumberOfCopy > 0,
	}
	if err := s.Store.Books().Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*entity.Book, error) {
	b, err := s.Store.Books().GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrBookNotFound, "get book")
	}
	return b, nil
}

func (s *BookService) List(ctx context.Context) ([]*entity.Book, error) {
	return s.Store.Books().List(ctx, repo.BookFilter{})
}

func (s *BookService) ListAvailable(ctx context.Context) ([]*entity.Book, error) {
	yes := true
	return s.Store.Books().List(ctx, repo.BookFilter{Available: &yes})
}

// Update overwrites only the supplied fields. A new copy count also resets the
// availability flag to match it.
func (s *BookService) Update(ctx context.Context, id string, p BookPatch) (*entity.Book, error) {
	if p.NumberOfCopy != nil && *p.NumberOfCopy < 0 {
		return nil, invalid("number_of_copy must not be negative")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, invalid("title must not be empty")
	}
	var out *entity.Book
	err := s.Store.WithinTx(ctx, func(tx repo.Store) error {
		b, err := tx.Books().GetForUpdate(ctx, id)
		if err != nil {
			return lookup(err, ErrBookNotFound, "get book")
		}
		if p.Title != nil {
			b.Title = *p.Title
		}
		if p.Author != nil {
			b.Author = *p.Author
		}
		if p.ISBN != nil {
			b.ISBN = *p.ISBN
		}
		if p.PublishedDate != nil {
			b.PublishedDate = *p.PublishedDate
		}
		if p.NumberOfCopy != nil {
			b.NumberOfCopy = *p.NumberOfCopy
			b.IsAvailable = b.NumberOfCopy > 0
		}
		if err := tx.Books().Update(ctx, b); err != nil {
			return lookup(err, ErrBookNotFound, "update book")
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.index(ctx, out)
	return out, nil
}

// SetAvailability overrides the flag without looking at the copy count.
func (s *BookService) SetAvailability(ctx context.Context, id string, available bool) (*entity.Book, error) {
	var out *entity.Book
	err := s.Store.WithinTx(ctx, func(tx repo.Store) error {
		b, err := tx.Books().GetForUpdate(ctx, id)
		if err != nil {
			return lookup(err, ErrBookNotFound, "get book")
		}
		b.IsAvailable = available
		if err := tx.Books().Update(ctx, b); err != nil {
			return lookup(err, ErrBookNotFound, "update book")
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"book_id": id, "is_available": available}).Info("book availability overridden")
	s.index(ctx, out)
	return out, nil
}

func (s *BookService) Delete(ctx context.Context, ids []string) (*entity.BatchResult, error) {
	res := deleteEach(ctx, s.Logger, ids, s.Store.Books().Delete)
	if s.Index != nil {
		for _, id := range res.Deleted {
			if ierr := s.Index.Delete(ctx, id); ierr != nil {
				s.Logger.WithError(ierr).WithField("book_id", id).Warn("unindex book failed")
			}
		}
	}
	return res, nil
}

// Search queries the full-text index and loads the hits from the store. Hits
// whose book no longer exists are dropped.
func (s *BookService) Search(ctx context.Context, q string, size int) ([]*entity.Book, error) {
	if s.Index == nil {
		return nil, fmt.Errorf("book search: %w", ErrNotConfigured)
	}
	if strings.TrimSpace(q) == "" {
		return nil, invalid("q is required")
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("book search: %w", err)
	}
	out := make([]*entity.Book, 0, len(ids))
	for _, id := range ids {
		b, err := s.Store.Books().GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// UploadCover stores an image for the book and records its URL. The content
// type is sniffed from the bytes, not taken from the client.
func (s *BookService) UploadCover(ctx context.Context, id, filename string, r io.Reader) (*entity.Book, error) {
	if s.Uploader == nil {
		return nil, fmt.Errorf("cover upload: %w", ErrNotConfigured)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(r, MaxCoverBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	if len(body) > MaxCoverBytes {
		return nil, invalid("cover exceeds 5MB")
	}
	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, invalid("cover must be an image, got " + mt.String())
	}
	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	objectPath := path.Join("covers", id, uuid.NewString()+ext)
	url, err := s.Uploader.Upload(ctx, objectPath, mt.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}

	var out *entity.Book
	err = s.Store.WithinTx(ctx, func(tx repo.Store) error {
		b, err := tx.Books().GetForUpdate(ctx, id)
		if err != nil {
			return lookup(err, ErrBookNotFound, "get book")
		}
		b.CoverURL = url
		if err := tx.Books().Update(ctx, b); err != nil {
			return lookup(err, ErrBookNotFound, "update book")
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.index(ctx, out)
	return out, nil
}

func (s *BookService) index(ctx context.Context, b *entity.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		s.Logger.WithError(err).WithField("book_id", b.ID).Warn("index book failed")
	}
}
