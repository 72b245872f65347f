package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

// BookIndex is the full-text index kept beside the book table.
type BookIndex interface {
	Index(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	// Search returns matching book ids, best match first.
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// ObjectUploader stores a blob and returns a URL that serves it.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// JobPublisher enqueues a JSON job for a background worker.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Clock returns the current time; nil means time.Now.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
