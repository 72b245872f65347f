package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

type fakeIndex struct {
	indexed map[string]string
	deleted []string
	hits    []string
}

func (x *fakeIndex) Index(_ context.Context, b *entity.Book) error {
	if x.indexed == nil {
		x.indexed = map[string]string{}
	}
	x.indexed[b.ID] = b.Title
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, id string) error {
	x.deleted = append(x.deleted, id)
	return nil
}

func (x *fakeIndex) Search(_ context.Context, _ string, _ int) ([]string, error) {
	return x.hits, nil
}

type fakeUploader struct {
	path, contentType string
	body              []byte
	err               error
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.path, u.contentType = objectPath, contentType
	u.body, _ = io.ReadAll(r)
	return "https://cdn.example/" + objectPath, nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestCreateBookAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	no := false

	stocked := f.book(t, "Stocked", 2)
	assert.True(t, stocked.IsAvailable)

	empty := f.book(t, "Empty", 0)
	assert.False(t, empty.IsAvailable)

	withdrawn, err := f.books.Create(ctx, CreateBookInput{Title: "Withdrawn", NumberOfCopy: 4, IsAvailable: &no})
	require.NoError(t, err)
	assert.False(t, withdrawn.IsAvailable)

	_, err = f.books.Create(ctx, CreateBookInput{Title: "  "})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.books.Create(ctx, CreateBookInput{Title: "Neg", NumberOfCopy: -1})
	require.ErrorIs(t, err, ErrValidation)

	avail, err := f.books.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, stocked.ID, avail[0].ID)
}

func TestUpdateBookIsPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.books.Create(ctx, CreateBookInput{Title: "Old", Author: "Kept", ISBN: "123", NumberOfCopy: 2})
	require.NoError(t, err)

	title := "New"
	got, err := f.books.Update(ctx, b.ID, BookPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "Kept", got.Author)
	assert.Equal(t, "123", got.ISBN)
	assert.Equal(t, 2, got.NumberOfCopy)

	zero := 0
	got, err = f.books.Update(ctx, b.ID, BookPatch{NumberOfCopy: &zero})
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	three := 3
	got, err = f.books.Update(ctx, b.ID, BookPatch{NumberOfCopy: &three})
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	_, err = f.books.Update(ctx, "missing", BookPatch{Title: &title})
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestSetAvailabilityIgnoresCopies(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "Flag", 0)

	got, err := f.books.SetAvailability(context.Background(), b.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	assert.Equal(t, 0, got.NumberOfCopy)
}

func TestDeleteBooksBatch(t *testing.T) {
	f := newFixture(t)
	idx := &fakeIndex{}
	f.books.Index = idx
	a, b := f.book(t, "A", 1), f.book(t, "B", 1)

	res, err := f.books.Delete(context.Background(), []string{a.ID, "nope", b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, res.Deleted)
	assert.Equal(t, []string{"nope"}, res.NotFound)
	assert.Empty(t, res.NotReturned)
	assert.Equal(t, []string{a.ID, b.ID}, idx.deleted)

	res, err = f.books.Delete(context.Background(), []string{a.ID})
	require.NoError(t, err)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, []string{a.ID}, res.NotFound)
}

func TestSearchBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.books.Search(ctx, "dune", 5)
	require.ErrorIs(t, err, ErrNotConfigured)

	idx := &fakeIndex{}
	f.books.Index = idx
	dune := f.book(t, "Dune", 1)
	assert.Equal(t, "Dune", idx.indexed[dune.ID])

	idx.hits = []string{"stale-id", dune.ID}
	got, err := f.books.Search(ctx, "dune", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dune.ID, got[0].ID)

	_, err = f.books.Search(ctx, " ", 5)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUploadCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "Covered", 1)

	_, err := f.books.UploadCover(ctx, b.ID, "c.png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, ErrNotConfigured)

	up := &fakeUploader{}
	f.books.Uploader = up

	got, err := f.books.UploadCover(ctx, b.ID, "c.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.contentType)
	assert.True(t, strings.HasPrefix(up.path, "covers/"+b.ID+"/"))
	assert.True(t, strings.HasSuffix(up.path, ".png"))
	assert.Equal(t, pngHeader, up.body)
	assert.Equal(t, "https://cdn.example/"+up.path, got.CoverURL)
	assert.Equal(t, got.CoverURL, f.reload(t, b.ID).CoverURL)

	_, err = f.books.UploadCover(ctx, b.ID, "notes.png", strings.NewReader("just some text"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.books.UploadCover(ctx, "missing", "c.png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, ErrBookNotFound)

	up.err = errors.New("bucket unavailable")
	_, err = f.books.UploadCover(ctx, b.ID, "c.png", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}
