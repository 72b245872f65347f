package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	b := &entity.Book{Title: "Dune", NumberOfCopy: 2, IsAvailable: true}
	require.NoError(t, s.Books().Create(ctx, b))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		got, err := tx.Books().GetForUpdate(ctx, b.ID)
		require.NoError(t, err)
		got.NumberOfCopy = 0
		require.NoError(t, tx.Books().Update(ctx, got))
		require.NoError(t, tx.Loans().Create(ctx, &entity.Loan{BookID: b.ID}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumberOfCopy)
	n, err := s.Loans().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Members().Create(ctx, &entity.Member{MembershipName: "Ann"})
	})
	require.NoError(t, err)
	n, err := s.Members().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMissingRecordsReportNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Books().GetByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Members().Delete(ctx, "nope"), repository.ErrNotFound)
	assert.ErrorIs(t, s.Loans().Update(ctx, &entity.Loan{ID: "nope"}), repository.ErrNotFound)
	assert.ErrorIs(t, s.Users().Delete(ctx, "a@b.c"), repository.ErrNotFound)
	assert.ErrorIs(t, s.Roles().SetRoles(ctx, "a@b.c", []string{"admin"}), repository.ErrNotFound)
}

func TestSetRolesLinksOnlyKnownRoles(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Roles().Ensure(ctx, "admin")
	require.NoError(t, err)
	require.NoError(t, s.Users().Create(ctx, &entity.User{Email: "a@b.c"}))
	require.NoError(t, s.Roles().SetRoles(ctx, "a@b.c", []string{"librarian", "admin", "admin"}))

	roles, err := s.Roles().RolesOf(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)

	ok, err := s.Roles().Exists(ctx, "librarian")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Roles().SetRoles(ctx, "a@b.c", nil))
	roles, err = s.Roles().RolesOf(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestCreateUserRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Users().Create(ctx, &entity.User{Email: "a@b.c", FirstName: "Ada"}))
	assert.ErrorIs(t, s.Users().Create(ctx, &entity.User{Email: "a@b.c", FirstName: "Eve"}), repository.ErrAlreadyExists)

	u, err := s.Users().GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
}

func TestListReturnDateBefore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	past := day.AddDate(0, 0, -1)
	later := day.AddDate(0, 0, 1)

	require.NoError(t, s.Loans().Create(ctx, &entity.Loan{ID: "past", ReturnDate: &past}))
	require.NoError(t, s.Loans().Create(ctx, &entity.Loan{ID: "today", ReturnDate: &day}))
	require.NoError(t, s.Loans().Create(ctx, &entity.Loan{ID: "later", ReturnDate: &later}))
	require.NoError(t, s.Loans().Create(ctx, &entity.Loan{ID: "open"}))

	got, err := s.Loans().ListReturnDateBefore(ctx, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "past", got[0].ID)
}

func TestBookFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Books().Create(ctx, &entity.Book{Title: "B", IsAvailable: true, NumberOfCopy: 1}))
	require.NoError(t, s.Books().Create(ctx, &entity.Book{Title: "A", IsAvailable: false}))

	yes := true
	avail, err := s.Books().List(ctx, repository.BookFilter{Available: &yes})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "B", avail[0].Title)

	all, err := s.Books().List(ctx, repository.BookFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)
}
