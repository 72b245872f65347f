package postgres

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/domain/repository"
)

// openStore connects to DATABASE_URL and applies migrations, skipping when no
// database is configured.
func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "migrations")
	require.NoError(t, RunMigrations(dsn, dir, logrus.New()))

	pool, err := NewPool(context.Background(), dsn, PoolOptions{MaxConns: 4, MaxConnLife: time.Minute})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewStore(pool)
}

func TestInvalidIDIsNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Books().GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBorrowShapedTransaction(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	b := &entity.Book{Title: "Dune", Author: "Herbert", NumberOfCopy: 1, IsAvailable: true}
	require.NoError(t, s.Books().Create(ctx, b))
	t.Cleanup(func() { _ = s.Books().Delete(ctx, b.ID) })

	var loanID string
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		book, err := tx.Books().GetForUpdate(ctx, b.ID)
		if err != nil {
			return err
		}
		book.NumberOfCopy--
		book.IsAvailable = book.NumberOfCopy > 0
		if err := tx.Books().Update(ctx, book); err != nil {
			return err
		}
		l := &entity.Loan{MemberID: b.ID, BookID: b.ID, LoanDate: entity.Day(time.Now())}
		if err := tx.Loans().Create(ctx, l); err != nil {
			return err
		}
		loanID = l.ID
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Loans().Delete(ctx, loanID) })

	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberOfCopy)
	assert.False(t, got.IsAvailable)

	loan, err := s.Loans().GetByID(ctx, loanID)
	require.NoError(t, err)
	assert.Nil(t, loan.ReturnDate)
}

func TestConcurrentBorrowsLockTheBookRow(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	loans := app.NewLoanService(s, logger)

	b := &entity.Book{Title: "Solo", Author: "Author", NumberOfCopy: 1, IsAvailable: true}
	require.NoError(t, s.Books().Create(ctx, b))
	t.Cleanup(func() { _ = s.Books().Delete(ctx, b.ID) })
	m := &entity.Member{MembershipName: "Ada", MembershipID: "m-concurrent"}
	require.NoError(t, s.Members().Create(ctx, m))
	t.Cleanup(func() { _ = s.Members().Delete(ctx, m.ID) })

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, none int
		created  []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := loans.Borrow(ctx, app.BorrowInput{MemberID: m.ID, BookID: b.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
				created = append(created, l.ID)
			case errors.Is(err, app.ErrNoCopiesAvailable):
				none++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	t.Cleanup(func() {
		for _, id := range created {
			_ = s.Loans().Delete(ctx, id)
		}
	})

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, none)
	got, err := s.Books().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberOfCopy)
	assert.False(t, got.IsAvailable)
}

func TestDuplicateEmailIsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	u := &entity.User{Email: "dup-" + time.Now().Format("150405.000000") + "@example.com", Password: "x", Enabled: true}
	require.NoError(t, s.Users().Create(ctx, u))
	t.Cleanup(func() { _ = s.Users().Delete(ctx, u.Email) })

	err := s.Users().Create(ctx, &entity.User{Email: u.Email, Password: "y"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}
