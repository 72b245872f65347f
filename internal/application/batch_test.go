package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

func TestDeleteEachKeepsGoingAfterStoreError(t *testing.T) {
	var tried []string
	res := deleteEach(context.Background(), quietLogger(), []string{"a", "b", "c", "d"}, func(_ context.Context, id string) error {
		tried = append(tried, id)
		switch id {
		case "b":
			return errors.New("connection reset")
		case "d":
			return repo.ErrNotFound
		}
		return nil
	})

	assert.Equal(t, []string{"a", "b", "c", "d"}, tried)
	assert.Equal(t, []string{"a", "c"}, res.Deleted)
	assert.Equal(t, []string{"b"}, res.Failed)
	assert.Equal(t, []string{"d"}, res.NotFound)
}

// flakyLoans fails Delete for one id.
type flakyLoans struct {
	repo.LoanRepository
	failID string
}

func (l flakyLoans) Delete(ctx context.Context, id string) error {
	if id == l.failID {
		return errors.New("connection reset")
	}
	return l.LoanRepository.Delete(ctx, id)
}

type flakyStore struct {
	repo.Store
	failID string
}

func (s flakyStore) Loans() repo.LoanRepository {
	return flakyLoans{LoanRepository: s.Store.Loans(), failID: s.failID}
}

func TestDeleteLoansReportsFailedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.member(t, "Ada")

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		b := f.book(t, title, 1)
		l, err := f.loans.Borrow(ctx, BorrowInput{MemberID: m.ID, BookID: b.ID})
		require.NoError(t, err)
		_, err = f.loans.MarkReturned(ctx, l.ID, testNow)
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	svc := NewLoanService(flakyStore{Store: f.store, failID: ids[1]}, f.logger)
	svc.Clock = f.loans.Clock
	res, err := svc.DeleteLoans(ctx, append(ids, "missing"))
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2]}, res.Deleted)
	assert.Equal(t, []string{ids[1]}, res.Failed)
	assert.Equal(t, []string{"missing"}, res.NotFound)
	assert.Empty(t, res.NotReturned)

	_, err = f.loans.Get(ctx, ids[1])
	assert.NoError(t, err)
}
