package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/internal/infrastructure/memory"
	"github.com/oksasatya/library-management/pkg/helpers"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store   *memory.Store
	logger  *logrus.Logger
	books   *BookService
	members *MemberService
	loans   *LoanService
	users   *UserService
	roles   *RoleDirectory
	auth    *AuthService
	jwt     *helpers.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := quietLogger()
	jwt := helpers.NewJWTManager("test-secret", helpers.SessionTTL)
	loans := NewLoanService(store, logger)
	loans.Clock = func() time.Time { return testNow }
	f := &fixture{
		store:   store,
		logger:  logger,
		books:   NewBookService(store, nil, nil, logger),
		members: NewMemberService(store, logger),
		loans:   loans,
		users:   NewUserService(store, nil, MailInfo{}, logger),
		roles:   NewRoleDirectory(store),
		auth:    NewAuthService(store, jwt, logger),
		jwt:     jwt,
	}
	require.NoError(t, f.roles.EnsureDefaults(context.Background()))
	return f
}

func (f *fixture) book(t *testing.T, title string, copies int) *entity.Book {
	t.Helper()
	b, err := f.books.Create(context.Background(), CreateBookInput{Title: title, Author: "A. Author", NumberOfCopy: copies})
	require.NoError(t, err)
	return b
}

func (f *fixture) member(t *testing.T, name string) *entity.Member {
	t.Helper()
	m, err := f.members.Create(context.Background(), CreateMemberInput{MembershipName: name, MembershipID: "id-" + name})
	require.NoError(t, err)
	return m
}

func (f *fixture) reload(t *testing.T, id string) *entity.Book {
	t.Helper()
	b, err := f.books.Get(context.Background(), id)
	require.NoError(t, err)
	return b
}

func day(s string) time.Time {
	d, err := entity.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}
