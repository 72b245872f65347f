package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/internal/domain/entity"
	"github.com/oksasatya/library-management/pkg/mailer"
	mailtpl "github.com/oksasatya/library-management/pkg/mailer/templates"
)

type fakePublisher struct {
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return p.err
}

func TestRegisterValidatesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, RegisterInput{
		Email: "a@example.com", FirstName: "A", Password: "secret1", Role: "wizard",
	})
	require.ErrorIs(t, err, ErrRoleNotFound)
	require.ErrorIs(t, err, ErrValidation)
	exists, err := f.store.Users().Exists(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := f.users.Register(ctx, RegisterInput{
		Email: " A@Example.com ", FirstName: "Ada", LastName: "L", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "a", u.Username)
	assert.Equal(t, []string{entity.RoleSystemUser}, u.Roles)

	_, err = f.users.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Role: "wizard"})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUserSkipsRoleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lib, err := f.users.CreateUser(ctx, CreateUserInput{
		Email: "l@example.com", FirstName: "L", Password: "secret1", Role: entity.RoleLibrarian,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleLibrarian}, lib.Roles)

	u, err := f.users.CreateUser(ctx, CreateUserInput{
		Email: "b@example.com", FirstName: "B", Password: "secret1", Role: "wizard",
	})
	require.NoError(t, err)
	assert.Empty(t, u.Roles)

	got, err := f.users.Get(ctx, "B@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.Roles)

	plain, err := f.users.CreateUser(ctx, CreateUserInput{Email: "c@example.com", FirstName: "C", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCreateUserRole}, plain.Roles)

	_, err = f.users.CreateUser(ctx, CreateUserInput{Email: "b@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUnknownRolesNeverBecomeRegistrable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, CreateUserInput{Email: "b@example.com", Password: "secret1", Role: "wizrd"})
	require.NoError(t, err)
	roles := []string{"wizrd", entity.RoleLibrarian}
	u, err := f.users.Update(ctx, "b@example.com", UserPatch{Roles: &roles})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleLibrarian}, u.Roles)

	all, err := f.roles.ListAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultRoles, all)

	_, err = f.users.Register(ctx, RegisterInput{Email: "r@example.com", Password: "secret1", Role: "wizrd"})
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRegisterRefusesPrivilegedRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, role := range []string{entity.RoleAdmin, " Admin "} {
		_, err := f.users.Register(ctx, RegisterInput{Email: "mallory@example.com", Password: "secret1", Role: role})
		require.ErrorIs(t, err, ErrValidation, role)
	}
	exists, err := f.store.Users().Exists(ctx, "mallory@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := f.users.CreateUser(ctx, CreateUserInput{Email: "root@example.com", Password: "secret1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleAdmin}, u.Roles)
}

func TestConcurrentRegisterCreatesOneAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		exists    int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.users.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "secret1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrUserExists):
				exists++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, exists)
	count, err := f.store.Users().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRegisterPublishesWelcomeEmail(t *testing.T) {
	f := newFixture(t)
	pub := &fakePublisher{}
	f.users.Publisher = pub
	f.users.Mail = MailInfo{CompanyName: "City Library"}

	_, err := f.users.Register(context.Background(), RegisterInput{
		Email: "w@example.com", FirstName: "Wen", Password: "secret1", SendWelcomeEmail: true,
	})
	require.NoError(t, err)
	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "w@example.com", job.To)
	assert.Equal(t, mailtpl.Welcome, job.Template)
	assert.Equal(t, "City Library", job.Data["CompanyName"])

	// a broken queue never fails registration
	pub.err = errors.New("broker down")
	_, err = f.users.Register(context.Background(), RegisterInput{
		Email: "x@example.com", FirstName: "X", Password: "secret1", SendWelcomeEmail: true,
	})
	require.NoError(t, err)

	_, err = f.users.Register(context.Background(), RegisterInput{
		Email: "y@example.com", FirstName: "Y", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Len(t, pub.jobs, 2)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.CreateUser(ctx, CreateUserInput{Email: "u@example.com", FirstName: "Old", LastName: "Name", Password: "secret1"})
	require.NoError(t, err)

	first := "New"
	roles := []string{entity.RoleAdmin, entity.RoleLibrarian}
	off := false
	u, err := f.users.Update(ctx, " U@Example.com", UserPatch{FirstName: &first, Roles: &roles, Enabled: &off})
	require.NoError(t, err)
	assert.Equal(t, "New Name", u.FullName())
	assert.Equal(t, []string{entity.RoleAdmin, entity.RoleLibrarian}, u.Roles)
	assert.False(t, u.Enabled)

	pw := "changed1"
	_, err = f.users.Update(ctx, "u@example.com", UserPatch{Password: &pw})
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, "u@example.com", "changed1")
	require.ErrorIs(t, err, ErrUserDisabled)

	_, err = f.users.Update(ctx, "nobody@example.com", UserPatch{FirstName: &first})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUsersNormalizesEmails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.CreateUser(ctx, CreateUserInput{Email: "d@example.com", FirstName: "D", Password: "secret1"})
	require.NoError(t, err)

	res, err := f.users.Delete(ctx, []string{"  D@Example.com ", "d@example.com", "ghost@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d@example.com"}, res.Deleted)
	assert.Equal(t, []string{"ghost@example.com"}, res.NotFound)

	roles, err := f.roles.RolesOf(ctx, "d@example.com")
	require.NoError(t, err)
	assert.Empty(t, roles)
}
