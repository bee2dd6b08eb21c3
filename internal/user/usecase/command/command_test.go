package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/internal/user/repository"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/auth"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/storage"
)

type auditSpy struct {
	actions []string
}

func (s *auditSpy) Record(_ context.Context, actionType string, _ map[string]any) error {
	s.actions = append(s.actions, actionType)
	return nil
}

type fixture struct {
	clock    *dateutil.FixedClock
	users    *repository.KVUserRepository
	sessions *repository.KVSessionRepository
	audit    *auditSpy
	create   *CreateUserHandler
	update   *UpdateUserHandler
	password *ChangePasswordHandler
	remove   *DeleteUserHandler
	seed     *SeedDefaultAdminHandler
	login    *LoginUserHandler
	check    *CheckSessionHandler
	logout   *LogoutUserHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", "pos")
	f := &fixture{
		clock:    dateutil.NewFixedClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		users:    repository.NewKVUserRepository(store),
		sessions: repository.NewKVSessionRepository(store),
		audit:    &auditSpy{},
	}
	f.create = NewCreateUserHandler(f.users, f.audit, f.clock)
	f.update = NewUpdateUserHandler(f.users, f.audit, f.clock)
	f.password = NewChangePasswordHandler(f.users, f.audit, f.clock)
	f.remove = NewDeleteUserHandler(f.users, f.audit)
	f.seed = NewSeedDefaultAdminHandler(f.users, f.create)
	f.login = NewLoginUserHandler(f.users, f.sessions, tokens, DefaultSessionPolicy, f.clock)
	f.check = NewCheckSessionHandler(f.users, f.sessions, tokens, f.clock)
	f.logout = NewLogoutUserHandler(f.sessions, tokens)
	return f
}

func (f *fixture) user(t *testing.T, username, role string) *domain.User {
	t.Helper()
	u, err := f.create.Handle(context.Background(), CreateUserCommand{Username: username, Password: "secret1", Role: role})
	require.NoError(t, err)
	return u
}

func TestSeedDefaultAdminRunsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.seed.Handle(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.seed.Handle(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := f.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
	assert.NotEqual(t, "admin123", admin.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "sara", domain.RoleCashier)

	cases := []CreateUserCommand{
		{Username: "", Password: "secret1"},
		{Username: "ali", Password: "12345"},
		{Username: "ali", Password: "secret1", Role: "owner"},
	}
	for _, cmd := range cases {
		_, err := f.create.Handle(ctx, cmd)
		assert.True(t, errors.Is(err, apperror.ErrValidation), "%+v", cmd)
	}

	_, err := f.create.Handle(ctx, CreateUserCommand{Username: "SARA", Password: "secret1"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))
}

func TestLastAdminGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", domain.RoleAdmin)
	cashier := f.user(t, "cashier", domain.RoleCashier)

	err := f.remove.Handle(ctx, DeleteUserCommand{ID: admin.ID})
	assert.True(t, errors.Is(err, apperror.ErrLastAdmin))

	_, err = f.update.SetActive(ctx, admin.ID, false)
	assert.True(t, errors.Is(err, apperror.ErrLastAdmin))

	demoted := domain.RoleManager
	_, err = f.update.Handle(ctx, UpdateUserCommand{ID: admin.ID, Role: &demoted})
	assert.True(t, errors.Is(err, apperror.ErrLastAdmin))

	stored, err := f.users.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActiveAdmin())

	promoted := domain.RoleAdmin
	_, err = f.update.Handle(ctx, UpdateUserCommand{ID: cashier.ID, Role: &promoted})
	require.NoError(t, err)

	require.NoError(t, f.remove.Handle(ctx, DeleteUserCommand{ID: admin.ID}))
	_, err = f.users.FindByID(ctx, admin.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin", domain.RoleAdmin)
	cashier := f.user(t, "cashier", domain.RoleCashier)

	_, err := f.login.Handle(ctx, LoginUserCommand{Username: "admin"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "nobody", Password: "secret1"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "admin", Password: "wrong-pass"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	_, err = f.update.SetActive(ctx, cashier.ID, false)
	require.NoError(t, err)
	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "cashier", Password: "secret1"})
	assert.True(t, errors.Is(err, apperror.ErrAccountDisabled))

	res, err := f.login.Handle(ctx, LoginUserCommand{Username: "Admin", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin", res.User.Username)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), res.ExpiresAt)
	require.NotNil(t, res.User.LastLogin)

	session, err := f.sessions.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 8*time.Hour, session.TTL)
}

func TestSessionSlidesAndExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin", domain.RoleAdmin)

	res, err := f.login.Handle(ctx, LoginUserCommand{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	f.clock.Advance(7 * time.Hour)
	session, err := f.check.Handle(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), session.ExpiresAt)

	// Still inside the slid window.
	f.clock.Advance(7 * time.Hour)
	_, err = f.check.Handle(ctx, res.Token)
	require.NoError(t, err)

	f.clock.Advance(9 * time.Hour)
	_, err = f.check.Handle(ctx, res.Token)
	assert.True(t, errors.Is(err, apperror.ErrSessionExpired))

	stored, err := f.sessions.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRememberMeAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin", domain.RoleAdmin)

	res, err := f.login.Handle(ctx, LoginUserCommand{Username: "admin", Password: "secret1", RememberMe: true})
	require.NoError(t, err)

	f.clock.Advance(6 * 24 * time.Hour)
	_, err = f.check.Handle(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.logout.Handle(ctx, res.Token))
	_, err = f.check.Handle(ctx, res.Token)
	assert.True(t, errors.Is(err, apperror.ErrSessionExpired))

	require.NoError(t, f.logout.Handle(ctx, res.Token))

	_, err = f.check.Handle(ctx, "garbage")
	assert.True(t, errors.Is(err, apperror.ErrSessionExpired))
}

func TestNewLoginReplacesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin", domain.RoleAdmin)
	f.user(t, "cashier", domain.RoleCashier)

	first, err := f.login.Handle(ctx, LoginUserCommand{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "cashier", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.check.Handle(ctx, first.Token)
	assert.True(t, errors.Is(err, apperror.ErrSessionExpired))
}

func TestChangeAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "sara", domain.RoleCashier)

	err := f.password.Handle(ctx, ChangePasswordCommand{UserID: u.ID, CurrentPassword: "wrong-pass", NewPassword: "newpass1"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	err = f.password.Handle(ctx, ChangePasswordCommand{UserID: u.ID, CurrentPassword: "secret1", NewPassword: "123"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	require.NoError(t, f.password.Handle(ctx, ChangePasswordCommand{UserID: u.ID, CurrentPassword: "secret1", NewPassword: "newpass1"}))
	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "sara", Password: "newpass1"})
	require.NoError(t, err)

	require.NoError(t, f.password.Reset(ctx, u.ID, "reset99"))
	_, err = f.login.Handle(ctx, LoginUserCommand{Username: "sara", Password: "reset99"})
	require.NoError(t, err)
}
