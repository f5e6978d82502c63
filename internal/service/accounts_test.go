package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/password"
	"github.com/webfusionlab/webfusion/internal/store"
)

func newTestAccounts(t *testing.T, opts AccountOptions) (*AccountService, *store.Store, *TokenService) {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens := NewTokenService(TokenOptions{Secret: "test-secret", Now: time.Now})
	return NewAccountService(st, tokens, opts), st, tokens
}

func TestLogin(t *testing.T) {
	accounts, st, tokens := newTestAccounts(t, AccountOptions{})
	ctx := context.Background()
	admin, err := st.CreateAdmin(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	res, err := accounts.Login(ctx, "a@b.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, res.Admin.ID)

	p, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, p.AdminID)
	assert.Equal(t, "a@b.com", p.Email)
}

func TestLoginFailures(t *testing.T) {
	accounts, st, _ := newTestAccounts(t, AccountOptions{})
	ctx := context.Background()
	_, err := st.CreateAdmin(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "pw123456", ErrMissingFields},
		{"missing password", "a@b.com", "", ErrMissingFields},
		{"unknown email", "x@b.com", "pw123456", ErrInvalidCredentials},
		{"wrong password", "a@b.com", "wrong", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type inactiveStore struct {
	AccountStore
	admin *model.Admin
}

func (s inactiveStore) FindAdminByEmail(context.Context, string) (*model.Admin, error) {
	return s.admin, nil
}

func TestLoginInactiveAdmin(t *testing.T) {
	hash, err := password.Hash("pw123456")
	require.NoError(t, err)
	st := inactiveStore{admin: &model.Admin{ID: "a1", Email: "a@b.com", PasswordHash: hash, IsActive: false}}
	accounts := NewAccountService(st, NewTokenService(TokenOptions{Secret: "s"}), AccountOptions{})

	_, err = accounts.Login(context.Background(), "a@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginProductionWithoutSecret(t *testing.T) {
	st, err := store.NewMemory()
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()
	_, err = st.CreateAdmin(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	accounts := NewAccountService(st, NewTokenService(TokenOptions{Production: true}), AccountOptions{Production: true})
	_, err = accounts.Login(ctx, "a@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRegisterDevelopment(t *testing.T) {
	accounts, st, _ := newTestAccounts(t, AccountOptions{})
	ctx := context.Background()

	admin, err := accounts.Register(ctx, RegisterInput{Email: "a@b.com", Password: "pw123456", Name: "A"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, admin.ID)
	assert.Equal(t, "a@b.com", admin.Email)

	stored, err := st.FindAdminByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, password.Verify("pw123456", stored.PasswordHash))

	_, err = accounts.Register(ctx, RegisterInput{Email: "a@b.com", Password: "x", Name: "B"}, "")
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	_, err = accounts.Register(ctx, RegisterInput{Email: "c@b.com", Password: "x"}, "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestRegisterProduction(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Email: "a@b.com", Password: "pw123456", Name: "A"}

	disabled, _, _ := newTestAccounts(t, AccountOptions{Production: true})
	_, err := disabled.Register(ctx, in, "anything")
	assert.ErrorIs(t, err, ErrRegistrationDisabled)

	gated, _, _ := newTestAccounts(t, AccountOptions{Production: true, RegistrationToken: "setup-123"})
	_, err = gated.Register(ctx, in, "")
	assert.ErrorIs(t, err, ErrInvalidSetupToken)
	_, err = gated.Register(ctx, in, "setup-12")
	assert.ErrorIs(t, err, ErrInvalidSetupToken)

	// The token gate runs before field validation.
	_, err = gated.Register(ctx, RegisterInput{}, "wrong")
	assert.ErrorIs(t, err, ErrInvalidSetupToken)

	admin, err := gated.Register(ctx, in, "setup-123")
	require.NoError(t, err)
	assert.Equal(t, "A", admin.Name)
}

func TestUpdateProfile(t *testing.T) {
	accounts, st, _ := newTestAccounts(t, AccountOptions{})
	ctx := context.Background()
	admin, err := st.CreateAdmin(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)
	_, err = st.CreateAdmin(ctx, "taken@b.com", "pw123456", "T")
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		in   ProfileInput
		want error
	}{
		{"no current password", admin.ID, ProfileInput{NewEmail: "n@b.com"}, ErrCurrentPasswordRequired},
		{"nothing to change", admin.ID, ProfileInput{CurrentPassword: "pw123456"}, ErrNoChanges},
		{"unknown admin", "missing", ProfileInput{CurrentPassword: "pw123456", NewEmail: "n@b.com"}, store.ErrNotFound},
		{"wrong password", admin.ID, ProfileInput{CurrentPassword: "nope", NewEmail: "n@b.com"}, ErrWrongPassword},
		{"email in use", admin.ID, ProfileInput{CurrentPassword: "pw123456", NewEmail: "taken@b.com"}, store.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.UpdateProfile(ctx, tt.id, tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}

	updated, err := accounts.UpdateProfile(ctx, admin.ID, ProfileInput{
		CurrentPassword: "pw123456",
		NewEmail:        "new@b.com",
		NewPassword:     "newpass99",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", updated.Email)

	_, err = accounts.Login(ctx, "new@b.com", "newpass99")
	assert.NoError(t, err)
	_, err = accounts.Login(ctx, "a@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Re-submitting the current email is not a conflict.
	same, err := accounts.UpdateProfile(ctx, admin.ID, ProfileInput{CurrentPassword: "newpass99", NewEmail: "new@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", same.Email)
}
