package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/password"
	"github.com/webfusionlab/webfusion/internal/store"
)

// AccountStore is the subset of the credential store used by AccountService.
type AccountStore interface {
	FindAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindAdminByID(ctx context.Context, id string) (*model.Admin, error)
	CreateAdmin(ctx context.Context, email, plain, name string) (*model.Admin, error)
	UpdateAdminCredentials(ctx context.Context, id string, newEmail, newPassword *string) (*model.Admin, error)
}

// AccountOptions configures an AccountService.
type AccountOptions struct {
	// Production closes open registration. Registration then requires
	// RegistrationToken, and is disabled entirely when it is empty.
	Production        bool
	RegistrationToken string
}

// AccountService implements admin login, registration and credential
// changes on top of the credential store.
type AccountService struct {
	store  AccountStore
	tokens *TokenService
	opts   AccountOptions
}

func NewAccountService(store AccountStore, tokens *TokenService, opts AccountOptions) *AccountService {
	return &AccountService{store: store, tokens: tokens, opts: opts}
}

// LoginResult is a freshly issued token and the admin it belongs to.
type LoginResult struct {
	Token string
	Admin *model.Admin
}

// Login exchanges email and password for a bearer token. Unknown emails,
// inactive accounts and wrong passwords all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	if email == "" || plain == "" {
		return nil, ErrMissingFields
	}

	admin, err := s.store.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(plain, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Admin: admin}, nil
}

// RegisterInput holds the fields of a registration request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new admin. In production the setupToken presented by
// the caller must match the configured registration token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, setupToken string) (*model.Admin, error) {
	if s.opts.Production {
		if s.opts.RegistrationToken == "" {
			return nil, ErrRegistrationDisabled
		}
		if subtle.ConstantTimeCompare([]byte(setupToken), []byte(s.opts.RegistrationToken)) != 1 {
			return nil, ErrInvalidSetupToken
		}
	}

	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, ErrMissingFields
	}

	// The lookup gives the common case a clean error; the unique index
	// still catches concurrent registrations.
	if _, err := s.store.FindAdminByEmail(ctx, in.Email); err == nil {
		return nil, store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return s.store.CreateAdmin(ctx, in.Email, in.Password, in.Name)
}

// ProfileInput holds the fields of a credential change request.
type ProfileInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfile changes the email and/or password of adminID after
// re-checking the current password.
func (s *AccountService) UpdateProfile(ctx context.Context, adminID string, in ProfileInput) (*model.Admin, error) {
	if in.CurrentPassword == "" {
		return nil, ErrCurrentPasswordRequired
	}
	newEmail := strings.TrimSpace(in.NewEmail)
	if newEmail == "" && in.NewPassword == "" {
		return nil, ErrNoChanges
	}

	admin, err := s.store.FindAdminByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !password.Verify(in.CurrentPassword, admin.PasswordHash) {
		return nil, ErrWrongPassword
	}

	if newEmail != "" && newEmail != admin.Email {
		if _, err := s.store.FindAdminByEmail(ctx, newEmail); err == nil {
			return nil, store.ErrDuplicateEmail
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	var emailArg, passArg *string
	if newEmail != "" {
		emailArg = &newEmail
	}
	if in.NewPassword != "" {
		passArg = &in.NewPassword
	}
	return s.store.UpdateAdminCredentials(ctx, adminID, emailArg, passArg)
}
