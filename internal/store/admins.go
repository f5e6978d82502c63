package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/password"
)

const adminColumns = `id, email, password, name, is_active, created_at, updated_at`

// FindAdminByEmail returns the admin with exactly the given email.
func (s *Store) FindAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT " + adminColumns + " FROM admins WHERE email = ?")
	if err := s.db.GetContext(ctx, &admin, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// FindAdminByID returns the admin with the given id.
func (s *Store) FindAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT " + adminColumns + " FROM admins WHERE id = ?")
	if err := s.db.GetContext(ctx, &admin, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// CreateAdmin hashes plain and inserts a new active admin. It returns
// ErrDuplicateEmail when the email is already registered.
func (s *Store) CreateAdmin(ctx context.Context, email, plain, name string) (*model.Admin, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	admin := &model.Admin{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	const q = `INSERT INTO admins
		(id, email, password, name, is_active, created_at, updated_at)
		VALUES
		(:id, :email, :password, :name, :is_active, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, admin); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return admin, nil
}

// UpdateAdminCredentials changes the email and/or password of an admin. Nil
// or empty arguments are left unchanged; a new password is re-hashed.
func (s *Store) UpdateAdminCredentials(ctx context.Context, id string, newEmail, newPassword *string) (*model.Admin, error) {
	var (
		sets []string
		args []any
	)
	if newEmail != nil && *newEmail != "" {
		sets = append(sets, "email = ?")
		args = append(args, *newEmail)
	}
	if newPassword != nil && *newPassword != "" {
		hash, err := password.Hash(*newPassword)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "password = ?")
		args = append(args, hash)
	}
	if len(sets) == 0 {
		return s.FindAdminByID(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, s.timestamp(), id)

	q := s.db.Rebind("UPDATE admins SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update admin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.FindAdminByID(ctx, id)
}

// ListAdmins returns all admin accounts ordered by email.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT "+adminColumns+" FROM admins ORDER BY email"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. This is used
// to decide whether the seed admin should be created.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// SeedAdmin creates the given admin when the admins table is empty. It
// reports whether an account was created.
func (s *Store) SeedAdmin(ctx context.Context, email, plain, name string) (bool, error) {
	exists, err := s.HasAnyAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, email, plain, name); err != nil {
		// Another instance seeded concurrently.
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
