package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abishek1718/package-locker/internal/repository"
)

// CreateUser registers a staff account; only admins reach this path.
// The role defaults to STAFF when empty.
func (s *Storage) CreateUser(ctx context.Context, name, email, password, role string) (*User, error) {
	if role == "" {
		role = repository.RoleStaff
	}
	if role != repository.RoleStaff && role != repository.RoleAdmin {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	row := &repository.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		CreatedAt: s.timeNow().UTC(),
	}
	if err := s.users.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return toUser(row), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, len(rows))
	for i, row := range rows {
		users[i] = toUser(row)
	}
	return users, nil
}

// DeleteUser removes a staff account. Admins cannot delete themselves.
func (s *Storage) DeleteUser(ctx context.Context, id, callerID string) error {
	if id == callerID {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return repository.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Authenticate checks the credentials and returns the matching user.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Storage) Authenticate(ctx context.Context, email, password string) (*User, error) {
	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return toUser(row), nil
}
