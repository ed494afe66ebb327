package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"floryn/internal/apperror"
	"floryn/internal/logger"
	"floryn/internal/models"
	"floryn/internal/repositories"
)

// CreateUserInput is an administrator's request to add an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput replaces the profile fields of an account.
type UpdateUserInput struct {
	Name  string
	Email string
	Role  string
}

// UserService is the administrator's view of the users table.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func resolveRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return models.RoleBuyer, nil
	}
	if !models.ValidRole(role) {
		return "", apperror.New(apperror.KindValidation, "role must be buyer or admin")
	}
	return role, nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Persistence("failed to list users", err)
	}
	return users, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.New(apperror.KindValidation, "name, email and password are required")
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := resolveRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash password", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Wrap(apperror.KindDuplicateEmail, "email already registered", err)
		}
		return nil, apperror.Persistence("failed to create user", err)
	}
	logger.FromCtx(ctx).Info("user created", zap.Uint("user_id", user.ID), zap.String("role", role))
	return user, nil
}

// Update replaces name, email and role of an account. The email must not
// belong to another user.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, apperror.New(apperror.KindValidation, "name and email are required")
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	role, err := resolveRole(in.Role)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTaken(ctx, email, id)
	if err != nil {
		return nil, apperror.Persistence("failed to check email", err)
	}
	if taken {
		return nil, apperror.New(apperror.KindDuplicateEmail, "email already in use by another user")
	}

	user := &models.User{ID: id, Name: name, Email: email, Role: role}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Wrap(apperror.KindDuplicateEmail, "email already in use by another user", err)
		}
		return nil, storeError(err, "user not found", "failed to update user")
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user not found", "failed to load user")
	}
	return updated, nil
}

// Delete removes an account together with its cart and reviews. Accounts
// that own orders are kept.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrHasOrders) {
			return apperror.Wrap(apperror.KindValidation, "cannot delete a user who has orders", err)
		}
		return storeError(err, "user not found", "failed to delete user")
	}
	logger.FromCtx(ctx).Info("user deleted", zap.Uint("user_id", id))
	return nil
}
