package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"floryn/internal/apperror"
	"floryn/internal/repositories"
)

// MinPasswordLength is the shortest password accepted on register, user
// creation and password change.
const MinPasswordLength = 6

var validate = validator.New()

// storeError classifies a repository error. Missing rows become NotFound with
// notFoundMsg, anything unexpected is a persistence failure.
func storeError(err error, notFoundMsg, failureMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.Wrap(apperror.KindNotFound, notFoundMsg, err)
	}
	return apperror.Persistence(failureMsg, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperror.New(apperror.KindInvalidEmail, "invalid email format")
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.New(apperror.KindWeakPassword, "password must be at least 6 characters")
	}
	return nil
}
