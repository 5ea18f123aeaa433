package storage

import (
	"context"
	"errors"

	"tabtab_auth/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrCodeNotFound = errors.New("verification code not found")
)

// Tx is the unit-of-work handle given out by Transactor.WithinTx. Everything
// called on it runs inside the same database transaction.
type Tx interface {
	DeleteVerificationCode(ctx context.Context, email string) error
	UpdateUser(ctx context.Context, email string, patch models.UserPatch) error
}
