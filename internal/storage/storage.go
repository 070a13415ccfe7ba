package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/usermanager-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// IdentityStore captures persistence operations needed by the directory.
//
// Implementations own password hashing: CreateUser and UpdateUser hash a
// non-empty User.Password, and FindByCredentials verifies against the stored hash.
type IdentityStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindByCredentials(ctx context.Context, email, password string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	// UpdateUser persists every field of user. A missing id is not an error.
	UpdateUser(ctx context.Context, user models.User) error
	// DeleteUser removes the user if present. A missing id is not an error.
	DeleteUser(ctx context.Context, id int64) error
	ListIdentificationTypes(ctx context.Context) ([]models.IdentificationType, error)
	FindIdentificationType(ctx context.Context, id int64) (models.IdentificationType, error)
	Close()
}

// PasswordHasher hashes and verifies password material for a store.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
