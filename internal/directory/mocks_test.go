package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/storage"
)

type mockStore struct {
	calls int

	listUsersFunc          func(ctx context.Context) ([]models.User, error)
	findUserByIDFunc       func(ctx context.Context, id int64) (models.User, error)
	findByCredentialsFunc  func(ctx context.Context, email, password string) (models.User, error)
	createUserFunc         func(ctx context.Context, user models.User) (models.User, error)
	updateUserFunc         func(ctx context.Context, user models.User) error
	deleteUserFunc         func(ctx context.Context, id int64) error
	listIdentificationFunc func(ctx context.Context) ([]models.IdentificationType, error)
	findIdentificationFunc func(ctx context.Context, id int64) (models.IdentificationType, error)
}

func (m *mockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.calls++
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	m.calls++
	if m.findUserByIDFunc != nil {
		return m.findUserByIDFunc(ctx, id)
	}
	return models.User{}, storage.ErrNotFound
}

func (m *mockStore) FindByCredentials(ctx context.Context, email, password string) (models.User, error) {
	m.calls++
	if m.findByCredentialsFunc != nil {
		return m.findByCredentialsFunc(ctx, email, password)
	}
	return models.User{}, storage.ErrNotFound
}

func (m *mockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.calls++
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, user)
	}
	user.ID = 1
	user.Password = ""
	return user, nil
}

func (m *mockStore) UpdateUser(ctx context.Context, user models.User) error {
	m.calls++
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, user)
	}
	return nil
}

func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	m.calls++
	if m.deleteUserFunc != nil {
		return m.deleteUserFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ListIdentificationTypes(ctx context.Context) ([]models.IdentificationType, error) {
	m.calls++
	if m.listIdentificationFunc != nil {
		return m.listIdentificationFunc(ctx)
	}
	return []models.IdentificationType{cc}, nil
}

func (m *mockStore) FindIdentificationType(ctx context.Context, id int64) (models.IdentificationType, error) {
	m.calls++
	if m.findIdentificationFunc != nil {
		return m.findIdentificationFunc(ctx, id)
	}
	switch id {
	case cc.ID:
		return cc, nil
	case pa.ID:
		return pa, nil
	}
	return models.IdentificationType{}, storage.ErrNotFound
}

func (m *mockStore) Close() {}

type mockTokens struct {
	generateFunc func(user models.User) (models.AuthToken, error)
}

func (m *mockTokens) Generate(user models.User) (models.AuthToken, error) {
	if m.generateFunc != nil {
		return m.generateFunc(user)
	}
	return models.AuthToken{
		Token:     "signed-token",
		Email:     user.Email,
		FullName:  user.FullName(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}, nil
}

var (
	cc = models.IdentificationType{ID: 1, Code: "CC", Name: "Cédula de Ciudadanía"}
	pa = models.IdentificationType{ID: 4, Code: "PA", Name: "Pasaporte"}

	errStoreDown = errors.New("connection refused")
)

func storedJuan() models.User {
	idType := cc
	return models.User{
		ID:                   7,
		FirstName:            "Juan",
		LastName:             "Pérez",
		IdentificationTypeID: cc.ID,
		IdentificationType:   &idType,
		IdentificationNumber: "7777777",
		Email:                "juan@test.com",
		PasswordHash:         "$2a$hash",
	}
}

func setupService(t *testing.T) (*Service, *mockStore, *mockTokens) {
	t.Helper()
	store := &mockStore{}
	tokens := &mockTokens{}
	return NewService(store, tokens, nil), store, tokens
}
