package directory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/models/dto"
	"github.com/hongminglow/usermanager-be/internal/storage"
)

func validCreate() dto.CreateUserRequest {
	return dto.CreateUserRequest{
		FirstName:            "Juan",
		LastName:             "Pérez",
		IdentificationTypeID: 1,
		IdentificationNumber: "7777777",
		Email:                "juan@test.com",
		Password:             "123456",
	}
}

func TestAuthenticate_Success(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findByCredentialsFunc = func(ctx context.Context, email, password string) (models.User, error) {
		if email == "juan@test.com" && password == "123456" {
			return storedJuan(), nil
		}
		return models.User{}, storage.ErrNotFound
	}

	tok, err := svc.Authenticate(context.Background(), "juan@test.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", tok.Token)
	assert.Equal(t, "juan@test.com", tok.Email)
	assert.Equal(t, "Juan Pérez", tok.FullName)
}

func TestAuthenticate_MismatchIsIndistinguishable(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findByCredentialsFunc = func(ctx context.Context, email, password string) (models.User, error) {
		return models.User{}, storage.ErrNotFound
	}

	_, wrongPassword := svc.Authenticate(context.Background(), "juan@test.com", "bad-password")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@test.com", "123456")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, KindAuthentication, KindOf(wrongPassword))
}

func TestAuthenticate_EmptyCredentialsSkipStore(t *testing.T) {
	svc, store, _ := setupService(t)

	_, err := svc.Authenticate(context.Background(), "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, store.calls)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findByCredentialsFunc = func(ctx context.Context, email, password string) (models.User, error) {
		return models.User{}, errStoreDown
	}

	_, err := svc.Authenticate(context.Background(), "juan@test.com", "123456")
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestAuthenticate_TokenFailure(t *testing.T) {
	svc, store, tokens := setupService(t)
	store.findByCredentialsFunc = func(ctx context.Context, email, password string) (models.User, error) {
		return storedJuan(), nil
	}
	tokens.generateFunc = func(models.User) (models.AuthToken, error) {
		return models.AuthToken{}, errors.New("sign failure")
	}

	_, err := svc.Authenticate(context.Background(), "juan@test.com", "123456")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestList(t *testing.T) {
	svc, store, _ := setupService(t)
	store.listUsersFunc = func(ctx context.Context) ([]models.User, error) {
		return []models.User{storedJuan()}, nil
	}

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "CC", users[0].IdentificationType.Code)

	store.listUsersFunc = func(ctx context.Context) ([]models.User, error) {
		return nil, errStoreDown
	}
	_, err = svc.List(context.Background())
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestNonPositiveIDsNeverReachStore(t *testing.T) {
	for _, id := range []int64{0, -1, -9999} {
		svc, store, _ := setupService(t)
		ctx := context.Background()

		_, err := svc.GetByID(ctx, id)
		require.ErrorIs(t, err, ErrInvalidUserID)

		_, err = svc.Update(ctx, id, dto.UpdateUserRequest{Email: "x@y.com"})
		require.ErrorIs(t, err, ErrInvalidID)

		err = svc.Delete(ctx, id)
		require.ErrorIs(t, err, ErrInvalidID)

		assert.Zero(t, store.calls, "id %d", id)
	}
}

func TestGetByID(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		if id == 7 {
			return storedJuan(), nil
		}
		return models.User{}, storage.ErrNotFound
	}

	user, err := svc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, storedJuan(), user)

	_, err = svc.GetByID(context.Background(), 8)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreate_PersistsFieldsVerbatim(t *testing.T) {
	svc, store, _ := setupService(t)
	var persisted models.User
	store.createUserFunc = func(ctx context.Context, user models.User) (models.User, error) {
		persisted = user
		user.ID = 11
		user.Password = ""
		user.IdentificationType = &cc
		return user, nil
	}

	req := validCreate()
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "123456", persisted.Password, "plaintext is handed to the store for hashing")
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, req.FirstName, created.FirstName)
	assert.Equal(t, req.LastName, created.LastName)
	assert.Equal(t, req.IdentificationTypeID, created.IdentificationTypeID)
	assert.Equal(t, req.IdentificationNumber, created.IdentificationNumber)
	assert.Equal(t, req.Email, created.Email)
	assert.Empty(t, created.Password)
}

func TestCreate_ValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*dto.CreateUserRequest)
		want error
	}{
		{"everything wrong reports identification type first", func(r *dto.CreateUserRequest) {
			r.IdentificationTypeID = 99
			r.Email = "bad"
			r.Password = "1"
		}, ErrUnknownIdentification},
		{"missing identification type", func(r *dto.CreateUserRequest) { r.IdentificationTypeID = 0 }, ErrUnknownIdentification},
		{"email before password", func(r *dto.CreateUserRequest) {
			r.Email = "pruebasBetsa"
			r.Password = "1"
		}, ErrInvalidEmail},
		{"empty email", func(r *dto.CreateUserRequest) { r.Email = "" }, ErrInvalidEmail},
		{"short password", func(r *dto.CreateUserRequest) { r.Password = "12345" }, ErrPasswordTooShort},
		{"password before name length", func(r *dto.CreateUserRequest) {
			r.Password = "1"
			r.FirstName = strings.Repeat("j", MaxNameLength+1)
		}, ErrPasswordTooShort},
		{"long email", func(r *dto.CreateUserRequest) { r.Email = emailOfLength(MaxEmailLength + 1) }, ErrEmailTooLong},
		{"long first name", func(r *dto.CreateUserRequest) { r.FirstName = strings.Repeat("j", MaxNameLength+1) }, ErrFirstNameTooLong},
		{"long last name", func(r *dto.CreateUserRequest) { r.LastName = strings.Repeat("p", MaxNameLength+1) }, ErrLastNameTooLong},
		{"long identification number", func(r *dto.CreateUserRequest) {
			r.IdentificationNumber = strings.Repeat("7", MaxIdentificationNumberLength+1)
		}, ErrIDNumberTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupService(t)
			store.createUserFunc = func(ctx context.Context, user models.User) (models.User, error) {
				t.Fatal("store must not be called for invalid input")
				return models.User{}, nil
			}
			req := validCreate()
			tt.mut(&req)

			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindValidation, KindOf(err))

			// same input, same message
			_, again := svc.Create(context.Background(), req)
			assert.Equal(t, err.Error(), again.Error())
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, store, _ := setupService(t)
	store.createUserFunc = func(ctx context.Context, user models.User) (models.User, error) {
		return models.User{}, storage.ErrAlreadyExists
	}

	_, err := svc.Create(context.Background(), validCreate())
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreate_IdentificationLookupFailure(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findIdentificationFunc = func(ctx context.Context, id int64) (models.IdentificationType, error) {
		return models.IdentificationType{}, errStoreDown
	}

	_, err := svc.Create(context.Background(), validCreate())
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestUpdate_PartialLeavesOmittedFieldsUntouched(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		return storedJuan(), nil
	}
	var persisted models.User
	store.updateUserFunc = func(ctx context.Context, user models.User) error {
		persisted = user
		return nil
	}

	updated, err := svc.Update(context.Background(), 7, dto.UpdateUserRequest{LastName: "Gómez"})
	require.NoError(t, err)

	want := storedJuan()
	want.LastName = "Gómez"
	assert.Equal(t, want, persisted)
	assert.Equal(t, want, updated)
	assert.Empty(t, persisted.Password, "no new password means the stored hash is kept")
}

func TestUpdate_AppliesAllProvidedFields(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		return storedJuan(), nil
	}
	var persisted models.User
	store.updateUserFunc = func(ctx context.Context, user models.User) error {
		persisted = user
		return nil
	}

	updated, err := svc.Update(context.Background(), 7, dto.UpdateUserRequest{
		FirstName:            "Ana",
		LastName:             "Gómez",
		IdentificationTypeID: pa.ID,
		IdentificationNumber: "AB123",
		Email:                "ana@test.com",
		Password:             "s3cret!",
	})
	require.NoError(t, err)

	assert.Equal(t, "s3cret!", persisted.Password)
	assert.Equal(t, "ana@test.com", persisted.Email)
	assert.Equal(t, pa.ID, persisted.IdentificationTypeID)
	assert.Equal(t, "PA", updated.IdentificationType.Code)
	assert.Equal(t, "AB123", updated.IdentificationNumber)
	assert.Empty(t, updated.Password)
}

func TestUpdate_ValidatesOnlyPresentFields(t *testing.T) {
	tests := []struct {
		name string
		req  dto.UpdateUserRequest
		want error
	}{
		{"bad email", dto.UpdateUserRequest{Email: "no-at-sign"}, ErrInvalidEmail},
		{"short password", dto.UpdateUserRequest{Password: "123"}, ErrPasswordTooShort},
		{"unknown identification type", dto.UpdateUserRequest{IdentificationTypeID: 99}, ErrUnknownIdentification},
		{"identification type before email", dto.UpdateUserRequest{IdentificationTypeID: -2, Email: "bad"}, ErrUnknownIdentification},
		{"long last name", dto.UpdateUserRequest{LastName: strings.Repeat("p", MaxNameLength+1)}, ErrLastNameTooLong},
		{"long identification number", dto.UpdateUserRequest{IdentificationNumber: strings.Repeat("7", MaxIdentificationNumberLength+1)}, ErrIDNumberTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := setupService(t)
			store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
				return storedJuan(), nil
			}
			store.updateUserFunc = func(ctx context.Context, user models.User) error {
				t.Fatal("store must not be updated for invalid input")
				return nil
			}
			_, err := svc.Update(context.Background(), 7, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("empty request is accepted", func(t *testing.T) {
		svc, store, _ := setupService(t)
		store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
			return storedJuan(), nil
		}
		updated, err := svc.Update(context.Background(), 7, dto.UpdateUserRequest{})
		require.NoError(t, err)
		assert.Equal(t, storedJuan(), updated)
	})
}

func TestUpdate_NotFoundBeforeFieldValidation(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Update(context.Background(), 7, dto.UpdateUserRequest{Email: "bad"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		return storedJuan(), nil
	}
	store.updateUserFunc = func(ctx context.Context, user models.User) error {
		return storage.ErrAlreadyExists
	}

	_, err := svc.Update(context.Background(), 7, dto.UpdateUserRequest{Email: "taken@test.com"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestDelete_SecondCallIsNotFound(t *testing.T) {
	svc, store, _ := setupService(t)
	exists := true
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		if exists {
			return storedJuan(), nil
		}
		return models.User{}, storage.ErrNotFound
	}
	store.deleteUserFunc = func(ctx context.Context, id int64) error {
		exists = false
		return nil
	}

	require.NoError(t, svc.Delete(context.Background(), 7))
	err := svc.Delete(context.Background(), 7)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete_StoreFailure(t *testing.T) {
	svc, store, _ := setupService(t)
	store.findUserByIDFunc = func(ctx context.Context, id int64) (models.User, error) {
		return storedJuan(), nil
	}
	store.deleteUserFunc = func(ctx context.Context, id int64) error {
		return errStoreDown
	}

	err := svc.Delete(context.Background(), 7)
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestIdentificationTypes(t *testing.T) {
	svc, _, _ := setupService(t)

	types, err := svc.IdentificationTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.IdentificationType{cc}, types)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal server error", Message(errors.New("boom")))
	assert.Equal(t, "User not found.", Message(ErrUserNotFound))
}
