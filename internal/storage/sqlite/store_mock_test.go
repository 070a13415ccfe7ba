package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/usermanager-be/internal/auth"
	"github.com/hongminglow/usermanager-be/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newStore(db, auth.NewBcryptHasher(bcrypt.MinCost)), mock
}

func TestListUsers_PropagatesQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`(?s)^SELECT .* FROM users u\s+JOIN identification_types t`).
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.ListUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByID_NoRows(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`WHERE u\.id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindUserByID(context.Background(), 7)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIdentificationType_NoRows(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM identification_types WHERE id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}))

	_, err := s.FindIdentificationType(context.Background(), 42)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteUser_PropagatesExecError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnError(errors.New("database is locked"))

	err := s.DeleteUser(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "delete user 3")
}
