// Package sqlite provides an embedded IdentityStore backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/storage"
	"github.com/hongminglow/usermanager-be/internal/storage/migrations"
)

var _ storage.IdentityStore = (*Store)(nil)

const selectUsers = `SELECT u.id, u.first_name, u.last_name, u.identification_type_id, u.identification_number,
	u.email, u.password_hash, t.id, t.code, t.name
FROM users u
JOIN identification_types t ON t.id = u.identification_type_id`

// Store persists users and identification types in a SQLite database file.
type Store struct {
	db     *sql.DB
	hasher storage.PasswordHasher
}

// NewIdentityStore opens the database at dsn, enables foreign keys and runs migrations.
func NewIdentityStore(ctx context.Context, dsn string, hasher storage.PasswordHasher) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{`PRAGMA foreign_keys = ON`, `PRAGMA busy_timeout = 5000`} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		db.Close()
		return nil, err
	}
	return newStore(db, hasher), nil
}

func newStore(db *sql.DB, hasher storage.PasswordHasher) *Store {
	return &Store{db: db, hasher: hasher}
}

// Close releases the database handle.
func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUsers+` ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	return s.findOne(ctx, selectUsers+` WHERE u.id = ?`, id)
}

// FindByCredentials reports storage.ErrNotFound for both an unknown email and a wrong password.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.findOne(ctx, selectUsers+` WHERE u.email = ?`, email)
	if err != nil {
		return models.User{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO users
		(first_name, last_name, identification_type_id, identification_number, email, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.IdentificationTypeID, user.IdentificationNumber, user.Email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return s.FindUserByID(ctx, id)
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	hash := user.PasswordHash
	if user.Password != "" {
		var err error
		if hash, err = s.hasher.Hash(user.Password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `UPDATE users
		SET first_name = ?, last_name = ?, identification_type_id = ?, identification_number = ?,
			email = ?, password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		user.FirstName, user.LastName, user.IdentificationTypeID, user.IdentificationNumber,
		user.Email, hash, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListIdentificationTypes(ctx context.Context) ([]models.IdentificationType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name FROM identification_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list identification types: %w", err)
	}
	defer rows.Close()

	types := make([]models.IdentificationType, 0)
	for rows.Next() {
		var it models.IdentificationType
		if err := rows.Scan(&it.ID, &it.Code, &it.Name); err != nil {
			return nil, fmt.Errorf("list identification types: %w", err)
		}
		types = append(types, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list identification types: %w", err)
	}
	return types, nil
}

func (s *Store) FindIdentificationType(ctx context.Context, id int64) (models.IdentificationType, error) {
	var it models.IdentificationType
	err := s.db.QueryRowContext(ctx, `SELECT id, code, name FROM identification_types WHERE id = ?`, id).
		Scan(&it.ID, &it.Code, &it.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IdentificationType{}, storage.ErrNotFound
		}
		return models.IdentificationType{}, fmt.Errorf("find identification type %d: %w", id, err)
	}
	return it, nil
}

func (s *Store) findOne(ctx context.Context, query string, arg any) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	var idType models.IdentificationType
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.IdentificationTypeID,
		&user.IdentificationNumber, &user.Email, &user.PasswordHash, &idType.ID, &idType.Code, &idType.Name); err != nil {
		return models.User{}, err
	}
	user.IdentificationType = &idType
	return user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
