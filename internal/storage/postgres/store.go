package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/storage"
	"github.com/hongminglow/usermanager-be/internal/storage/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Ensure Store satisfies the storage.IdentityStore interface at compile time.
var _ storage.IdentityStore = (*Store)(nil)

const uniqueViolation = "23505"

const userColumns = `u.id, u.first_name, u.last_name, u.identification_type_id, u.identification_number,
	u.email, u.password_hash, t.id, t.code, t.name`

// Store provides Postgres-backed persistence for users and identification types.
type Store struct {
	pool   *pgxpool.Pool
	hasher storage.PasswordHasher
}

// NewIdentityStore creates a new Store and runs migrations.
func NewIdentityStore(ctx context.Context, databaseURL string, hasher storage.PasswordHasher) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool, hasher: hasher}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return migrations.Up(ctx, db, migrations.Postgres)
}

// ListUsers returns every user with its identification type resolved.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM users u
	JOIN identification_types t ON t.id = u.identification_type_id
	ORDER BY u.id;`
	rows, err := s.pool.Query(ctx, query)
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

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM users u
	JOIN identification_types t ON t.id = u.identification_type_id
	WHERE u.id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindByCredentials fetches the user owning email and verifies password against its hash.
// A wrong password is reported as storage.ErrNotFound so callers cannot tell the cases apart.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM users u
	JOIN identification_types t ON t.id = u.identification_type_id
	WHERE u.email = $1;`
	user, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		return models.User{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// CreateUser hashes the password and inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	const query = `
		WITH inserted AS (
			INSERT INTO users (first_name, last_name, identification_type_id, identification_number, email, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, first_name, last_name, identification_type_id, identification_number, email, password_hash
		)
		SELECT u.id, u.first_name, u.last_name, u.identification_type_id, u.identification_number,
			u.email, u.password_hash, t.id, t.code, t.name
		FROM inserted u
		JOIN identification_types t ON t.id = u.identification_type_id;
		`
	row := s.pool.QueryRow(ctx, query, user.FirstName, user.LastName, user.IdentificationTypeID,
		user.IdentificationNumber, user.Email, hash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// UpdateUser overwrites the stored row with the given values.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	hash := user.PasswordHash
	if user.Password != "" {
		var err error
		if hash, err = s.hasher.Hash(user.Password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	const query = `
	UPDATE users
	SET first_name = $2, last_name = $3, identification_type_id = $4, identification_number = $5,
		email = $6, password_hash = $7, updated_at = NOW()
	WHERE id = $1;
	`
	_, err := s.pool.Exec(ctx, query, user.ID, user.FirstName, user.LastName, user.IdentificationTypeID,
		user.IdentificationNumber, user.Email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}

// DeleteUser removes a user row when present.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// ListIdentificationTypes returns the identification type reference table.
func (s *Store) ListIdentificationTypes(ctx context.Context) ([]models.IdentificationType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, code, name FROM identification_types ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list identification types: %w", err)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.IdentificationType, error) {
		var it models.IdentificationType
		err := row.Scan(&it.ID, &it.Code, &it.Name)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("list identification types: %w", err)
	}
	return types, nil
}

// FindIdentificationType fetches one identification type by id.
func (s *Store) FindIdentificationType(ctx context.Context, id int64) (models.IdentificationType, error) {
	var it models.IdentificationType
	err := s.pool.QueryRow(ctx, `SELECT id, code, name FROM identification_types WHERE id = $1;`, id).
		Scan(&it.ID, &it.Code, &it.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.IdentificationType{}, storage.ErrNotFound
		}
		return models.IdentificationType{}, fmt.Errorf("find identification type %d: %w", id, err)
	}
	return it, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var idType models.IdentificationType
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.IdentificationTypeID,
		&user.IdentificationNumber, &user.Email, &user.PasswordHash, &idType.ID, &idType.Code, &idType.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.IdentificationType = &idType
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
