// Package directory implements the identity directory: credential checks,
// token issuance and validated mutation of user records.
//
// Every failing operation returns an *Error whose Kind tells the caller how
// to render it. Store failures surface as KindPersistence and are never retried.
package directory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hongminglow/usermanager-be/internal/metrics"
	"github.com/hongminglow/usermanager-be/internal/models"
	"github.com/hongminglow/usermanager-be/internal/models/dto"
	"github.com/hongminglow/usermanager-be/internal/storage"
)

// TokenIssuer signs a bearer token for a verified user.
type TokenIssuer interface {
	Generate(user models.User) (models.AuthToken, error)
}

// Service orchestrates the store, validation rules and token issuer.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	store  storage.IdentityStore
	tokens TokenIssuer
	rules  *Rules
	log    *slog.Logger
}

func NewService(store storage.IdentityStore, tokens TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, tokens: tokens, rules: NewRules(), log: log}
}

// Authenticate verifies email and password and issues a token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.AuthToken, error) {
	if email == "" || password == "" {
		return models.AuthToken{}, s.fail("authenticate", ErrInvalidCredentials)
	}
	user, err := s.store.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.InfoContext(ctx, "authentication failed", "email", email)
			return models.AuthToken{}, s.fail("authenticate", ErrInvalidCredentials)
		}
		return models.AuthToken{}, s.fail("authenticate", persistence("authenticate", err))
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return models.AuthToken{}, s.fail("authenticate", internal("issue token", err))
	}
	metrics.TokensIssuedTotal.Inc()
	s.ok("authenticate")
	return token, nil
}

// List returns all users with their identification type resolved.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	s.log.InfoContext(ctx, "listing users")
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, s.fail("list", persistence("list users", err))
	}
	s.ok("list")
	return users, nil
}

// GetByID returns the user with id.
func (s *Service) GetByID(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		s.log.WarnContext(ctx, "invalid user id", "id", id)
		return models.User{}, s.fail("get", ErrInvalidUserID)
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return models.User{}, s.fail("get", err)
	}
	s.ok("get")
	return user, nil
}

// Create validates req and persists a new user. Checks run in a fixed order:
// identification type, email, password, then the free-text field lengths.
func (s *Service) Create(ctx context.Context, req dto.CreateUserRequest) (models.User, error) {
	if _, err := s.identificationType(ctx, req.IdentificationTypeID); err != nil {
		return models.User{}, s.fail("create", err)
	}
	if err := s.rules.Email(req.Email); err != nil {
		return models.User{}, s.fail("create", err)
	}
	if err := s.rules.Password(req.Password); err != nil {
		return models.User{}, s.fail("create", err)
	}
	if err := s.rules.Profile(req.FirstName, req.LastName, req.IdentificationNumber); err != nil {
		return models.User{}, s.fail("create", err)
	}

	user := models.User{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		IdentificationTypeID: req.IdentificationTypeID,
		IdentificationNumber: req.IdentificationNumber,
		Email:                req.Email,
		Password:             req.Password,
	}
	s.log.InfoContext(ctx, "creating user", "email", req.Email)
	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, s.fail("create", ErrEmailTaken)
		}
		return models.User{}, s.fail("create", persistence("create user", err))
	}
	s.ok("create")
	return created, nil
}

// Update applies the non-empty fields of req to the user with id.
// Fields left empty keep their stored values.
func (s *Service) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (models.User, error) {
	if id <= 0 {
		s.log.WarnContext(ctx, "invalid user id", "id", id)
		return models.User{}, s.fail("update", ErrInvalidID)
	}
	user, err := s.findUser(ctx, id)
	if err != nil {
		return models.User{}, s.fail("update", err)
	}

	if req.IdentificationTypeID != 0 {
		idType, err := s.identificationType(ctx, req.IdentificationTypeID)
		if err != nil {
			return models.User{}, s.fail("update", err)
		}
		user.IdentificationTypeID = idType.ID
		user.IdentificationType = &idType
	}
	if req.Email != "" {
		if err := s.rules.Email(req.Email); err != nil {
			return models.User{}, s.fail("update", err)
		}
		user.Email = req.Email
	}
	if req.Password != "" {
		if err := s.rules.Password(req.Password); err != nil {
			return models.User{}, s.fail("update", err)
		}
		user.Password = req.Password
	}
	if err := s.rules.Profile(req.FirstName, req.LastName, req.IdentificationNumber); err != nil {
		return models.User{}, s.fail("update", err)
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.IdentificationNumber != "" {
		user.IdentificationNumber = req.IdentificationNumber
	}

	s.log.InfoContext(ctx, "updating user", "id", id)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, s.fail("update", ErrEmailTaken)
		}
		return models.User{}, s.fail("update", persistence("update user", err))
	}
	user.Password = ""
	s.ok("update")
	return user, nil
}

// Delete removes the user with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		s.log.WarnContext(ctx, "invalid user id", "id", id)
		return s.fail("delete", ErrInvalidID)
	}
	if _, err := s.findUser(ctx, id); err != nil {
		return s.fail("delete", err)
	}
	s.log.InfoContext(ctx, "deleting user", "id", id)
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return s.fail("delete", persistence("delete user", err))
	}
	s.ok("delete")
	return nil
}

// IdentificationTypes returns the identification type reference table.
func (s *Service) IdentificationTypes(ctx context.Context) ([]models.IdentificationType, error) {
	s.log.InfoContext(ctx, "listing identification types")
	types, err := s.store.ListIdentificationTypes(ctx)
	if err != nil {
		return nil, s.fail("list_identification_types", persistence("list identification types", err))
	}
	s.ok("list_identification_types")
	return types, nil
}

func (s *Service) findUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WarnContext(ctx, "user not found", "id", id)
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, persistence("find user", err)
	}
	return user, nil
}

func (s *Service) identificationType(ctx context.Context, id int64) (models.IdentificationType, error) {
	if id <= 0 {
		return models.IdentificationType{}, ErrUnknownIdentification
	}
	idType, err := s.store.FindIdentificationType(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.IdentificationType{}, ErrUnknownIdentification
		}
		return models.IdentificationType{}, persistence("find identification type", err)
	}
	return idType, nil
}

func (s *Service) ok(op string) {
	metrics.ObserveOperation(op, "ok")
}

func (s *Service) fail(op string, err error) error {
	kind := KindOf(err)
	metrics.ObserveOperation(op, kind.String())
	if kind == KindPersistence || kind == KindInternal {
		s.log.Error("directory operation failed", "operation", op, "error", err)
	}
	return err
}
