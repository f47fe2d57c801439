package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

// emailTakenMessage is reported on the email field when registering an
// address that already has an account.
const emailTakenMessage = "The email has already been taken."

// timingPassword is hashed once to give logins for unknown emails a hash to
// compare against, so they cost the same as a wrong password.
const timingPassword = "todo-api-unknown-account"

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User  *domain.User
	Token *auth.IssuedToken
}

// UserService provides account operations.
type UserService interface {
	// Register creates an account. Invalid input, including an email that is
	// already registered, is reported as *domain.ValidationError.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Login verifies credentials and issues a bearer token.
	// Returns ErrInvalidCredentials on an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Logout revokes every token of the user.
	Logout(ctx context.Context, userID uuid.UUID) error

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	tokens    auth.TokenIssuer
	db        store.Beginner
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	db store.Beginner,
	logger *slog.Logger,
) *UserServiceImpl {
	if userStore == nil || hasher == nil || tokens == nil || db == nil {
		panic("user service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		tokens:    tokens,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}
}

// Register creates a user with a bcrypt-hashed password inside a transaction.
func (s *UserServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	verr := &domain.ValidationError{}
	if err != nil && !errors.As(err, &verr) {
		return nil, NewServiceError("user", "register", "failed to build user", err)
	}

	// Uniqueness is only meaningful for a well-formed address.
	if _, bad := verr.Fields()["email"]; !bad {
		taken, err := s.emailTaken(ctx, strings.TrimSpace(email))
		if err != nil {
			return nil, err
		}
		if taken {
			verr = withEmailTaken(verr)
		}
	}
	if verr.HasErrors() {
		log.Debug("registration rejected", slog.String("error", verr.Error()))
		return nil, verr
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hash

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	user.Password = ""
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Lost a race with a concurrent registration of the same address.
			return nil, domain.NewValidationError("email", emailTakenMessage)
		}
		log.Error("failed to save user",
			"error", err,
			"user_id", user.ID)
		return nil, NewServiceError("user", "register", "failed to save user", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserServiceImpl) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.userStore.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case store.IsNotFoundError(err):
		return false, nil
	default:
		return false, NewServiceError("user", "register", "failed to check email", err)
	}
}

// withEmailTaken returns verr with the taken-email message placed in field
// order (name, email, password) so the first message stays stable.
func withEmailTaken(verr *domain.ValidationError) *domain.ValidationError {
	out := &domain.ValidationError{}
	added := false
	for _, fe := range verr.Errors() {
		if !added && fe.Field == "password" {
			out.Add("email", emailTakenMessage)
			added = true
		}
		out.Add(fe.Field, fe.Message)
	}
	if !added {
		out.Add("email", emailTakenMessage)
	}
	return out
}

// Login verifies the credentials and issues a token.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if verr := validateLogin(email, password); verr != nil {
		return nil, verr
	}

	user, err := s.userStore.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			s.compareDummy(log, password)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", "error", err)
		return nil, NewServiceError("user", "login", "failed to look up user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue token", "error", err, "user_id", user.ID)
		return nil, NewServiceError("user", "login", "failed to issue token", err)
	}

	log.Info("user logged in", "user_id", user.ID)
	return &LoginResult{User: user, Token: token}, nil
}

// compareDummy spends one password comparison against a throwaway hash.
func (s *UserServiceImpl) compareDummy(log *slog.Logger, password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			log.Error("failed to prepare login timing hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}

func validateLogin(email, password string) error {
	verr := &domain.ValidationError{}
	trimmed := strings.TrimSpace(email)
	switch {
	case trimmed == "":
		verr.Add("email", "The email field is required.")
	case !domain.IsValidEmail(trimmed):
		verr.Add("email", "The email field must be a valid email address.")
	}
	if password == "" {
		verr.Add("password", "The password field is required.")
	}
	return verr.OrNil()
}

// Logout revokes all of the user's tokens.
func (s *UserServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.tokens.RevokeAll(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke tokens",
			"error", err,
			"user_id", userID)
		return NewServiceError("user", "logout", "failed to revoke tokens", err)
	}
	return nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("user", "get_user", "failed to retrieve user", err)
	}
	return user, nil
}
