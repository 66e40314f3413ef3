package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/service/auth"
	"github.com/jukuhub/juku-api/internal/store"
)

// UserUpdate carries the admin-editable profile fields. Nil fields are left
// unchanged.
type UserUpdate struct {
	Role               *domain.Role
	MustChangePassword *bool
	Password           *string
}

// UserService provides registration, authentication and admin user management.
type UserService interface {
	// Register provisions a new user with the default profile: student role
	// and a forced password change on first login.
	// Returns store.ErrEmailExists when the email is already taken.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate verifies an email/password pair.
	// Returns ErrInvalidCredentials on unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers retrieves all user profiles ordered by creation time.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser applies an admin update to the target user. An admin cannot
	// remove their own admin role; such updates fail with
	// domain.ErrSelfDemotion and change nothing.
	UpdateUser(ctx context.Context, callerID, targetID uuid.UUID, update UserUpdate) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore store.UserStore
	verifier  auth.PasswordVerifier
	db        *sql.DB
	logger    *slog.Logger
	runTx     func(ctx context.Context, db *sql.DB, fn store.TxFn) error // Injectable for testing
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		db:        db,
		logger:    logger.With("component", "user_service"),
		runTx:     store.RunInTransaction,
	}
}

// Register implements UserService.Register.
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register existing email", "email", email)
			return nil, err
		}
		s.logger.Error("failed to save user",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"role", user.Role)

	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to load user for authentication",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.GetUser.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// ListUsers implements UserService.ListUsers.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser implements UserService.UpdateUser.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	callerID, targetID uuid.UUID,
	update UserUpdate,
) (*domain.User, error) {
	target, err := s.userStore.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if update.Role != nil {
		if !domain.IsValidRole(*update.Role) {
			return nil, domain.ErrInvalidRole
		}
		// The last thing an admin may do is lock themselves out.
		if callerID == targetID && target.IsAdmin() && *update.Role != domain.RoleAdmin {
			s.logger.Warn("self-demotion rejected", "user_id", callerID)
			return nil, domain.ErrSelfDemotion
		}
		target.Role = *update.Role
	}

	if update.MustChangePassword != nil {
		target.MustChangePassword = *update.MustChangePassword
	}

	if update.Password != nil {
		target.Password = *update.Password
		if err := target.Validate(); err != nil {
			return nil, err
		}
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Update(ctx, target)
	})
	if err != nil {
		s.logger.Error("failed to update user",
			"error", err,
			"user_id", targetID)
		return nil, err
	}

	s.logger.Info("user updated",
		"user_id", targetID,
		"updated_by", callerID)

	return target, nil
}
