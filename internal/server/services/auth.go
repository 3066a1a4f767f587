package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/dbx"
	"github.com/josegonzalo071-svg/house-backend/internal/logging"
	"github.com/josegonzalo071-svg/house-backend/internal/notify"
	"github.com/josegonzalo071-svg/house-backend/internal/passwd"
	"github.com/josegonzalo071-svg/house-backend/internal/server/config"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/repomanager"
	"github.com/josegonzalo071-svg/house-backend/internal/tokens"
)

// Identity is the public view of an account. Salt and hash never leave the
// service layer.
type Identity struct {
	ID       int64
	Username string
	Email    string
}

// AuthService implements the credential lifecycle: register, login
// verification, and the forgot/reset flow. It coordinates the credential
// store and the reset-token store and hands plaintext recovery codes to the
// notifier; it keeps no persistent state of its own.
type AuthService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	hasher       *passwd.Hasher
	generator    *tokens.Generator
	notifier     notify.Notifier
	logger       logging.Logger
	tokenTTL     time.Duration
	storeTimeout time.Duration

	// now is a seam for expiry tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService from repositories, the crypto
// primitives, the notification transport, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, notifier notify.Notifier, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:           db,
		repomanager:  m,
		hasher:       passwd.NewHasher(),
		generator:    tokens.NewGenerator(),
		notifier:     notifier,
		logger:       logger,
		tokenTTL:     cfg.ResetTokenTTL,
		storeTimeout: cfg.StoreCallTimeout,
		now:          time.Now,
	}
}

// Register creates a new account. The existence pre-check only produces a
// friendlier conflict error; the database unique constraints are the actual
// guard against concurrent duplicate registrations.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Identity, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	for _, key := range []string{username, email} {
		err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
			_, err := repo.GetByUsernameOrEmail(ctx, key)
			return err
		})
		switch {
		case err == nil:
			return nil, common.ErrConflict
		case errors.Is(err, common.ErrNotFound):
		default:
			return nil, fmt.Errorf("error checking existing user: %w", err)
		}
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}
	digest, err := s.hasher.Hash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Username: username, Email: email, Salt: salt, PasswordHash: digest}
	err = storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var createErr error
		user, createErr = repo.Create(ctx, user)
		return createErr
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", username)
	return &Identity{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// Login verifies username and password. Unknown user and wrong password are
// reported as the same common.ErrInvalidCredentials kind.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Identity, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	var user *models.User
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var getErr error
		user, getErr = repo.GetByUsername(ctx, username)
		return getErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return &Identity{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// RequestReset issues a recovery code for the account matching
// usernameOrEmail and emails the plaintext code to the registered address.
// The token row is persisted before delivery is attempted, so a transport
// failure leaves an orphaned (harmless, expiring) row behind.
func (s *AuthService) RequestReset(ctx context.Context, usernameOrEmail string) error {
	if usernameOrEmail == "" {
		return fmt.Errorf("%w: username or email is required", common.ErrValidation)
	}

	var user *models.User
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var getErr error
		user, getErr = s.repomanager.Users(s.db).GetByUsernameOrEmail(ctx, usernameOrEmail)
		return getErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	plaintext, digest, err := s.generator.New()
	if err != nil {
		return fmt.Errorf("error generating recovery code: %w", err)
	}

	expiresAt := s.now().Add(s.tokenTTL)
	err = storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		return s.repomanager.ResetTokens(s.db).Create(ctx, user.Username, digest, expiresAt)
	})
	if err != nil {
		return fmt.Errorf("error persisting reset token: %w", err)
	}

	body := fmt.Sprintf(
		"A password reset was requested for account %q.\n\nYour recovery code: %s\n\nThe code expires at %s.",
		user.Username, plaintext, expiresAt.UTC().Format(time.RFC1123))
	if err := s.notifier.Send(ctx, user.Email, "Password recovery", body); err != nil {
		s.logger.Error(ctx, "recovery code delivery failed", "username", user.Username, "error", err)
		return err
	}

	s.logger.Info(ctx, "reset token issued", "username", user.Username)
	return nil
}

// ApplyReset verifies a submitted recovery code and overwrites the account's
// salt and password hash. The matched token is consumed in the same
// transaction, so a code can be used at most once. Other outstanding tokens
// for the user stay live until they expire.
func (s *AuthService) ApplyReset(ctx context.Context, username, plaintextToken, newPassword string) error {
	if username == "" || plaintextToken == "" || newPassword == "" {
		return fmt.Errorf("%w: username, token and new password are required", common.ErrValidation)
	}

	digest := tokens.DigestOf(plaintextToken)

	var token *models.ResetToken
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var findErr error
		token, findErr = s.repomanager.ResetTokens(s.db).FindLatest(ctx, username, digest)
		return findErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrTokenNotFound
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}

	if s.now().After(token.ExpiresAt) {
		return common.ErrTokenExpired
	}

	err = storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		_, getErr := s.repomanager.Users(s.db).GetByUsername(ctx, username)
		return getErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return fmt.Errorf("error generating salt: %w", err)
	}
	newDigest, err := s.hasher.Hash(newPassword, salt)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.repomanager.Users(tx).UpdateCredentials(ctx, username, salt, newDigest); err != nil {
				return err
			}
			return s.repomanager.ResetTokens(tx).Consume(ctx, token.ID)
		})
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error applying reset: %w", err)
	}

	s.logger.Info(ctx, "password reset applied", "username", username)
	return nil
}
