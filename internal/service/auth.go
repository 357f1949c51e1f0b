package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/glycoguard/glycoguard/internal/auth"
	"github.com/glycoguard/glycoguard/internal/metrics"
	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/repository"
)

const (
	maxUsernameLength = 150
	maxPasswordLength = 1024
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// IdentityCache remembers token subjects that were confirmed to exist.
type IdentityCache interface {
	UserKnown(ctx context.Context, userID string) (bool, error)
	RememberUser(ctx context.Context, userID string) error
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	users   UserStore
	cache   IdentityCache
	tokens  *auth.TokenIssuer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService. cache may be nil.
func NewAuthService(users UserStore, cache IdentityCache, tokens *auth.TokenIssuer, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		cache:   cache,
		tokens:  tokens,
		logger:  logger.With("component", "auth"),
		metrics: recorder,
	}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             generateULID(),
		Username:       username,
		PasswordDigest: digest,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			s.metrics.IncRegistration("conflict")
			return "", ErrUsernameTaken
		}
		s.metrics.IncRegistration(metrics.StatusFailed)
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncRegistration(metrics.StatusSuccess)
	s.logger.Info("user registered", "user_id", user.ID)

	return s.tokens.Issue(user.ID)
}

// Login verifies credentials and returns a fresh token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.IncLogin(metrics.StatusFailed)
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnVerify(password)
			s.loginFailed(username)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordDigest)
	if err != nil {
		return "", fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		s.loginFailed(username)
		return "", ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.StatusSuccess)
	return s.tokens.Issue(user.ID)
}

func (s *AuthService) loginFailed(username string) {
	s.metrics.IncLogin(metrics.StatusFailed)
	s.logger.Info("login failed", "username_hash", auth.QuickHash(username))
}

// ResolveIdentity maps a bearer token to a user ID.
//
// With auth.Optional it never fails: a missing, invalid or expired token, or
// one naming an unknown user, yields "" and the caller proceeds anonymously.
// With auth.Mandatory the same cases return ErrUnauthenticated.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string, req auth.Requirement) (string, error) {
	userID, err := s.resolve(ctx, token)
	if err == nil {
		return userID, nil
	}

	if req == auth.Optional {
		if !errors.Is(err, ErrUnauthenticated) {
			s.logger.Warn("identity lookup failed, continuing anonymously", "error", err)
		}
		return "", nil
	}
	return "", err
}

func (s *AuthService) resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	userID, err := s.tokens.Subject(token)
	if err != nil {
		return "", ErrUnauthenticated
	}

	if s.cache != nil {
		known, err := s.cache.UserKnown(ctx, userID)
		if err != nil {
			s.logger.Warn("identity cache read failed", "error", err)
		} else if known {
			return userID, nil
		}
	}

	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return "", ErrUnauthenticated
	}

	if s.cache != nil {
		if err := s.cache.RememberUser(ctx, userID); err != nil {
			s.logger.Warn("identity cache write failed", "error", err)
		}
	}

	return userID, nil
}

func validateCredentials(username, password string) error {
	switch {
	case username == "":
		return invalid("username", "Username and password required")
	case password == "":
		return invalid("password", "Username and password required")
	case len(username) > maxUsernameLength:
		return invalid("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	case len(password) > maxPasswordLength:
		return invalid("password", fmt.Sprintf("password must be at most %d characters", maxPasswordLength))
	}
	return nil
}

// generateULID creates a new ULID string.
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
