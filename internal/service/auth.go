package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/auth_service/internal/audit"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type UserRepo interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// AuthService composes the token manager, the revocation store and the user
// store. Events and Audit may be nil; both are best-effort sinks.
type AuthService struct {
	Users   UserRepo
	Revoked revocation.Store
	Tokens  *token.Manager
	Events  events.Publisher
	Audit   audit.Recorder
}

// Login checks the password against the stored hash and mints a one-hour
// session token. No revocation-store writes happen here, on success or
// failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "reason", "unknown user")
			return "", err
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch", "user_id", user.ID)
		return "", ErrInvalidCredentials
	}

	signed, err := s.Tokens.Mint(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.emit(ctx, "user_logged_in", user.ID, user.Email)
	l.Info("login_successful", "user_id", user.ID)
	return signed, nil
}

// Logout revokes the presented token. It always succeeds from the caller's
// perspective: a garbage or already-expired token is recorded with a
// conservative default expiry of now+TTL so the record still reaps, and the
// caller sees the same result either way.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	expiresAt := time.Now().Add(token.TTL)
	var userID uint
	var email string
	claims, err := s.Tokens.Verify(raw)
	if err == nil {
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		userID = claims.UserID
		email = claims.Email
	} else {
		l.Info("logout_unverified_token")
	}

	if err := s.Revoked.Revoke(ctx, raw, expiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.emit(ctx, "user_logged_out", userID, email)
	l.Info("logout_successful", "user_id", userID)
	return nil
}

// Signup creates a user with a bcrypt-hashed password. The plaintext never
// leaves this function and the hash is never returned to callers.
func (s *AuthService) Signup(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("signup_failed", "reason", "duplicate email")
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.emit(ctx, "user_registered", user.ID, user.Email)
	l.Info("signup_successful", "user_id", user.ID)
	return user, nil
}

// Authorize answers whether the presented token is currently valid and for
// whom. The revocation set is consulted before the signature check: the
// lookup is cheap and a revoked token must fail no matter what the
// signature says. Every failure collapses into ErrUnauthenticated.
func (s *AuthService) Authorize(ctx context.Context, raw string) (*token.Claims, error) {
	revoked, err := s.Revoked.IsRevoked(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	claims, err := s.Tokens.Verify(raw)
	if err != nil {
		logging.FromContext(ctx).Debug("token_rejected", "error", err)
		return nil, ErrUnauthenticated
	}
	if claims.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// CurrentUser loads the sanitized subject record for an authorized request.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.Users.ByID(ctx, userID)
}

func (s *AuthService) emit(ctx context.Context, eventType string, userID uint, email string) {
	l := logging.FromContext(ctx)

	if s.Events != nil {
		event := map[string]any{
			"type":    eventType,
			"user_id": userID,
			"email":   email,
		}
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Events.PublishEvent(pubCtx, fmt.Sprint(userID), event); err != nil {
			l.Error("kafka_publish_error", "type", eventType, "error", err)
		}
	}

	if s.Audit != nil {
		if err := s.Audit.Record(ctx, audit.NewEvent(eventType, userID, email)); err != nil {
			l.Error("audit_record_error", "type", eventType, "error", err)
		}
	}
}
