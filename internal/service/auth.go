package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const resetWindow = time.Hour

type AuthService struct {
	Users       UserRepo
	Sessions    SessionIssuer
	Mailer      Mailer
	Events      EventPublisher
	FrontendURL string
	Now         func() time.Time
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

type Message struct {
	Message string `json:"message"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", ErrValidation)
	}

	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		l.Warn("signup_error", "status", 409, "reason", "email already registered")
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lookup user: %w", ErrPersistence, err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Permissions:  models.PermissionSet{models.PermissionUser},
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		l.Error("signup_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: create user: %w", ErrPersistence, err)
	}

	token, err := s.Sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), UserEvent{
		Type:   "user_registered",
		UserID: user.ID,
		Email:  user.Email,
	})
	l.Info("signup_successful", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Signin reports ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("signin_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %w", ErrPersistence, err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("signin_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID.String(), UserEvent{
		Type:   "user_signed_in",
		UserID: user.ID,
		Email:  user.Email,
	})
	l.Info("signin_successful", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Signout(ctx context.Context) Message {
	if id, ok := authz.FromContext(ctx); ok {
		logging.FromContext(ctx).Info("signout", "user_id", id.UserID)
	}
	return Message{Message: "Goodbye!"}
}

// Me returns nil without error for anonymous callers.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	id, ok := authz.FromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := s.Users.GetUserWithCart(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrPersistence, err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := authz.RequirePermission(id.Permissions, models.PermissionAdmin, models.PermissionPermissionUpdate); err != nil {
		return nil, err
	}
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", ErrPersistence, err)
	}
	return users, nil
}

// UpdatePermissions replaces the permission set of userID. The caller's own
// permissions are re-read from the store rather than trusted from the session.
func (s *AuthService) UpdatePermissions(ctx context.Context, userID uuid.UUID, labels []string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_permissions")

	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.Users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthenticationRequired
		}
		return nil, fmt.Errorf("%w: load caller: %w", ErrPersistence, err)
	}
	if err := authz.RequirePermission(current.Permissions, models.PermissionAdmin, models.PermissionPermissionUpdate); err != nil {
		l.Warn("update_permissions_denied", "status", 403, "user_id", id.UserID)
		return nil, err
	}

	perms, err := models.ParsePermissionSet(labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	updated, err := s.Users.UpdatePermissions(ctx, userID, perms)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: update permissions: %w", ErrPersistence, err)
	}

	l.Info("permissions_updated", "target_id", userID, "permissions", perms.Strings())
	return updated, nil
}
