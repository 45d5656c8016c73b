package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/mail"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// RequestReset stores a one-hour reset token for email and mails the link.
// An unknown email yields ErrNotFound, which tells the caller whether the
// account exists.
func (s *AuthService) RequestReset(ctx context.Context, email string) (Message, error) {
	l := logging.FromContext(ctx).With("svc", "auth.request_reset")

	email = normalizeEmail(email)
	if email == "" {
		return Message{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Message{}, fmt.Errorf("%w: no such user found for email %s", ErrNotFound, email)
		}
		return Message{}, fmt.Errorf("%w: lookup user: %w", ErrPersistence, err)
	}

	token, err := hash.GenerateToken(hash.ResetTokenBytes)
	if err != nil {
		return Message{}, err
	}
	expiry := s.now().Add(resetWindow)
	if err := s.Users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return Message{}, fmt.Errorf("%w: store reset token: %w", ErrPersistence, err)
	}

	if s.Mailer != nil {
		if err := s.sendResetMail(ctx, user.Email, token); err != nil {
			l.Error("reset_mail_failed", "user_id", user.ID, "error", err)
		}
	}

	l.Info("reset_requested", "user_id", user.ID)
	return Message{Message: "Thanks"}, nil
}

func (s *AuthService) sendResetMail(ctx context.Context, to, token string) error {
	link := strings.TrimRight(s.FrontendURL, "/") + "/reset?resetToken=" + url.QueryEscape(token)
	body, err := mail.ResetEmail(link)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, to, "Your Password Reset Token", body)
}

// ResetPassword redeems a reset token. The token is cleared on success so it
// cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords don't match", ErrValidation)
	}
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.Users.FindUserByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("reset_failed", "status", 400, "reason", "token invalid or expired")
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("%w: lookup reset token: %w", ErrPersistence, err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	updated, err := s.Users.CompleteReset(ctx, user.ID, pwHash)
	if err != nil {
		return nil, fmt.Errorf("%w: save new password: %w", ErrPersistence, err)
	}

	sessionToken, err := s.Sessions.Issue(updated.ID)
	if err != nil {
		return nil, err
	}

	l.Info("reset_successful", "user_id", updated.ID)
	return &AuthResult{User: updated, Token: sessionToken}, nil
}
