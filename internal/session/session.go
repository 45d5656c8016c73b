package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CookieName = "token"

	// SignInMaxAge is the cookie lifetime after signup or signin.
	SignInMaxAge = 30 * 24 * time.Hour
	// ResetMaxAge is the cookie lifetime after a password reset.
	ResetMaxAge = 7 * 24 * time.Hour

	DefaultTTL = SignInMaxAge
)

var ErrInvalidSession = errors.New("invalid session token")

// SigningKey is the HMAC secret session tokens are signed with.
type SigningKey []byte

// Issuer signs and verifies session tokens. Tokens are stateless: one stays
// valid until its exp claim even after the cookie carrying it is cleared.
type Issuer struct {
	key          SigningKey
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

type Option func(*Issuer)

func WithSecureCookie(secure bool) Option {
	return func(i *Issuer) { i.secureCookie = secure }
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(key SigningKey, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if len(key) == 0 {
		return nil, errors.New("session signing key is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	i := &Issuer{
		key:          key,
		ttl:          ttl,
		secureCookie: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) Issue(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("cannot issue session for nil user id")
	}
	now := i.now()
	tok, err := tokens.NewSessionToken(userID.String(), now, now.Add(i.ttl), i.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return tok, nil
}

func (i *Issuer) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrInvalidSession
	}
	claims, err := tokens.SessionClaimsFromToken(token, i.key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}
	return id, nil
}

func (i *Issuer) SetCookie(c echo.Context, token string, maxAge time.Duration) {
	c.SetCookie(CreateCookie(CookieName, token, "/", maxAge, i.secureCookie))
}

func (i *Issuer) ClearCookie(c echo.Context) {
	c.SetCookie(DeleteCookie(CookieName, "/", i.secureCookie))
}

func CreateCookie(name, value, path string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
