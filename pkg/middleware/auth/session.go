package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Verifier interface {
	Verify(token string) (uuid.UUID, error)
}

type UserLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SessionMiddleware resolves the session cookie into an authz.Identity on the
// request context. Requests without a valid session pass through anonymous.
type SessionMiddleware struct {
	Sessions Verifier
	Users    UserLoader
}

func NewSessionMiddleware(sessions Verifier, users UserLoader) *SessionMiddleware {
	return &SessionMiddleware{Sessions: sessions, Users: users}
}

func (m *SessionMiddleware) Attach(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ck, err := c.Cookie(session.CookieName)
		if err != nil || ck.Value == "" {
			return next(c)
		}

		ctx := c.Request().Context()
		l := logging.FromContext(ctx)

		userID, err := m.Sessions.Verify(ck.Value)
		if err != nil {
			l.Debug("session_rejected", "error", err)
			return next(c)
		}

		user, err := m.Users.GetUserByID(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				l.Error("session_user_lookup_failed", "user_id", userID, "error", err)
			}
			return next(c)
		}

		ctx = authz.WithIdentity(ctx, authz.Identity{UserID: user.ID, Permissions: user.Permissions})
		ctx = logging.With(ctx, "user_id", user.ID.String())
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set("user_id", user.ID.String())

		return next(c)
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := authz.FromContext(c.Request().Context()); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "you must be logged in")
		}
		return next(c)
	}
}
