package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CookieJar interface {
	SetCookie(c echo.Context, token string, maxAge time.Duration)
	ClearCookie(c echo.Context)
}

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies CookieJar
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signup_error", "invalid body", err)
	}

	res, err := h.Svc.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return fail(l, "signup_error", err)
	}
	h.Cookies.SetCookie(c, res.Token, session.SignInMaxAge)

	l.Info("signup_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(res.User))
}

func (h *AuthHTTP) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.SigninRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signin_error", "invalid body", err)
	}

	res, err := h.Svc.Signin(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "signin_error", err)
	}
	h.Cookies.SetCookie(c, res.Token, session.SignInMaxAge)

	l.Info("signin_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(res.User))
}

func (h *AuthHTTP) Signout(c echo.Context) error {
	h.Cookies.ClearCookie(c)
	return c.JSON(http.StatusOK, h.Svc.Signout(c.Request().Context()))
}

// Me answers with null for anonymous callers.
func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	user, err := h.Svc.Me(ctx)
	if err != nil {
		return fail(l, "me_error", err)
	}
	if user == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *AuthHTTP) RequestReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.request_reset")

	var req transport.RequestResetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "request_reset_error", "invalid body", err)
	}

	msg, err := h.Svc.RequestReset(ctx, req.Email)
	if err != nil {
		return fail(l, "request_reset_error", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_password_error", "invalid body", err)
	}

	res, err := h.Svc.ResetPassword(ctx, req.ResetToken, req.Password, req.ConfirmPassword)
	if err != nil {
		return fail(l, "reset_password_error", err)
	}
	h.Cookies.SetCookie(c, res.Token, session.ResetMaxAge)

	l.Info("reset_password_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(res.User))
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.list_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponses(users))
}

func (h *AuthHTTP) UpdatePermissions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_permissions")

	userID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "update_permissions_error", "id not a uuid", err)
	}
	var req transport.UpdatePermissionsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_permissions_error", "invalid body", err)
	}

	user, err := h.Svc.UpdatePermissions(ctx, userID, req.Permissions)
	if err != nil {
		return fail(l, "update_permissions_error", err)
	}

	l.Info("update_permissions_success", "target_id", user.ID)
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}
