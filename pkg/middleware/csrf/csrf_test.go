package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/v1/items", ok)
	e.POST("/api/v1/cart", ok)
	e.POST("/hooks/payment", ok)
	return e
}

func issueToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	tok := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, tok)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, tok, cookie.Value)
	assert.False(t, cookie.HttpOnly)
	return tok
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	e := newEcho(Config{
		SkipPaths:         []string{"/hooks/payment"},
		EnforceSameOrigin: true,
		TrustedOrigins:    []string{"http://localhost:7777"},
	})
	tok := issueToken(t, e)

	tests := []struct {
		name   string
		origin string
		cookie string
		header string
		path   string
		want   int
	}{
		{name: "matching token same origin", origin: "http://example.com", cookie: tok, header: tok, want: http.StatusNoContent},
		{name: "trusted frontend origin", origin: "http://localhost:7777", cookie: tok, header: tok, want: http.StatusNoContent},
		{name: "foreign origin", origin: "http://evil.test", cookie: tok, header: tok, want: http.StatusForbidden},
		{name: "missing origin", cookie: tok, header: tok, want: http.StatusForbidden},
		{name: "missing header", origin: "http://example.com", cookie: tok, want: http.StatusForbidden},
		{name: "mismatched header", origin: "http://example.com", cookie: tok, header: tok + "x", want: http.StatusForbidden},
		{name: "no cookie", origin: "http://example.com", header: tok, want: http.StatusForbidden},
		{name: "skipped path", path: "/hooks/payment", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/api/v1/cart"
			}
			req := httptest.NewRequest(http.MethodPost, path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddleware_ReusesExistingToken(t *testing.T) {
	t.Parallel()

	e := newEcho(Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "kept"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "kept", rec.Header().Get("X-CSRF-Token"))
}
