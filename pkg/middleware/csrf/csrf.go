package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const tokenBytes = 32

// Config drives a double-submit cookie check: the token is readable by the
// frontend in CookieName and must come back in HeaderName (or FormField) on
// every unsafe request.
type Config struct {
	CookieName string
	HeaderName string
	FormField  string

	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	EnforceSameOrigin bool
	// TrustedOrigins are accepted in addition to the request's own origin,
	// e.g. the storefront frontend served from another host.
	TrustedOrigins []string

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:        "XSRF-TOKEN",
		HeaderName:        "X-CSRF-Token",
		FormField:         "csrf_token",
		CookiePath:        "/",
		SameSite:          http.SameSiteLaxMode,
		MaxAge:            24 * time.Hour,
		EnforceSameOrigin: true,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&cfg.CookieName, def.CookieName)
	fill(&cfg.HeaderName, def.HeaderName)
	fill(&cfg.FormField, def.FormField)
	fill(&cfg.CookiePath, def.CookiePath)
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	return cfg
}

type guard struct {
	cfg     Config
	skip    map[string]bool
	trusted map[string]bool
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	g := &guard{
		cfg:     cfg.withDefaults(),
		skip:    make(map[string]bool, len(cfg.SkipPaths)),
		trusted: make(map[string]bool, len(cfg.TrustedOrigins)),
	}
	for _, p := range cfg.SkipPaths {
		g.skip[p] = true
	}
	for _, o := range cfg.TrustedOrigins {
		if origin, ok := originOf(o); ok {
			g.trusted[origin] = true
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.skip[c.Request().URL.Path] {
				return next(c)
			}
			token, err := g.ensureToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
			}
			if isSafe(c.Request().Method) {
				c.Response().Header().Set(g.cfg.HeaderName, token)
				return next(c)
			}
			if err := g.verify(c.Request(), token); err != nil {
				return err
			}
			c.Set("csrf_token", token)
			return next(c)
		}
	}
}

// ensureToken returns the token from the cookie, minting one when absent,
// and refreshes the cookie either way.
func (g *guard) ensureToken(c echo.Context) (string, error) {
	token := ""
	if ck, err := c.Request().Cookie(g.cfg.CookieName); err == nil {
		token = ck.Value
	}
	if token == "" {
		b := make([]byte, tokenBytes)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		token = base64.RawURLEncoding.EncodeToString(b)
	}
	c.SetCookie(&http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    token,
		Path:     g.cfg.CookiePath,
		Domain:   g.cfg.Domain,
		Secure:   g.cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(g.cfg.MaxAge / time.Second),
		SameSite: g.cfg.SameSite,
	})
	return token, nil
}

func (g *guard) verify(r *http.Request, token string) error {
	if g.cfg.EnforceSameOrigin && !g.allowedOrigin(r) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
	}
	provided := r.Header.Get(g.cfg.HeaderName)
	if provided == "" && r.ParseForm() == nil {
		provided = r.FormValue(g.cfg.FormField)
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
		return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
	}
	return nil
}

func (g *guard) allowedOrigin(r *http.Request) bool {
	raw := r.Header.Get("Origin")
	if raw == "" {
		raw = r.Header.Get("Referer")
	}
	origin, ok := originOf(raw)
	if !ok {
		return false
	}
	if g.trusted[origin] {
		return true
	}
	return origin == strings.ToLower(requestScheme(r)+"://"+r.Host)
}

func isSafe(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// originOf reduces a URL to its lowercased scheme://host.
func originOf(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

func requestScheme(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
