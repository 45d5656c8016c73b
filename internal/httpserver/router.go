package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	Session        *middleware.SessionMiddleware
	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(c echo.Context) error
}

type Options struct {
	Logger *slog.Logger
	// AllowOrigins are the frontends allowed to call the API with credentials.
	AllowOrigins []string
	// CSRF enables the double-submit check when non-nil.
	CSRF *csrf.Config
}

// New builds the echo instance with the standard middleware chain and all
// routes registered.
func New(d *Deps, opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())
	if len(opts.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     opts.AllowOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID, "X-CSRF-Token"},
			ExposeHeaders:    []string{"X-CSRF-Token"},
		}))
	}
	if opts.CSRF != nil {
		e.Use(csrf.Middleware(*opts.CSRF))
	}
	e.Use(d.Session.Attach)

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/signin", d.AuthHandler.Signin)
	auth.POST("/signout", d.AuthHandler.Signout)
	auth.POST("/request-reset", d.AuthHandler.RequestReset)
	auth.POST("/reset", d.AuthHandler.ResetPassword)

	v1.GET("/me", d.AuthHandler.Me)

	users := v1.Group("/users", middleware.RequireAuth)
	users.GET("", d.AuthHandler.ListUsers)
	users.PUT("/:id/permissions", d.AuthHandler.UpdatePermissions)

	items := v1.Group("/items")
	items.GET("", d.CatalogHandler.ListItems)
	items.GET("/count", d.CatalogHandler.CountItems)
	items.GET("/search", d.CatalogHandler.SearchItems)
	items.GET("/:id", d.CatalogHandler.GetItem)

	items.POST("", d.CatalogHandler.CreateItem, middleware.RequireAuth)
	items.POST("/images", d.CatalogHandler.ImageUploadURL, middleware.RequireAuth)
	items.PATCH("/:id", d.CatalogHandler.UpdateItem, middleware.RequireAuth)
	items.DELETE("/:id", d.CatalogHandler.DeleteItem, middleware.RequireAuth)

	// POST takes an item id, DELETE a cart line id.
	cart := v1.Group("/cart", middleware.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/:id", d.CartHandler.AddToCart)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)

	orders := v1.Group("/orders", middleware.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:id", d.OrderHandler.GetOrder)
}
