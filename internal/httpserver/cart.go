package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	items, err := h.Svc.GetCart(ctx)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

// AddToCart takes the item id from the path.
func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	itemID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "add_to_cart_error", "id not a uuid", err)
	}

	line, err := h.Svc.AddToCart(ctx, itemID)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, line)
}

// RemoveFromCart takes the cart line id from the path.
func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "remove_from_cart_error", "id not a uuid", err)
	}

	line, err := h.Svc.RemoveFromCart(ctx, id)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, line)
}
