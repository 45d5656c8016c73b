package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_item")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "get_item_error", "id not a uuid", err)
	}

	item, err := h.Svc.GetItem(ctx, id)
	if err != nil {
		return fail(l, "get_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_items")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.ListItems(ctx, page, size)
	if err != nil {
		return fail(l, "list_items_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) CountItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.count_items")

	n, err := h.Svc.CountItems(ctx)
	if err != nil {
		return fail(l, "count_items_error", err)
	}
	return c.JSON(http.StatusOK, transport.CountResponse{Count: n})
}

func (h *CatalogHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_items")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchItems(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_items_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_item")

	var req service.CreateItemInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_item_error", "invalid body", err)
	}

	item, err := h.Svc.CreateItem(ctx, req)
	if err != nil {
		return fail(l, "create_item_error", err)
	}

	l.Info("create_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_item")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "update_item_error", "id not a uuid", err)
	}
	var req service.UpdateItemInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_item_error", "invalid body", err)
	}

	item, err := h.Svc.UpdateItem(ctx, id, req)
	if err != nil {
		return fail(l, "update_item_error", err)
	}

	l.Info("update_item_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_item")

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "delete_item_error", "id not a uuid", err)
	}

	item, err := h.Svc.DeleteItem(ctx, id)
	if err != nil {
		return fail(l, "delete_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) ImageUploadURL(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.image_upload_url")

	var req transport.ImageUploadRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "image_upload_error", "invalid body", err)
	}

	up, err := h.Svc.ImageUploadURL(ctx, req.Filename)
	if err != nil {
		return fail(l, "image_upload_error", err)
	}
	return c.JSON(http.StatusCreated, up)
}
