package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

func ptr[T any](v T) *T { return &v }

func TestCatalogService_CreateItem(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := env.createUser(t, "seller@example.com", "pw")

	_, err := env.Catalog.CreateItem(context.Background(), CreateItemInput{Title: "Hat", Price: 100})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = env.Catalog.CreateItem(as(u), CreateItemInput{Title: "  ", Price: 100})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.CreateItem(as(u), CreateItemInput{Title: "Hat", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	item, err := env.Catalog.CreateItem(as(u), CreateItemInput{Title: "Hat", Description: "wool", Price: 2500})
	require.NoError(t, err)
	assert.Equal(t, u.ID, item.UserID)
	assert.Contains(t, env.Index.indexed, item.ID)
	assert.Equal(t, []string{"item_created"}, env.Events.types())
}

func TestCatalogService_UpdateItem_OwnerOrPermission(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "pw")
	stranger := env.createUser(t, "stranger@example.com", "pw")
	editor := env.createUser(t, "editor@example.com", "pw", models.PermissionItemUpdate)
	it := env.createItem(t, owner, "Lamp", 4000)

	_, err := env.Catalog.UpdateItem(as(stranger), it.ID, UpdateItemInput{Title: ptr("Stolen")})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := env.Catalog.UpdateItem(as(owner), it.ID, UpdateItemInput{Title: ptr("Desk Lamp"), Price: ptr(int64(4500))})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Title)
	assert.EqualValues(t, 4500, updated.Price)
	assert.Equal(t, it.Description, updated.Description)

	updated, err = env.Catalog.UpdateItem(as(editor), it.ID, UpdateItemInput{Description: ptr("bright")})
	require.NoError(t, err)
	assert.Equal(t, "bright", updated.Description)

	_, err = env.Catalog.UpdateItem(as(owner), it.ID, UpdateItemInput{Price: ptr(int64(-5))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.UpdateItem(as(owner), uuid.New(), UpdateItemInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := env.Catalog.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", stored.Title)
	assert.Equal(t, "bright", stored.Description)
}

func TestCatalogService_DeleteItem_OwnerOrPermission(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "pw")
	stranger := env.createUser(t, "stranger@example.com", "pw")
	deleter := env.createUser(t, "deleter@example.com", "pw", models.PermissionItemDelete)
	admin := env.createUser(t, "admin@example.com", "pw", models.PermissionAdmin)
	a := env.createItem(t, owner, "A", 100)
	b := env.createItem(t, owner, "B", 200)
	c := env.createItem(t, owner, "C", 300)

	line, err := env.Cart.AddToCart(as(stranger), a.ID)
	require.NoError(t, err)

	_, err = env.Catalog.DeleteItem(as(stranger), a.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.Catalog.DeleteItem(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	deleted, err := env.Catalog.DeleteItem(as(deleter), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	assert.Contains(t, env.Index.deleted, a.ID)

	_, err = env.Repo.GetCartItem(context.Background(), line.ID)
	assert.Error(t, err, "cart lines of a deleted item are removed")

	_, err = env.Catalog.DeleteItem(as(owner), b.ID)
	require.NoError(t, err)

	_, err = env.Catalog.DeleteItem(as(owner), b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err = env.Catalog.DeleteItem(as(admin), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)
	_, err = env.Catalog.GetItem(context.Background(), c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_ListItems(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := env.createUser(t, "list@example.com", "pw")
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		env.createItem(t, u, title, 100)
	}

	page, err := env.Catalog.ListItems(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
	assert.EqualValues(t, 5, page.Total)
	assert.EqualValues(t, 2, page.Pages)
	assert.Equal(t, 1, page.Page)

	page, err = env.Catalog.ListItems(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)

	page, err = env.Catalog.ListItems(context.Background(), math.MaxInt, 4)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, util.MaxPage, page.Page)

	n, err := env.Catalog.CountItems(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestCatalogService_SearchItems(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := env.createUser(t, "search@example.com", "pw")
	env.createItem(t, u, "Red Shoes", 100)
	env.createItem(t, u, "Blue Hat", 100)

	_, err := env.Catalog.SearchItems(context.Background(), " ", 1, 4)
	assert.ErrorIs(t, err, ErrValidation)

	env.Index.result = []models.Item{{ID: uuid.New(), Title: "From Index"}}
	page, err := env.Catalog.SearchItems(context.Background(), "shoes", 1, 4)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "From Index", page.Items[0].Title)

	env.Index.err = errors.New("es down")
	page, err = env.Catalog.SearchItems(context.Background(), "shoes", 1, 4)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Red Shoes", page.Items[0].Title)

	noIndex := &CatalogService{Items: env.Repo}
	page, err = noIndex.SearchItems(context.Background(), "HAT", 1, 4)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Blue Hat", page.Items[0].Title)
}

func TestCatalogService_ImageUploadURL(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := env.createUser(t, "img@example.com", "pw")

	_, err := env.Catalog.ImageUploadURL(context.Background(), "a.png")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	up, err := env.Catalog.ImageUploadURL(as(u), "a.png")
	require.NoError(t, err)
	assert.Contains(t, up.Key, u.ID.String())

	disabled := &CatalogService{Items: env.Repo}
	_, err = disabled.ImageUploadURL(as(u), "a.png")
	assert.ErrorIs(t, err, ErrUnavailable)
}
