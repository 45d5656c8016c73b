package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Items  ItemRepo
	Index  ItemIndex
	Images ImageStore
	Events EventPublisher
}

type CreateItemInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	LargeImage  string `json:"large_image"`
	Price       int64  `json:"price"`
}

type UpdateItemInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	LargeImage  *string `json:"large_image"`
	Price       *int64  `json:"price"`
}

type ItemsPage struct {
	Items []models.Item `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Pages int64         `json:"pages"`
}

func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_item")

	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	item := &models.Item{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		LargeImage:  in.LargeImage,
		Price:       in.Price,
		UserID:      id.UserID,
	}
	if err := s.Items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: create item: %w", ErrPersistence, err)
	}

	s.reindex(ctx, item)
	publish(ctx, s.Events, mykafka.TopicItemEvents, item.ID.String(), ItemEvent{
		Type:   "item_created",
		ItemID: item.ID,
		UserID: item.UserID,
		Title:  item.Title,
		Price:  item.Price,
	})
	l.Info("item_created", "item_id", item.ID)
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.Items.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get item: %w", ErrPersistence, err)
	}
	return item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, itemID uuid.UUID, in UpdateItemInput) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_item")

	caller, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrPermission(item.UserID, caller, models.PermissionAdmin, models.PermissionItemUpdate); err != nil {
		l.Warn("update_item_denied", "status", 403, "item_id", itemID, "user_id", caller.UserID)
		return nil, err
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		item.Title = t
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Image != nil {
		item.Image = *in.Image
	}
	if in.LargeImage != nil {
		item.LargeImage = *in.LargeImage
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		item.Price = *in.Price
	}

	if err := s.Items.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: save item: %w", ErrPersistence, err)
	}

	s.reindex(ctx, item)
	publish(ctx, s.Events, mykafka.TopicItemEvents, item.ID.String(), ItemEvent{
		Type:   "item_updated",
		ItemID: item.ID,
		UserID: item.UserID,
		Title:  item.Title,
		Price:  item.Price,
	})
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_item")

	caller, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwnerOrPermission(item.UserID, caller, models.PermissionAdmin, models.PermissionItemDelete); err != nil {
		l.Warn("delete_item_denied", "status", 403, "item_id", itemID, "user_id", caller.UserID)
		return nil, err
	}

	if err := s.Items.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("%w: delete item: %w", ErrPersistence, err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteItem(ctx, itemID); err != nil {
			l.Warn("unindex_item_failed", "item_id", itemID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicItemEvents, itemID.String(), ItemEvent{
		Type:   "item_deleted",
		ItemID: itemID,
		UserID: item.UserID,
	})
	l.Info("item_deleted", "item_id", itemID)
	return item, nil
}

func (s *CatalogService) ListItems(ctx context.Context, page, size int) (*ItemsPage, error) {
	offset, limit := util.Calculate(page, size)

	total, err := s.Items.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count items: %w", ErrPersistence, err)
	}
	items, err := s.Items.ListItems(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", ErrPersistence, err)
	}
	return newItemsPage(items, total, offset, limit), nil
}

func (s *CatalogService) CountItems(ctx context.Context) (int64, error) {
	total, err := s.Items.CountItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count items: %w", ErrPersistence, err)
	}
	return total, nil
}

// SearchItems queries the search index and falls back to a store scan when
// no index is configured or the index fails.
func (s *CatalogService) SearchItems(ctx context.Context, q string, page, size int) (*ItemsPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return newItemsPage(items, total, offset, limit), nil
		}
		l.Warn("index_search_failed", "error", err)
	}

	total, items, err := s.Items.SearchItems(ctx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search items: %w", ErrPersistence, err)
	}
	return newItemsPage(items, total, offset, limit), nil
}

func (s *CatalogService) ImageUploadURL(ctx context.Context, filename string) (*storage.Upload, error) {
	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if s.Images == nil {
		return nil, fmt.Errorf("%w: image uploads are not configured", ErrUnavailable)
	}
	up, err := s.Images.PresignUpload(ctx, id.UserID, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: presign upload: %w", ErrUnavailable, err)
	}
	return up, nil
}

func (s *CatalogService) reindex(ctx context.Context, item *models.Item) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexItem(ctx, item); err != nil {
		logging.FromContext(ctx).Warn("index_item_failed", "item_id", item.ID, "error", err)
	}
}

func newItemsPage(items []models.Item, total int64, offset, limit int) *ItemsPage {
	if items == nil {
		items = []models.Item{}
	}
	return &ItemsPage{
		Items: items,
		Total: total,
		Page:  offset/limit + 1,
		Size:  limit,
		Pages: util.Pages(total, limit),
	}
}
