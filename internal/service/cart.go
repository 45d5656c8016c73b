package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Items  ItemRepo
	Cart   CartRepo
	Events EventPublisher
}

func (s *CartService) GetCart(ctx context.Context) ([]models.CartItem, error) {
	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.Cart.GetCart(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: get cart: %w", ErrPersistence, err)
	}
	return items, nil
}

// AddToCart puts one more unit of itemID into the caller's cart.
func (s *CartService) AddToCart(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("%w: item id must be not nil", ErrValidation)
	}

	if _, err := s.Items.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("%w: get item: %w", ErrPersistence, err)
	}

	line, err := s.Cart.AddToCart(ctx, id.UserID, itemID)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: add to cart: %w", ErrPersistence, err)
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, id.UserID.String(), CartEvent{
		Type:       "cart_item_added",
		UserID:     id.UserID,
		ItemID:     itemID,
		CartItemID: line.ID,
		Quantity:   line.Quantity,
	})
	l.Info("item added successfully to cart", "cart_item_id", line.ID, "quantity", line.Quantity)
	return line, nil
}

// RemoveFromCart deletes a whole cart line. Only the line's owner may do so.
func (s *CartService) RemoveFromCart(ctx context.Context, cartItemID uuid.UUID) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.remove")

	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	line, err := s.Cart.GetCartItem(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no cart item found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get cart item: %w", ErrPersistence, err)
	}
	if line.UserID != id.UserID {
		l.Warn("remove_from_cart_denied", "status", 403, "cart_item_id", cartItemID, "user_id", id.UserID)
		return nil, fmt.Errorf("%w: cart item belongs to another user", ErrPermissionDenied)
	}

	if err := s.Cart.DeleteCartItem(ctx, cartItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no cart item found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: delete cart item: %w", ErrPersistence, err)
	}

	publish(ctx, s.Events, mykafka.TopicCartEvents, id.UserID.String(), CartEvent{
		Type:       "cart_item_removed",
		UserID:     id.UserID,
		ItemID:     line.ItemID,
		CartItemID: line.ID,
		Quantity:   line.Quantity,
	})
	return line, nil
}
