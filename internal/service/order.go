package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const DefaultCurrency = "USD"

type OrderService struct {
	Cart     CartRepo
	Orders   OrderRepo
	Gateway  Gateway
	Currency string
	Events   EventPublisher
}

// CreateOrder turns the caller's cart into a paid order.
//
// The total is computed here from stored prices; the client only supplies the
// payment token. The charge carries an idempotency key derived from the cart
// contents and the token, so a retry after a failed save reuses the same
// charge while a retry with another card after a decline gets a fresh key.
// The cart is cleared only after the order is stored.
func (s *OrderService) CreateOrder(ctx context.Context, paymentToken string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	id, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	paymentToken = strings.TrimSpace(paymentToken)
	if paymentToken == "" {
		return nil, fmt.Errorf("%w: payment token is required", ErrValidation)
	}

	lines, err := s.Cart.GetCart(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %w", ErrPersistence, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	var amount int64
	lineIDs := make([]uuid.UUID, 0, len(lines))
	snapshot := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Item == nil {
			return nil, fmt.Errorf("%w: cart item %s references a missing item", ErrValidation, line.ID)
		}
		amount += line.Item.Price * int64(line.Quantity)
		lineIDs = append(lineIDs, line.ID)
		snapshot = append(snapshot, models.OrderItem{
			UserID:      id.UserID,
			Title:       line.Item.Title,
			Description: line.Item.Description,
			Image:       line.Item.Image,
			LargeImage:  line.Item.LargeImage,
			Price:       line.Item.Price,
			Quantity:    line.Quantity,
		})
	}

	if amount <= 0 {
		return nil, fmt.Errorf("%w: order total must be positive, got %d", ErrValidation, amount)
	}

	key := checkoutKey(id.UserID, paymentToken, lines)

	existing, err := s.Orders.GetOrderByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		l.Info("order_already_placed", "order_id", existing.ID)
		if err := s.Cart.DeleteCartItems(ctx, id.UserID, lineIDs); err != nil {
			return nil, fmt.Errorf("%w: clear cart: %w", ErrPersistence, err)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: lookup order: %w", ErrPersistence, err)
	}

	currency := s.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	charge, err := s.Gateway.Charge(ctx, payment.ChargeRequest{
		Amount:         amount,
		Currency:       currency,
		Source:         paymentToken,
		Description:    fmt.Sprintf("Order of %d item(s)", len(lines)),
		IdempotencyKey: key,
	})
	if err != nil {
		l.Warn("charge_failed", "status", 402, "amount", amount, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	order := &models.Order{
		UserID:         id.UserID,
		Total:          charge.Amount,
		Charge:         charge.ID,
		IdempotencyKey: key,
		Items:          snapshot,
	}
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		l.Error("order_persist_failed", "status", 500, "charge_id", charge.ID, "error", err)
		return nil, fmt.Errorf("%w: save order for charge %s: %w", ErrPersistence, charge.ID, err)
	}

	if err := s.Cart.DeleteCartItems(ctx, id.UserID, lineIDs); err != nil {
		l.Error("clear_cart_failed", "status", 500, "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: clear cart: %w", ErrPersistence, err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID.String(), OrderEvent{
		Type:    "order_created",
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Charge:  order.Charge,
		Items:   len(order.Items),
	})
	l.Info("order_created", "order_id", order.ID, "total", order.Total)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	caller, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: get order: %w", ErrPersistence, err)
	}
	if err := authz.RequireOwnerOrPermission(order.UserID, caller, models.PermissionAdmin); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	caller, err := authz.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListOrders(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrPersistence, err)
	}
	return orders, nil
}

// checkoutKey is stable for an unchanged cart paid with the same token and
// changes whenever the token, a line, a quantity or a price does.
func checkoutKey(userID uuid.UUID, paymentToken string, lines []models.CartItem) string {
	sorted := make([]models.CartItem, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	h := sha256.New()
	fmt.Fprintf(h, "checkout|%s|%s", userID, paymentToken)
	for _, line := range sorted {
		var price int64
		if line.Item != nil {
			price = line.Item.Price
		}
		fmt.Fprintf(h, "|%s:%s:%d:%d", line.ID, line.ItemID, line.Quantity, price)
	}
	return hex.EncodeToString(h.Sum(nil))
}
