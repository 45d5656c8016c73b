package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserWithCart(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	FindUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	CompleteReset(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error)
	UpdatePermissions(ctx context.Context, id uuid.UUID, perms models.PermissionSet) (*models.User, error)
}

type ItemRepo interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context, offset, limit int) ([]models.Item, error)
	CountItems(ctx context.Context) (int64, error)
	SaveItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	SearchItems(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error)
}

type CartRepo interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	AddToCart(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, id uuid.UUID) error
	DeleteCartItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type SessionIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ItemIndex interface {
	IndexItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Item, error)
}

type ImageStore interface {
	PresignUpload(ctx context.Context, userID uuid.UUID, filename string) (*storage.Upload, error)
}

type Gateway = payment.Gateway
