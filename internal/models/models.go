package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"      json:"id"`
	Name             string        `gorm:"not null"                  json:"name"`
	Email            string        `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash     string        `gorm:"not null"                  json:"-"`
	Permissions      PermissionSet `gorm:"not null"                  json:"permissions"`
	ResetToken       *string       `gorm:"index"                     json:"-"`
	ResetTokenExpiry *time.Time    `                                 json:"-"`
	Cart             []CartItem    `gorm:"foreignKey:UserID"         json:"cart,omitempty"`
	CreatedAt        time.Time     `                                 json:"created_at"`
	UpdatedAt        time.Time     `                                 json:"updated_at"`
}

type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"   json:"id"`
	Title       string    `gorm:"not null"               json:"title"`
	Description string    `gorm:"not null"               json:"description"`
	Image       string    `                              json:"image,omitempty"`
	LargeImage  string    `                              json:"large_image,omitempty"`
	Price       int64     `gorm:"not null;check:price>=0" json:"price"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt   time.Time `                              json:"created_at"`
	UpdatedAt   time.Time `                              json:"updated_at"`
}

type CartItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"                   json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_item;not null" json:"user_id"`
	ItemID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_item;not null" json:"item_id"`
	Quantity uint      `gorm:"default:1;check:quantity>0"             json:"quantity"`
	Item     *Item     `gorm:"foreignKey:ItemID"                      json:"item,omitempty"`
}

// OrderItem is a value copy of an Item taken at checkout; later edits or
// deletion of the Item do not touch it.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"   json:"order_id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"   json:"user_id"`
	Title       string    `gorm:"not null"                   json:"title"`
	Description string    `gorm:"not null"                   json:"description"`
	Image       string    `                                  json:"image,omitempty"`
	LargeImage  string    `                                  json:"large_image,omitempty"`
	Price       int64     `gorm:"not null"                   json:"price"`
	Quantity    uint      `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type Order struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID         uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
	Total          int64       `gorm:"not null"                 json:"total"`
	Charge         string      `gorm:"not null"                 json:"charge"`
	IdempotencyKey string      `gorm:"uniqueIndex;not null"     json:"-"`
	Items          []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
	CreatedAt      time.Time   `                                json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// All lists every table owned by the store, in migration order.
func All() []any {
	return []any{&User{}, &Item{}, &CartItem{}, &Order{}, &OrderItem{}}
}
