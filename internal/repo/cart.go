package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart inserts a quantity-1 line for (userID, itemID) or bumps the
// existing line by one in the same statement, so concurrent adds for the
// same pair never lose an increment.
func (r *GormRepo) AddToCart(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := models.CartItem{UserID: userID, ItemID: itemID, Quantity: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_items.quantity + ?", 1),
			}),
		}).Create(&insert).Error; err != nil {
			return err
		}

		return tx.Preload("Item").
			Where("user_id = ? AND item_id = ?", userID, itemID).
			First(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCartItems removes the given lines of userID's cart in one statement.
func (r *GormRepo) DeleteCartItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.CartItem{}).Error
}
