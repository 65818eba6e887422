package store

import (
	"context"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartStore struct {
	base
}

// Add puts qty of a product in the user's cart, summing with an existing line.
func (s *CartStore) Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	db, cancel := s.with(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&models.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	if n == 0 {
		return nil, apperr.NotFound("product not found")
	}

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + ?", qty),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}

	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}
	return &item, nil
}

// Update sets the quantity of a line the user owns.
func (s *CartStore) Update(ctx context.Context, userID, itemID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	db, cancel := s.with(ctx)
	defer cancel()

	res := db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", qty)
	if res.Error != nil {
		return nil, apperr.FromDB(res.Error, "cart item")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("cart item not found")
	}
	var item models.CartItem
	if err := db.First(&item, itemID).Error; err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}
	return &item, nil
}

func (s *CartStore) Remove(ctx context.Context, userID, itemID uint) error {
	db, cancel := s.with(ctx)
	defer cancel()
	res := db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.FromDB(res.Error, "cart item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

// List returns the user's lines with the current product title and price.
func (s *CartStore) List(ctx context.Context, userID uint) ([]models.CartLine, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	lines := []models.CartLine{}
	err := db.Table("cart_items").
		Select("cart_items.id, cart_items.product_id, products.title, products.price, cart_items.quantity").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id").
		Scan(&lines).Error
	if err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}
	return lines, nil
}

func (s *CartStore) Clear(ctx context.Context, userID uint) error {
	db, cancel := s.with(ctx)
	defer cancel()
	if err := db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.FromDB(err, "cart item")
	}
	return nil
}

// ItemsTx snapshots the user's cart inside uow. On postgres the rows are
// locked until uow ends so concurrent edits wait for checkout.
func (s *CartStore) ItemsTx(uow *UnitOfWork, userID uint) ([]models.CartItem, error) {
	tx := uow.DB()
	if isPostgres(tx) {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var items []models.CartItem
	if err := tx.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}
	return items, nil
}

// ClearTx deletes the given lines of the user's cart inside uow. Lines added
// after the snapshot are kept.
func (s *CartStore) ClearTx(uow *UnitOfWork, userID uint, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	res := uow.DB().Where("user_id = ? AND id IN ?", userID, itemIDs).Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.FromDB(res.Error, "cart item")
	}
	if res.RowsAffected != int64(len(itemIDs)) {
		return apperr.New(apperr.KindConflict, "cart changed during checkout")
	}
	return nil
}
