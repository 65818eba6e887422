package store

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderStore struct {
	base
}

// CreateTx inserts order and its items inside uow.
func (s *OrderStore) CreateTx(uow *UnitOfWork, order *models.Order) error {
	if err := uow.DB().Create(order).Error; err != nil {
		return apperr.FromDB(err, "order")
	}
	return nil
}

// FindByIdempotencyKey returns the user's order placed with key, or nil.
func (s *OrderStore) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Order, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var order models.Order
	err := db.Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &order, nil
}

// ListAll returns every order, newest first; a non-empty status filters.
func (s *OrderStore) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	query := db.Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	orders := []models.Order{}
	if err := query.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return orders, nil
}

// ListByOwner returns only the orders belonging to userID.
func (s *OrderStore) ListByOwner(ctx context.Context, userID uint) ([]models.Order, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	orders := []models.Order{}
	if err := db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return orders, nil
}

// GetForOwner hides other users' orders behind NotFound.
func (s *OrderStore) GetForOwner(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var order models.Order
	if err := db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &order, nil
}

func (s *OrderStore) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &order, nil
}

// LockTx loads an order with its items inside uow, row-locked on postgres.
func (s *OrderStore) LockTx(uow *UnitOfWork, orderID uint) (*models.Order, error) {
	tx := uow.DB()
	if isPostgres(tx) {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	if err := uow.DB().Where("order_id = ?", orderID).Order("id").Find(&order.Items).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &order, nil
}

func (s *OrderStore) SetStatusTx(uow *UnitOfWork, order *models.Order, status models.OrderStatus) error {
	if err := uow.DB().Model(order).Update("status", status).Error; err != nil {
		return apperr.FromDB(err, "order")
	}
	return nil
}
