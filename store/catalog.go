package store

import (
	"context"
	"errors"
	"strings"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogStore struct {
	base
}

// -------- Categories --------

func (s *CatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var categories []models.Category
	if err := db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, apperr.FromDB(err, "category")
	}
	return categories, nil
}

func (s *CatalogStore) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	db, cancel := s.with(ctx)
	defer cancel()
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		return nil, apperr.FromDB(err, "category")
	}
	return &category, nil
}

// DeleteCategory refuses to delete a category that live products still reference.
func (s *CatalogStore) DeleteCategory(ctx context.Context, id uint) error {
	db, cancel := s.with(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.KindConflict, "category %q still has %d product(s)", category.Name, n)
		}
		return tx.Delete(&category).Error
	})
	return apperr.FromDB(err, "category")
}

func (s *CatalogStore) categoryExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.FromDB(err, "category")
	}
	if n == 0 {
		return apperr.Validation("category does not exist")
	}
	return nil
}

// -------- Products --------

type ProductFilter struct {
	Search     string
	CategoryID uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

func (s *CatalogStore) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()

	query := db.Model(&models.Product{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.CategoryID != 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	var products []models.Product
	if err := query.Order("id asc").Find(&products).Error; err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return products, nil
}

func (s *CatalogStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return &p, nil
}

// ValidateProduct checks the fields an admin may set.
func ValidateProduct(p *models.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	switch {
	case p.Title == "":
		return apperr.Validation("title is required")
	case p.Price.IsNegative():
		return apperr.Validation("price must be >= 0")
	case p.StockQuantity < 0:
		return apperr.Validation("qty must be >= 0")
	case p.CategoryID == 0:
		return apperr.Validation("category_id is required")
	}
	return nil
}

func (s *CatalogStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	db, cancel := s.with(ctx)
	defer cancel()
	if err := s.categoryExists(db, p.CategoryID); err != nil {
		return err
	}
	if err := db.Create(p).Error; err != nil {
		return apperr.FromDB(err, "product")
	}
	return nil
}

// ProductPatch carries optional updates; nil fields are left alone.
type ProductPatch struct {
	Title         *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CategoryID    *uint
	ImageURL      *string
}

// UpdateProduct applies patch and returns the updated product together with
// the image reference it replaced, if any. Only patched columns are written,
// so a concurrent checkout's stock decrement is never overwritten by an edit
// that leaves qty alone.
func (s *CatalogStore) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, string, error) {
	db, cancel := s.with(ctx)
	defer cancel()

	var product models.Product
	var oldImage string
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, &product, id); err != nil {
			return err
		}
		var cols []string
		if patch.Title != nil {
			product.Title = *patch.Title
			cols = append(cols, "title")
		}
		if patch.Description != nil {
			product.Description = *patch.Description
			cols = append(cols, "description")
		}
		if patch.Price != nil {
			product.Price = *patch.Price
			cols = append(cols, "price")
		}
		if patch.StockQuantity != nil {
			product.StockQuantity = *patch.StockQuantity
			cols = append(cols, "stock_quantity")
		}
		if patch.CategoryID != nil {
			product.CategoryID = *patch.CategoryID
			cols = append(cols, "category_id")
		}
		if patch.ImageURL != nil {
			oldImage = product.ImageURL
			product.ImageURL = *patch.ImageURL
			cols = append(cols, "image_url")
		}
		if err := ValidateProduct(&product); err != nil {
			return err
		}
		if len(cols) == 0 {
			return nil
		}
		if patch.CategoryID != nil {
			if err := s.categoryExists(tx, product.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Model(&product).Select(cols).Updates(&product).Error; err != nil {
			return err
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		return nil, "", apperr.FromDB(err, "product")
	}
	return &product, oldImage, nil
}

// lockProduct loads the live product row, holding a row lock on postgres
// until the surrounding transaction ends.
func lockProduct(tx *gorm.DB, p *models.Product, id uint) error {
	if isPostgres(tx) {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.First(p, id).Error
}

// DeleteProduct soft-deletes, so order history keeps resolving product ids.
// Cart lines pointing at it are removed.
func (s *CatalogStore) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var product models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return &product, nil
}

// importColumns are the fields a spreadsheet row sets on an existing product.
var importColumns = []string{"title", "description", "price", "stock_quantity", "image_url", "category_id"}

// ImportProduct upserts p: an existing id is updated, anything else inserted.
// It reports whether a new row was created. The qty column is an absolute
// value set by the admin; the row lock orders it against running checkouts.
func (s *CatalogStore) ImportProduct(ctx context.Context, p *models.Product) (bool, error) {
	if err := ValidateProduct(p); err != nil {
		return false, err
	}
	db, cancel := s.with(ctx)
	defer cancel()

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.categoryExists(tx, p.CategoryID); err != nil {
			return err
		}
		if p.ID != 0 {
			var existing models.Product
			err := lockProduct(tx, &existing, p.ID)
			if err == nil {
				p.CreatedAt = existing.CreatedAt
				return tx.Model(p).Select(importColumns).Updates(p).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			p.ID = 0
		}
		created = true
		return tx.Create(p).Error
	})
	if err != nil {
		return false, apperr.FromDB(err, "product")
	}
	return created, nil
}

// -------- Stock --------

// Reservation is the outcome of a successful ReserveStock.
type Reservation struct {
	ProductID uint
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// ReserveStock decrements stock by qty inside uow if, and only if, enough is
// available, and returns the price read in that same transaction. The check
// and the decrement are one conditional UPDATE; the row stays locked until
// uow ends, so the price cannot change under the caller.
func (s *CatalogStore) ReserveStock(uow *UnitOfWork, productID uint, qty int) (Reservation, error) {
	if qty < 1 {
		return Reservation{}, apperr.Validation("quantity must be at least 1")
	}
	tx := uow.DB()
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return Reservation{}, apperr.FromDB(res.Error, "product")
	}

	var p models.Product
	if err := tx.Select("id", "title", "price", "stock_quantity").First(&p, productID).Error; err != nil {
		return Reservation{}, apperr.FromDB(err, "product")
	}
	if res.RowsAffected == 0 {
		return Reservation{}, apperr.New(apperr.KindInsufficientStock,
			"insufficient stock for product %d %q: requested %d, available %d",
			p.ID, p.Title, qty, p.StockQuantity)
	}
	return Reservation{ProductID: p.ID, Title: p.Title, UnitPrice: p.Price, Quantity: qty}, nil
}

// ReleaseStock puts qty back, including onto soft-deleted products.
func (s *CatalogStore) ReleaseStock(uow *UnitOfWork, productID uint, qty int) error {
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	res := uow.DB().Unscoped().Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return apperr.FromDB(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}
