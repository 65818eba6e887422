package store

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

type UserStore struct {
	base
}

// Create inserts u; a taken username is a Conflict.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	db, cancel := s.with(ctx)
	defer cancel()
	if err := db.Create(u).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, err, "username already exists")
		}
		return apperr.FromDB(err, "user")
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return &u, nil
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var users []models.User
	if err := db.Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return users, nil
}

func (s *UserStore) UpdateEmail(ctx context.Context, id uint, email string) (*models.User, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	res := db.Model(&models.User{}).Where("id = ?", id).Update("email", email)
	if res.Error != nil {
		return nil, apperr.FromDB(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user not found")
	}
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return &u, nil
}

// Delete removes the user and their cart. Orders stay for the audit trail.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	db, cancel := s.with(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("user not found")
		}
		return nil
	})
	return apperr.FromDB(err, "user")
}
