package productcontroller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
)

// Catalog is the part of the catalog store the product handlers use.
type Catalog interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uint, patch store.ProductPatch) (*models.Product, string, error)
	DeleteProduct(ctx context.Context, id uint) (*models.Product, error)
	ImportProduct(ctx context.Context, p *models.Product) (bool, error)
}

type CreateCategoryInput struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func parseID(raw, what string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + what + " ID")
	}
	return uint(id), nil
}

// GET /categories
func GetCategories(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// POST /categories
func CreateCategory(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		var input CreateCategoryInput
		if err := c.ShouldBind(&input); err != nil {
			apperr.Respond(c, apperr.Validation("name is required"))
			return
		}
		category, err := catalog.CreateCategory(c.Request.Context(), input.Name)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": category.ID, "name": category.Name})
	}
}

// DELETE /categories/:id
func DeleteCategory(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := parseID(c.Param("id"), "category")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := catalog.DeleteCategory(c.Request.Context(), id); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
