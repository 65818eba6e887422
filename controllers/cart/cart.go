package cartControllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Carts is the slice of the cart store the handlers need.
type Carts interface {
	Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error)
	Update(ctx context.Context, userID, itemID uint, qty int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID uint) error
	List(ctx context.Context, userID uint) ([]models.CartLine, error)
}

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GET /cart
func GetCart(carts Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		lines, err := carts.List(c.Request.Context(), user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// POST /cart
func AddCartItem(carts Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid input: "+err.Error()))
			return
		}
		qty := 1
		if input.Quantity != nil {
			qty = *input.Quantity
		}
		item, err := carts.Add(c.Request.Context(), user.ID, input.ProductID, qty)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Added to cart", "item": item})
	}
}

// PUT /cart/:id
func UpdateCartItem(carts Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		itemID, err := ParseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid input: "+err.Error()))
			return
		}
		item, err := carts.Update(c.Request.Context(), user.ID, itemID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /cart/:id
func DeleteCartItem(carts Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		itemID, err := ParseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := carts.Remove(c.Request.Context(), user.ID, itemID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// ParseID reads a positive numeric path parameter.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return uint(id), nil
}
