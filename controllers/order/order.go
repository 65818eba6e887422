package orderControllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

// -------- Dependencies --------

type Checkouter interface {
	Checkout(ctx context.Context, userID uint, idempotencyKey string) (*checkout.Result, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error)
}

type Orders interface {
	ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.Order, error)
	GetForOwner(ctx context.Context, userID, orderID uint) (*models.Order, error)
}

// -------- Request Structs --------

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderSummary is the customer-facing list row.
type OrderSummary struct {
	ID        uint               `json:"id"`
	Reference string             `json:"reference"`
	Total     string             `json:"total"`
	Status    models.OrderStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid order id")
	}
	return uint(id), nil
}

// -------- Handlers --------

// POST /checkout
func CheckoutHandler(engine Checkouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		res, err := engine.Checkout(c.Request.Context(), user.ID, c.GetHeader("Idempotency-Key"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if res.Replayed {
			c.Header("Idempotent-Replayed", "true")
		}
		c.JSON(http.StatusOK, gin.H{
			"order_id":  res.Order.ID,
			"reference": res.Order.Reference,
			"total":     res.Total().StringFixed(2),
		})
	}
}

// GET /orders/my
func GetMyOrdersHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		list, err := orders.ListByOwner(c.Request.Context(), user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		out := make([]OrderSummary, 0, len(list))
		for _, o := range list {
			out = append(out, OrderSummary{
				ID:        o.ID,
				Reference: o.Reference,
				Total:     o.TotalPrice.StringFixed(2),
				Status:    o.Status,
				CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /orders/:id, only the owner's orders resolve.
func GetMyOrderHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleCustomer)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		order, err := orders.GetForOwner(c.Request.Context(), user.ID, id)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders?status=
func GetAllOrdersHandler(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		var status models.OrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			s, err := models.ParseOrderStatus(raw)
			if err != nil {
				apperr.Respond(c, apperr.Validation("invalid order status"))
				return
			}
			status = s
		}
		list, err := orders.ListAll(c.Request.Context(), status)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// PUT /admin/orders/:id
func UpdateOrderStatusHandler(engine Checkouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation(err.Error()))
			return
		}
		order, err := engine.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
	}
}
