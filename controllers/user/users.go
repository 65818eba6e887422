package userControllers

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

type Users interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateEmail(ctx context.Context, id uint, email string) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

type UpdateUserInput struct {
	Email string `json:"email" binding:"required"`
}

// GET /me
func GetMe(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := middleware.RequireRole(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		user, err := users.ByID(c.Request.Context(), me.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /me
func UpdateMe(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := middleware.RequireRole(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.Validation("email is required"))
			return
		}
		email := strings.TrimSpace(input.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			apperr.Respond(c, apperr.Validation("invalid email"))
			return
		}
		user, err := users.UpdateEmail(c.Request.Context(), me.ID, email)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		list, err := users.List(c.Request.Context())
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// DELETE /admin/users/:id. Admins cannot delete themselves.
func DeleteUser(users Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := middleware.RequireRole(c, models.RoleAdmin)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apperr.Respond(c, apperr.Validation("Invalid user ID"))
			return
		}
		if uint(id) == admin.ID {
			apperr.Respond(c, apperr.Validation("cannot delete your own account"))
			return
		}
		if err := users.Delete(c.Request.Context(), uint(id)); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
