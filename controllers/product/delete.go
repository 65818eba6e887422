package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

// DELETE /products/:id
func DeleteProduct(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := parseID(c.Param("id"), "product")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if _, err := catalog.DeleteProduct(c.Request.Context(), id); err != nil {
			apperr.Respond(c, err)
			return
		}
		// The image stays on disk: past orders may still show it.
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
