package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
)

// SetupUserRoutes registers profile and cart endpoints.
func SetupUserRoutes(g *gin.RouterGroup, d Deps) {
	// ──────────────── Profile ────────────────
	g.GET("/me", userControllers.GetMe(d.Store.Users))
	g.PUT("/me", userControllers.UpdateMe(d.Store.Users))

	// ──────────────── Cart ────────────────
	cart := g.Group("/cart")
	{
		cart.GET("", cartControllers.GetCart(d.Store.Carts))
		cart.POST("", cartControllers.AddCartItem(d.Store.Carts))
		cart.PUT("/:id", cartControllers.UpdateCartItem(d.Store.Carts))
		cart.DELETE("/:id", cartControllers.DeleteCartItem(d.Store.Carts))
	}
}
