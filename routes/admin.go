package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers all /admin/* endpoints. Every handler checks
// the admin role itself.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	// Browsers cannot set headers on websocket upgrades, so the feed also
	// takes ?access_token=.
	r.GET("/admin/orders/ws",
		middleware.Authenticate(d.Auth, true),
		orderControllers.OrderWebSocketHandler(d.Hub))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.Authenticate(d.Auth, false))
	{
		// ─────────── Users ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.Store.Users))
		adminGroup.DELETE("/users/:id", userControllers.DeleteUser(d.Store.Users))

		// ─────────── Orders ───────────
		adminGroup.GET("/orders", orderControllers.GetAllOrdersHandler(d.Store.Orders))
		adminGroup.PUT("/orders/:id", orderControllers.UpdateOrderStatusHandler(d.Engine))

		// ─────────── Products (Excel) ───────────
		adminGroup.GET("/products/export", productcontroller.ExportProductsToExcel(d.Store.Catalog))
		adminGroup.POST("/products/import", productcontroller.ImportProductsFromExcel(d.Store.Catalog))
	}
}
