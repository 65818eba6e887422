package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
)

// SetupOrderRoutes registers checkout and the customer's order views.
func SetupOrderRoutes(g *gin.RouterGroup, d Deps) {
	g.POST("/checkout", orderControllers.CheckoutHandler(d.Engine))

	orders := g.Group("/orders")
	{
		orders.GET("/my", orderControllers.GetMyOrdersHandler(d.Store.Orders))
		orders.GET("/:id", orderControllers.GetMyOrderHandler(d.Store.Orders))
	}
}
