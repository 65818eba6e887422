package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupCatalogRoutes registers category and product endpoints. Reads are
// public; writes authenticate and the handlers require admin.
func SetupCatalogRoutes(r *gin.Engine, d Deps) {
	catalog := d.Store.Catalog

	r.GET("/categories", productcontroller.GetCategories(catalog))
	r.GET("/products", productcontroller.GetProducts(catalog))
	r.GET("/products/:id", productcontroller.GetProduct(catalog))

	writes := r.Group("/")
	writes.Use(middleware.Authenticate(d.Auth, false))
	{
		writes.POST("/categories", productcontroller.CreateCategory(catalog))
		writes.DELETE("/categories/:id", productcontroller.DeleteCategory(catalog))

		writes.POST("/products", productcontroller.CreateProduct(catalog, d.Images))
		writes.PUT("/products/:id", productcontroller.UpdateProduct(catalog, d.Images))
		writes.DELETE("/products/:id", productcontroller.DeleteProduct(catalog))
	}
}
