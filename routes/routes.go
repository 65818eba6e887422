package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/checkout"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/store"
)

// Deps is everything the handlers are built from.
type Deps struct {
	Store   *store.Store
	Auth    *auth.Service
	Engine  *checkout.Engine
	Images  storage.ImageStore
	Hub     *orderControllers.Hub
	Metrics *metrics.ServerMetrics // optional
}

// SetupRoutes is the single entry point that wires every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/health", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth and catalog reads
	SetupAuthRoutes(r, d)
	SetupCatalogRoutes(r, d)

	// Token-protected
	authed := r.Group("/")
	authed.Use(middleware.Authenticate(d.Auth, false))
	SetupUserRoutes(authed, d)
	SetupOrderRoutes(authed, d)
	SetupAdminRoutes(r, d)
}
