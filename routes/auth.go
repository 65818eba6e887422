package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
)

// SetupAuthRoutes registers /register and /login.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	r.POST("/register", auth.RegisterHandler(d.Auth))
	r.POST("/login", auth.LoginHandler(d.Auth))
}
