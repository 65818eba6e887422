package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
)

const userKey = "user"

// Authenticate resolves the bearer token into the current user and stores it
// on the context. It only authenticates; handlers check roles themselves.
// With allowQuery the token may also come from ?access_token= (websockets).
func Authenticate(svc *auth.Service, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = c.Query("access_token")
		}
		user, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// CurrentUser returns the user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireRole is auth.Require applied to the current user.
func RequireRole(c *gin.Context, roles ...models.Role) (*models.User, error) {
	user := CurrentUser(c)
	if err := auth.Require(user, roles...); err != nil {
		return nil, err
	}
	return user, nil
}
