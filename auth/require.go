package auth

import (
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Require is the capability check handlers call first. With no roles any
// authenticated user passes.
func Require(user *models.User, roles ...models.Role) error {
	if user == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return apperr.Forbidden(string(roles[0]) + " only")
}
