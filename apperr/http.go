package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logging"
)

func Status(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindEmptyCart, KindInsufficientStock, KindValidation:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as {"error": {"kind", "message"}} and aborts the chain.
// Internal errors are logged and replaced by a generic message.
func Respond(c *gin.Context, err error) {
	RespondStatus(c, Status(KindOf(err)), err)
}

// RespondStatus is Respond with the HTTP status chosen by the caller, for
// routes whose contract fixes a status other than the kind's default.
func RespondStatus(c *gin.Context, status int, err error) {
	kind := KindOf(err)
	msg := "internal error"
	if kind != KindInternal {
		var e *Error
		if errors.As(err, &e) && e.Message != "" {
			msg = e.Message
		} else {
			msg = string(kind)
		}
	}
	if kind == KindInternal || kind == KindUnavailable {
		logging.Log(logging.Fields{
			Step:    c.FullPath(),
			Status:  string(kind),
			Message: c.Request.Method + " " + c.Request.URL.Path,
			Error:   err.Error(),
		})
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"kind": kind, "message": msg}})
}
