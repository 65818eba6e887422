package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("checkout: %w", New(KindInsufficientStock, "only %d left", 1))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil, "x"))
	assert.Equal(t, KindNotFound, KindOf(FromDB(gorm.ErrRecordNotFound, "product")))
	assert.Equal(t, "product not found", FromDB(gorm.ErrRecordNotFound, "product").(*Error).Message)
	assert.Equal(t, KindConflict, KindOf(FromDB(gorm.ErrDuplicatedKey, "category")))
	assert.Equal(t, KindConflict, KindOf(FromDB(&pgconn.PgError{Code: "23505"}, "user")))
	assert.Equal(t, KindConflict, KindOf(FromDB(errors.New("UNIQUE constraint failed: users.username"), "user")))
	assert.Equal(t, KindUnavailable, KindOf(FromDB(context.DeadlineExceeded, "order")))
	assert.Equal(t, KindUnavailable, KindOf(FromDB(&pgconn.PgError{Code: "40001"}, "order")))
	assert.Equal(t, KindUnavailable, KindOf(FromDB(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"}), "order")))
	assert.Equal(t, "concurrent update, retry the request", FromDB(&pgconn.PgError{Code: "40001"}, "order").(*Error).Message)
	assert.Equal(t, KindInternal, KindOf(FromDB(errors.New("syntax error"), "order")))

	classified := Validation("bad")
	assert.Same(t, classified, FromDB(classified, "x"))
}

func TestRespondStatusOverridesDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/register", nil)
	RespondStatus(c, http.StatusBadRequest, Conflict("username already exists"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	assert.Contains(t, w.Body.String(), `"kind":"conflict"`)
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err     error
		status  int
		kind    Kind
		message string
	}{
		{Unauthenticated("no token"), http.StatusUnauthorized, KindUnauthenticated, "no token"},
		{Forbidden("admin only"), http.StatusForbidden, KindForbidden, "admin only"},
		{New(KindEmptyCart, "cart is empty"), http.StatusBadRequest, KindEmptyCart, "cart is empty"},
		{New(KindInsufficientStock, "short"), http.StatusBadRequest, KindInsufficientStock, "short"},
		{Conflict("taken"), http.StatusConflict, KindConflict, "taken"},
		{Wrap(KindInternal, errors.New("pq: secret detail"), "storage failure"), http.StatusInternalServerError, KindInternal, "internal error"},
		{errors.New("raw"), http.StatusInternalServerError, KindInternal, "internal error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
		Respond(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body struct {
			Error struct {
				Kind    Kind   `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.kind, body.Error.Kind)
		assert.Equal(t, tc.message, body.Error.Message)
		assert.NotContains(t, w.Body.String(), "secret detail")
	}
}
