package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/checkout"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/junaidrashid-git/storefront-api/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	st     *store.Store
	router *gin.Engine
	svc    *auth.Service
}

func newServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	st := storetest.New(t)
	svc := auth.NewService(st.Users, auth.BcryptHasher{Cost: bcrypt.MinCost}, auth.NewJWTIssuer("test-secret", time.Hour), false)
	hub := orderControllers.NewHub()
	m := metrics.NewServerMetrics("test")
	engine := checkout.NewEngine(checkout.Deps{
		Tx: st.Tx, Carts: st.Carts, Stock: st.Catalog, Orders: st.Orders, Events: st.Outbox,
		Notifier: hub, Observer: m,
	})

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		Store:   st,
		Auth:    svc,
		Engine:  engine,
		Images:  storage.NewLocalImageStore(filepath.Join(t.TempDir(), "products"), "/uploads/products"),
		Hub:     hub,
		Metrics: m,
	})
	return &testServer{t: t, st: st, router: r, svc: svc}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login registers a customer through the API, or promotes the row for admins.
func (s *testServer) login(username string, role models.Role) (string, uint) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/register", "", gin.H{"username": username, "email": username + "@example.com", "password": "secret123"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	if role == models.RoleAdmin {
		require.NoError(s.t, s.st.DB.Model(&models.User{}).Where("username = ?", username).Update("role", role).Error)
	}
	w = s.do(http.MethodPost, "/login", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	u, err := s.st.Users.ByUsername(context.Background(), username)
	require.NoError(s.t, err)
	return out.Token, u.ID
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Kind
}

func TestCheckoutFlow(t *testing.T) {
	s := newServer(t)
	customer, _ := s.login("alice", models.RoleCustomer)
	cat := storetest.Category(t, s.st, "Books")
	a := storetest.Product(t, s.st, cat.ID, "A", "10.00", 5)
	b := storetest.Product(t, s.st, cat.ID, "B", "5.00", 5)

	w := s.do(http.MethodPost, "/cart", customer, gin.H{"product_id": a.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/cart", customer, gin.H{"product_id": b.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/cart", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []models.CartLine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Quantity)

	w = s.do(http.MethodPost, "/checkout", customer, nil, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var placed struct {
		OrderID uint   `json:"order_id"`
		Total   string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	assert.Equal(t, "25.00", placed.Total)

	w = s.do(http.MethodPost, "/checkout", customer, nil, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))

	w = s.do(http.MethodPost, "/checkout", customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_cart", errorKind(t, w))

	w = s.do(http.MethodGet, "/orders/my", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []orderControllers.OrderSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, placed.OrderID, mine[0].ID)
	assert.Equal(t, models.OrderStatusPending, mine[0].Status)

	w = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", placed.OrderID), customer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutInsufficientStockResponse(t *testing.T) {
	s := newServer(t)
	customer, _ := s.login("bob", models.RoleCustomer)
	cat := storetest.Category(t, s.st, "Rare")
	p := storetest.Product(t, s.st, cat.ID, "Rare", "1.00", 1)

	w := s.do(http.MethodPost, "/cart", customer, gin.H{"product_id": p.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/checkout", customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_stock", errorKind(t, w))
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	s := newServer(t)
	alice, _ := s.login("alice", models.RoleCustomer)
	mallory, _ := s.login("mallory", models.RoleCustomer)
	cat := storetest.Category(t, s.st, "X")
	p := storetest.Product(t, s.st, cat.ID, "X", "1.00", 5)

	s.do(http.MethodPost, "/cart", alice, gin.H{"product_id": p.ID})
	w := s.do(http.MethodPost, "/checkout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var placed struct {
		OrderID uint `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))

	w = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", placed.OrderID), mallory, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/orders/my", mallory, nil)
	assert.Equal(t, "[]", w.Body.String())
}

func TestRoleGates(t *testing.T) {
	s := newServer(t)
	customer, _ := s.login("carl", models.RoleCustomer)
	admin, _ := s.login("root", models.RoleAdmin)

	w := s.do(http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", errorKind(t, w))

	w = s.do(http.MethodGet, "/cart", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/categories", customer, gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errorKind(t, w))

	w = s.do(http.MethodGet, "/admin/orders", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, "/admin/users", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/categories", admin, gin.H{"name": "Yes"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/admin/users", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Carts and checkout belong to customers.
	w = s.do(http.MethodPost, "/checkout", admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminOrderStatus(t *testing.T) {
	s := newServer(t)
	customer, _ := s.login("dora", models.RoleCustomer)
	admin, _ := s.login("boss", models.RoleAdmin)
	cat := storetest.Category(t, s.st, "Y")
	p := storetest.Product(t, s.st, cat.ID, "Y", "2.00", 4)

	s.do(http.MethodPost, "/cart", customer, gin.H{"product_id": p.ID, "quantity": 2})
	w := s.do(http.MethodPost, "/checkout", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var placed struct {
		OrderID uint `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	path := fmt.Sprintf("/admin/orders/%d", placed.OrderID)

	w = s.do(http.MethodPut, path, admin, gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", errorKind(t, w))

	w = s.do(http.MethodPut, path, admin, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 4, storetest.Stock(t, s.st, p.ID))

	w = s.do(http.MethodGet, "/admin/orders?status=cancelled", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = s.do(http.MethodPut, "/admin/orders/9999", admin, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterAndLoginErrors(t *testing.T) {
	s := newServer(t)
	s.login("erin", models.RoleCustomer)

	w := s.do(http.MethodPost, "/register", "", gin.H{"username": "erin", "email": "e2@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "conflict", errorKind(t, w))

	w = s.do(http.MethodPost, "/register", "", gin.H{"username": "x", "email": "x@example.com", "password": "secret123", "role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/login", "", gin.H{"username": "erin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", errorKind(t, w))
}

func TestPublicCatalogAndHealth(t *testing.T) {
	s := newServer(t)
	cat := storetest.Category(t, s.st, "Pub")
	p := storetest.Product(t, s.st, cat.ID, "Visible", "3.00", 1)

	w := s.do(http.MethodGet, "/products?search=vis", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"qty":1`)

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d", p.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/products/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/products?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}

func TestMeEndpoints(t *testing.T) {
	s := newServer(t)
	token, _ := s.login("fay", models.RoleCustomer)

	w := s.do(http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPut, "/me", token, gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPut, "/me", token, gin.H{"email": "fay@new.example"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fay@new.example")
}
