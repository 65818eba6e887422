// Package storetest opens an isolated in-memory sqlite store for tests.
package storetest

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	seq    atomic.Int64
	unsafe = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// New returns a migrated store backed by a private in-memory database.
func New(t testing.TB) *store.Store {
	t.Helper()
	name := fmt.Sprintf("%s_%d", unsafe.ReplaceAllString(t.Name(), "_"), seq.Add(1))
	db, err := store.Open("sqlite://file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(db, store.Options{Timeout: 5 * time.Second, Topic: "storefront.orders"})
}

func User(t testing.TB, st *store.Store, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, st.DB.Create(u).Error)
	return u
}

func Category(t testing.TB, st *store.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, st.DB.Create(c).Error)
	return c
}

func Product(t testing.TB, st *store.Store, categoryID uint, title, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:         title,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
	}
	require.NoError(t, st.DB.Create(p).Error)
	return p
}

// Stock reads the current stock straight from the table, including soft-deleted rows.
func Stock(t testing.TB, st *store.Store, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, st.DB.Unscoped().Select("stock_quantity").First(&p, productID).Error)
	return p.StockQuantity
}

func Count(t testing.TB, st *store.Store, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.DB.Model(model).Count(&n).Error)
	return n
}
