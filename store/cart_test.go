package store_test

import (
	"context"
	"testing"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddSumsQuantities(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	cat := storetest.Category(t, st, "Cups")
	p := storetest.Product(t, st, cat.ID, "Mug", "6.00", 10)
	u := storetest.User(t, st, "ivy", models.RoleCustomer)

	first, err := st.Carts.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	second, err := st.Carts.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.EqualValues(t, 1, storetest.Count(t, st, &models.CartItem{}))

	lines, err := st.Carts.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Mug", lines[0].Title)
	assert.True(t, decimal.RequireFromString("6").Equal(lines[0].Price))
	assert.Equal(t, 5, lines[0].Quantity)

	_, err = st.Carts.Add(ctx, u.ID, p.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = st.Carts.Add(ctx, u.ID, p.ID+7, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCartOwnership(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	cat := storetest.Category(t, st, "Hats")
	p := storetest.Product(t, st, cat.ID, "Cap", "9.00", 10)
	owner := storetest.User(t, st, "jack", models.RoleCustomer)
	other := storetest.User(t, st, "jill", models.RoleCustomer)

	item, err := st.Carts.Add(ctx, owner.ID, p.ID, 1)
	require.NoError(t, err)

	_, err = st.Carts.Update(ctx, other.ID, item.ID, 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, st.Carts.Remove(ctx, other.ID, item.ID), apperr.ErrNotFound)

	updated, err := st.Carts.Update(ctx, owner.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	require.NoError(t, st.Carts.Remove(ctx, owner.ID, item.ID))
	assert.ErrorIs(t, st.Carts.Remove(ctx, owner.ID, item.ID), apperr.ErrNotFound)
}

func TestCartClear(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	cat := storetest.Category(t, st, "Socks")
	a := storetest.Product(t, st, cat.ID, "Wool", "4.00", 10)
	b := storetest.Product(t, st, cat.ID, "Cotton", "3.00", 10)
	u := storetest.User(t, st, "kim", models.RoleCustomer)
	other := storetest.User(t, st, "lee", models.RoleCustomer)
	for _, id := range []uint{a.ID, b.ID} {
		_, err := st.Carts.Add(ctx, u.ID, id, 1)
		require.NoError(t, err)
	}
	_, err := st.Carts.Add(ctx, other.ID, a.ID, 1)
	require.NoError(t, err)

	require.NoError(t, st.Carts.Clear(ctx, u.ID))
	lines, err := st.Carts.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.EqualValues(t, 1, storetest.Count(t, st, &models.CartItem{}))
}

func TestClearTxDetectsConcurrentChange(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	cat := storetest.Category(t, st, "Bags")
	p := storetest.Product(t, st, cat.ID, "Tote", "15.00", 10)
	u := storetest.User(t, st, "max", models.RoleCustomer)
	item, err := st.Carts.Add(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	uow, err := st.Tx.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	err = st.Carts.ClearTx(uow, u.ID, []uint{item.ID, item.ID + 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
