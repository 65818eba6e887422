package productcontroller

import (
	"bytes"
	"context"
	"testing"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/junaidrashid-git/storefront-api/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func reopen(t *testing.T, f *xlsx.File) *xlsx.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	out, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	return out
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	cat := storetest.Category(t, st, "Lamps")
	storetest.Product(t, st, cat.ID, "Desk", "19.99", 4)
	storetest.Product(t, st, cat.ID, "Floor", "49.50", 2)

	products, err := st.Catalog.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	file, err := BuildProductsSheet(products)
	require.NoError(t, err)

	edited := reopen(t, file)
	sheet := edited.Sheets[0]
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Title", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "19.99", sheet.Rows[1].Cells[3].String())

	// Edit one row and append a new product, then import.
	sheet.Rows[1].Cells[4].SetInt(40)
	row := sheet.AddRow()
	for _, v := range []string{"", "Wall", "new", "5.00", "7", "", ""} {
		row.AddCell().SetString(v)
	}
	row.Cells[6].SetInt(int(cat.ID))
	bad := sheet.AddRow()
	for _, v := range []string{"", "Broken", "", "-1", "1", "", "1"} {
		bad.AddCell().SetString(v)
	}

	res, err := ImportSheet(ctx, st.Catalog, reopen(t, edited))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 5")

	desk, err := st.Catalog.GetProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 40, desk.StockQuantity)

	all, err := st.Catalog.ListProducts(ctx, store.ProductFilter{Search: "wall"})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, decimal.RequireFromString("5").Equal(all[0].Price))
}

func TestImportSheetRejectsEmptyFile(t *testing.T) {
	st := storetest.New(t)
	file, err := BuildProductsSheet([]models.Product{})
	require.NoError(t, err)
	_, err = ImportSheet(context.Background(), st.Catalog, reopen(t, file))
	assert.Error(t, err)
}
