package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/tealeg/xlsx"
)

// Column order shared by export and import.
var excelHeaders = []string{
	"ID", "Title", "Description", "Price", "Qty", "ImageURL", "CategoryID", "CreatedAt", "UpdatedAt",
}

// BuildProductsSheet renders products as a single-sheet workbook.
func BuildProductsSheet(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}
	headerRow := sheet.AddRow()
	for _, h := range excelHeaders {
		headerRow.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Title)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetInt(int(p.CategoryID))
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// GET /admin/products/export
func ExportProductsToExcel(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		products, err := catalog.ListProducts(c.Request.Context(), store.ProductFilter{})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		file, err := BuildProductsSheet(products)
		if err != nil {
			apperr.Respond(c, apperr.Wrap(apperr.KindInternal, err, "Failed to create Excel sheet"))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Status(http.StatusOK)
		if err := file.Write(c.Writer); err != nil {
			c.Error(err)
		}
	}
}
