package productcontroller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// ImportResult counts what happened to each data row.
type ImportResult struct {
	Created int      `json:"created_count"`
	Updated int      `json:"updated_count"`
	Skipped int      `json:"skipped_count"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportSheet upserts every row of the first sheet. Rows that fail parsing or
// validation are skipped and reported; the rest still import.
func ImportSheet(ctx context.Context, catalog Catalog, xlFile *xlsx.File) (ImportResult, error) {
	var res ImportResult
	if len(xlFile.Sheets) == 0 || len(xlFile.Sheets[0].Rows) < 2 {
		return res, apperr.Validation("Excel file is empty or missing header row")
	}
	sheet := xlFile.Sheets[0]
	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if row == nil {
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}
		if get(1) == "" && get(3) == "" {
			continue // blank row
		}
		product, err := parseRow(get)
		if err == nil {
			var created bool
			created, err = catalog.ImportProduct(ctx, product)
			if err == nil {
				if created {
					res.Created++
				} else {
					res.Updated++
				}
				continue
			}
			if apperr.KindOf(err) == apperr.KindUnavailable {
				return res, err
			}
		}
		res.Skipped++
		res.Errors = append(res.Errors, "row "+strconv.Itoa(i+1)+": "+errMessage(err))
	}
	return res, nil
}

func parseRow(get func(int) string) (*models.Product, error) {
	p := &models.Product{
		Title:       get(1),
		Description: get(2),
		ImageURL:    get(5),
	}
	if v := get(0); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, apperr.Validation("invalid ID")
		}
		p.ID = uint(id)
	}
	price, err := decimal.NewFromString(get(3))
	if err != nil {
		return nil, apperr.Validation("invalid Price")
	}
	p.Price = price
	qty, err := strconv.Atoi(get(4))
	if err != nil {
		return nil, apperr.Validation("invalid Qty")
	}
	p.StockQuantity = qty
	cid, err := strconv.ParseUint(get(6), 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid CategoryID")
	}
	p.CategoryID = uint(cid)
	return p, nil
}

func errMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "import failed"
}

// POST /admin/products/import (multipart "file")
func ImportProductsFromExcel(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		header, err := c.FormFile("file")
		if err != nil {
			apperr.Respond(c, apperr.Validation("Excel file is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			apperr.Respond(c, apperr.Validation("Failed to open Excel file"))
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, header.Size)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Failed to parse Excel file"))
			return
		}
		res, err := ImportSheet(c.Request.Context(), catalog, xlFile)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": res.Created,
			"updated_count": res.Updated,
			"skipped_count": res.Skipped,
			"errors":        res.Errors,
		})
	}
}
