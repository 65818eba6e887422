package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
)

// GET /products?search=&category_id=&min_price=&max_price=
func GetProducts(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseFilter(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		products, err := catalog.ListProducts(c.Request.Context(), filter)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func parseFilter(c *gin.Context) (store.ProductFilter, error) {
	f := store.ProductFilter{Search: strings.TrimSpace(c.Query("search"))}
	if v := c.Query("category_id"); v != "" {
		cid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, apperr.Validation("Invalid category_id")
		}
		f.CategoryID = uint(cid)
	}
	if v := c.Query("min_price"); v != "" {
		mp, err := decimal.NewFromString(v)
		if err != nil {
			return f, apperr.Validation("Invalid min_price")
		}
		f.MinPrice = &mp
	}
	if v := c.Query("max_price"); v != "" {
		mp, err := decimal.NewFromString(v)
		if err != nil {
			return f, apperr.Validation("Invalid max_price")
		}
		f.MaxPrice = &mp
	}
	return f, nil
}
