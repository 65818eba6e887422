package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
)

// PUT /products/:id, every multipart field optional. A new image replaces
// the old file.
func UpdateProduct(catalog Catalog, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}
		id, err := parseID(c.Param("id"), "product")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		patch, err := parsePatch(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		var newImage string
		if file, err := c.FormFile("image"); err == nil {
			if newImage, err = images.Save(file); err != nil {
				apperr.Respond(c, err)
				return
			}
			patch.ImageURL = &newImage
		}

		product, oldImage, err := catalog.UpdateProduct(c.Request.Context(), id, patch)
		if err != nil {
			discardImage(images, newImage)
			apperr.Respond(c, err)
			return
		}
		if newImage != "" && oldImage != newImage {
			discardImage(images, oldImage)
		}
		c.JSON(http.StatusOK, product)
	}
}

func parsePatch(c *gin.Context) (store.ProductPatch, error) {
	var patch store.ProductPatch
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return patch, apperr.Validation("Invalid price")
		}
		patch.Price = &price
	}
	if v, ok := c.GetPostForm("qty"); ok {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return patch, apperr.Validation("Invalid qty")
		}
		patch.StockQuantity = &qty
	}
	if v, ok := c.GetPostForm("category_id"); ok {
		cid, err := parseID(v, "category")
		if err != nil {
			return patch, err
		}
		patch.CategoryID = &cid
	}
	return patch, nil
}
