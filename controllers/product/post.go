package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/shopspring/decimal"
)

// POST /products (multipart: title, description, price, qty, category_id, image?)
func CreateProduct(catalog Catalog, images storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.RequireRole(c, models.RoleAdmin); err != nil {
			apperr.Respond(c, err)
			return
		}

		title := strings.TrimSpace(c.PostForm("title"))
		priceStr := c.PostForm("price")
		qtyStr := c.PostForm("qty")
		categoryStr := c.PostForm("category_id")
		if title == "" || priceStr == "" || qtyStr == "" || categoryStr == "" {
			apperr.Respond(c, apperr.Validation("title, price, qty and category_id are required"))
			return
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid price"))
			return
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid qty"))
			return
		}
		categoryID, err := parseID(categoryStr, "category")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		product := models.Product{
			Title:         title,
			Description:   c.PostForm("description"),
			Price:         price,
			StockQuantity: qty,
			CategoryID:    categoryID,
		}
		if err := ValidateBeforeUpload(&product); err != nil {
			apperr.Respond(c, err)
			return
		}

		if file, err := c.FormFile("image"); err == nil {
			ref, err := images.Save(file)
			if err != nil {
				apperr.Respond(c, err)
				return
			}
			product.ImageURL = ref
		}

		if err := catalog.CreateProduct(c.Request.Context(), &product); err != nil {
			discardImage(images, product.ImageURL)
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": product.ID, "product": product})
	}
}

// ValidateBeforeUpload rejects bad fields before any file is written.
func ValidateBeforeUpload(p *models.Product) error {
	switch {
	case p.Price.IsNegative():
		return apperr.Validation("price must be >= 0")
	case p.StockQuantity < 0:
		return apperr.Validation("qty must be >= 0")
	}
	return nil
}

func discardImage(images storage.ImageStore, ref string) {
	if ref == "" {
		return
	}
	if err := images.Delete(ref); err != nil {
		logging.Log(logging.Fields{Step: "image_cleanup", Status: "error", Error: err.Error(), Message: ref})
	}
}
