package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/app"
	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
	"github.com/modvice/shopstock/pkg/common"
)

type productPayload struct {
	Name             string  `json:"name" validate:"required,min=1,max=200"`
	Brand            string  `json:"brand" validate:"omitempty,max=128"`
	Barcode          string  `json:"barcode" validate:"omitempty,max=64"`
	Price            float64 `json:"price" validate:"gte=0"`
	Quantity         int     `json:"quantity" validate:"gte=0"`
	ReorderThreshold *int    `json:"reorderThreshold" validate:"omitempty,gte=0"`
	Image            string  `json:"image" validate:"omitempty,max=1024"`
	Tags             string  `json:"tags" validate:"omitempty,max=512"`
	Type             string  `json:"type" validate:"omitempty,max=32"`
	Color            string  `json:"color" validate:"omitempty,max=32"`
	Material         string  `json:"material" validate:"omitempty,max=64"`
}

type productUpdatePayload struct {
	Name             *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Brand            *string  `json:"brand" validate:"omitempty,max=128"`
	Barcode          *string  `json:"barcode" validate:"omitempty,max=64"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity         *int     `json:"quantity" validate:"omitempty,gte=0"`
	ReorderThreshold *int     `json:"reorderThreshold" validate:"omitempty,gte=0"`
	Image            *string  `json:"image" validate:"omitempty,max=1024"`
	Tags             *string  `json:"tags" validate:"omitempty,max=512"`
	Type             *string  `json:"type" validate:"omitempty,max=32"`
	Color            *string  `json:"color" validate:"omitempty,max=32"`
	Material         *string  `json:"material" validate:"omitempty,max=64"`
}

// registerProductRoutes registers catalog routes
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/low-stock", listLowStockProducts)
	webserver.ApiGET("/products/barcode/:code", getProductByBarcode)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiPOST("/products/:id/ack", ackLowStock)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

var productSortColumns = map[string]string{
	"name":     "name",
	"price":    "price",
	"quantity": "quantity",
	"created":  "created_at",
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + q + "%"
		db = db.Where("name ILIKE ? OR brand ILIKE ? OR barcode ILIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	order := "id DESC"
	if col, found := productSortColumns[c.QueryParam("sort")]; found {
		order = col + " ASC"
		if c.QueryParam("dir") == "desc" {
			order = col + " DESC"
		}
	}

	var products []domain.Product
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, products, total, page, pageSize)
}

func listLowStockProducts(c echo.Context) error {
	var products []domain.Product
	err := GetDB(c).Where("quantity <= reorder_threshold").
		Order("quantity ASC").Limit(200).Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	return ok(c, p)
}

func getProductByBarcode(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return fail(c, http.StatusBadRequest, "INVALID_BARCODE", "Barcode is required", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("barcode = ?", code).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	return ok(c, p)
}

func createProduct(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Barcode = strings.TrimSpace(payload.Barcode)

	if payload.Barcode != "" {
		var exists int64
		GetDB(c).Model(&domain.Product{}).Where("barcode = ?", payload.Barcode).Count(&exists)
		if exists > 0 {
			return fail(c, http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use", nil)
		}
	}

	threshold := int(webserver.AppCtx(c).GetSettingsInt64Value(app.SettingsSystem, app.SettingDefaultThreshold))
	if payload.ReorderThreshold != nil {
		threshold = *payload.ReorderThreshold
	}

	p := domain.Product{
		ID:               common.UUIDint64(),
		Name:             payload.Name,
		Brand:            payload.Brand,
		Barcode:          payload.Barcode,
		Price:            payload.Price,
		Quantity:         payload.Quantity,
		ReorderThreshold: threshold,
		Image:            payload.Image,
		Tags:             payload.Tags,
		Type:             payload.Type,
		Color:            payload.Color,
		Material:         payload.Material,
		Rating:           4,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if p.Type == "" {
		p.Type = "sneaker"
	}
	if p.Color == "" {
		p.Color = "black"
	}

	if err := GetDB(c).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}

	return c.JSON(http.StatusCreated, p)
}

func updateProduct(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	if payload.Barcode != nil {
		code := strings.TrimSpace(*payload.Barcode)
		if code != "" && code != p.Barcode {
			var exists int64
			GetDB(c).Model(&domain.Product{}).Where("barcode = ? AND id != ?", code, id).Count(&exists)
			if exists > 0 {
				return fail(c, http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use", nil)
			}
		}
		p.Barcode = code
	}
	if payload.Name != nil {
		p.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Brand != nil {
		p.Brand = *payload.Brand
	}
	if payload.Price != nil {
		p.Price = *payload.Price
	}
	if payload.Quantity != nil {
		p.Quantity = *payload.Quantity
	}
	if payload.ReorderThreshold != nil {
		p.ReorderThreshold = *payload.ReorderThreshold
	}
	if payload.Image != nil {
		p.Image = *payload.Image
	}
	if payload.Tags != nil {
		p.Tags = *payload.Tags
	}
	if payload.Type != nil {
		p.Type = *payload.Type
	}
	if payload.Color != nil {
		p.Color = *payload.Color
	}
	if payload.Material != nil {
		p.Material = *payload.Material
	}
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}

	return ok(c, p)
}

// ackLowStock acknowledges the pending reorder advice for a product by
// marking it Created, so the sweep and future sales can file fresh advice.
func ackLowStock(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	result := GetDB(c).Model(&domain.ReorderRequest{}).
		Where("product_id = ? AND status = ?", id, domain.ReorderPending).
		Updates(map[string]interface{}{"status": domain.ReorderCreated, "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to acknowledge reorder", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "REORDER_NOT_FOUND", "No pending reorder for this product", nil)
	}

	return ok(c, map[string]interface{}{"ok": true})
}

func deleteProduct(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}

	return ok(c, map[string]interface{}{"id": id})
}
