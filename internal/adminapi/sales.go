package adminapi

import (
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/inventory"
	"github.com/modvice/shopstock/internal/webserver"
)

// saleSearchClause matches free text against the denormalized ledger fields.
func saleSearchClause(q string) (string, []interface{}) {
	like := "%" + q + "%"
	return "product_name ILIKE ? OR brand ILIKE ? OR barcode ILIKE ?",
		[]interface{}{like, like, like}
}

// registerSaleRoutes registers the transaction ledger routes
func registerSaleRoutes() {
	webserver.ApiGET("/sales", listSales)
	webserver.ApiPOST("/sales", createSale)
	webserver.ApiDELETE("/sales/:id", deleteSale)
}

func listSales(c echo.Context) error {
	db := GetDB(c).Model(&domain.Sale{})

	if from := strings.TrimSpace(c.QueryParam("from")); from != "" {
		t, err := dateparse.ParseAny(from)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse from date", nil)
		}
		db = db.Where("date >= ?", t.Format("2006-01-02"))
	}
	if to := strings.TrimSpace(c.QueryParam("to")); to != "" {
		t, err := dateparse.ParseAny(to)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse to date", nil)
		}
		db = db.Where("date <= ?", t.Format("2006-01-02"))
	}
	if kind := strings.TrimSpace(c.QueryParam("type")); kind != "" {
		db = db.Where("type = ?", kind)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		clause, args := saleSearchClause(q)
		db = db.Where(clause, args...)
	}

	var sales []domain.Sale
	if err := db.Order("created_at DESC").Limit(1000).Find(&sales).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}

	return ok(c, sales)
}

func createSale(c echo.Context) error {
	var req inventory.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transaction parameters", nil)
	}

	svc := webserver.AppCtx(c).Inventory()
	product, sale, err := svc.RecordTransaction(c.Request().Context(), req)
	switch {
	case err == nil:
	case inventory.IsValidationError(err):
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	case errors.Is(err, inventory.ErrInsufficientStock):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", "Insufficient stock", nil)
	case errors.Is(err, inventory.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record transaction", err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"product": product,
		"sale":    sale,
	})
}

func deleteSale(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}

	revert := cast.ToBool(c.QueryParam("revert"))

	svc := webserver.AppCtx(c).Inventory()
	err = svc.RevertTransaction(c.Request().Context(), id, revert)
	switch {
	case err == nil:
	case errors.Is(err, inventory.ErrSaleNotFound):
		return fail(c, http.StatusNotFound, "SALE_NOT_FOUND", "Sale not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete sale", err.Error())
	}

	return ok(c, map[string]interface{}{"ok": true})
}
