package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
)

// reorderView joins a suggestion with its product snapshot for listings.
type reorderView struct {
	domain.ReorderRequest
	ProductName string `json:"productName"`
	Barcode     string `json:"barcode"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
}

// registerReorderRoutes registers the reorder advice routes
func registerReorderRoutes() {
	webserver.ApiGET("/reorders", listReorders)
}

func listReorders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.ReorderRequest{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reorders", err.Error())
	}

	var requests []domain.ReorderRequest
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&requests).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reorders", err.Error())
	}

	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ProductID)
	}

	products := map[int64]domain.Product{}
	if len(ids) > 0 {
		var rows []domain.Product
		if err := GetDB(c).Where("id IN ?", ids).Find(&rows).Error; err == nil {
			for _, p := range rows {
				products[p.ID] = p
			}
		}
	}

	views := make([]reorderView, 0, len(requests))
	for _, r := range requests {
		view := reorderView{ReorderRequest: r}
		if p, found := products[r.ProductID]; found {
			view.ProductName = p.Name
			view.Barcode = p.Barcode
			view.Quantity = p.Quantity
			view.Threshold = p.ReorderThreshold
		}
		views = append(views, view)
	}

	return paged(c, views, total, page, pageSize)
}
