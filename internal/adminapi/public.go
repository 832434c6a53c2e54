package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
)

const (
	storefrontDefaultLimit = 64
	storefrontMaxLimit     = 200
)

// registerPublicRoutes registers the unauthenticated endpoints
func registerPublicRoutes() {
	webserver.PubGET("/health", getHealth)
	webserver.PubGET("/public/products", listPublicProducts)
}

func getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
}

// listPublicProducts serves the storefront catalog without exposing
// stock internals beyond availability.
func listPublicProducts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = storefrontDefaultLimit
	}
	if limit > storefrontMaxLimit {
		limit = storefrontMaxLimit
	}

	var products []domain.Product
	err := GetDB(c).Order("created_at DESC").Limit(limit).Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	type storefrontProduct struct {
		ID       int64   `json:"id,string"`
		Name     string  `json:"name"`
		Brand    string  `json:"brand"`
		Price    float64 `json:"price"`
		Image    string  `json:"image"`
		Tags     string  `json:"tags"`
		Type     string  `json:"type"`
		Color    string  `json:"color"`
		Material string  `json:"material"`
		Rating   float64 `json:"rating"`
		Reviews  int     `json:"reviews"`
		InStock  bool    `json:"inStock"`
	}

	items := make([]storefrontProduct, 0, len(products))
	for _, p := range products {
		items = append(items, storefrontProduct{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			Price:    p.Price,
			Image:    p.Image,
			Tags:     p.Tags,
			Type:     p.Type,
			Color:    p.Color,
			Material: p.Material,
			Rating:   p.Rating,
			Reviews:  p.Reviews,
			InStock:  p.Quantity > 0,
		})
	}

	return ok(c, items)
}
