package adminapi

import (
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
)

type productCsvRow struct {
	ID               int64   `csv:"id"`
	Name             string  `csv:"name"`
	Brand            string  `csv:"brand"`
	Barcode          string  `csv:"barcode"`
	Price            float64 `csv:"price"`
	Quantity         int     `csv:"quantity"`
	ReorderThreshold int     `csv:"reorder_threshold"`
	Type             string  `csv:"type"`
	Color            string  `csv:"color"`
}

type saleCsvRow struct {
	ID          int64   `csv:"id"`
	Date        string  `csv:"date"`
	Type        string  `csv:"type"`
	ProductName string  `csv:"product_name"`
	Barcode     string  `csv:"barcode"`
	Qty         int     `csv:"qty"`
	UnitPrice   float64 `csv:"unit_price"`
	Amount      float64 `csv:"amount"`
}

// registerExportRoutes registers CSV and spreadsheet export routes
func registerExportRoutes() {
	webserver.ApiGET("/export/products.csv", exportProductsCsv)
	webserver.ApiGET("/export/sales.csv", exportSalesCsv)
	webserver.ApiGET("/export/sales.xlsx", exportSalesXlsx)
}

func setDownloadHeaders(c echo.Context, filename, contentType string) {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Response().WriteHeader(http.StatusOK)
}

func exportProductsCsv(c echo.Context) error {
	var products []domain.Product
	if err := GetDB(c).Order("id ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	rows := make([]productCsvRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCsvRow{
			ID:               p.ID,
			Name:             p.Name,
			Brand:            p.Brand,
			Barcode:          p.Barcode,
			Price:            p.Price,
			Quantity:         p.Quantity,
			ReorderThreshold: p.ReorderThreshold,
			Type:             p.Type,
			Color:            p.Color,
		})
	}

	setDownloadHeaders(c, "products.csv", "text/csv")
	return gocsv.Marshal(&rows, c.Response().Writer)
}

func exportSalesCsv(c echo.Context) error {
	var sales []domain.Sale
	if err := GetDB(c).Order("created_at ASC").Find(&sales).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}

	rows := make([]saleCsvRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, saleCsvRow{
			ID:          s.ID,
			Date:        s.Date,
			Type:        s.Type,
			ProductName: s.ProductName,
			Barcode:     s.Barcode,
			Qty:         s.Qty,
			UnitPrice:   s.UnitPrice,
			Amount:      s.Amount,
		})
	}

	setDownloadHeaders(c, "sales.csv", "text/csv")
	return gocsv.Marshal(&rows, c.Response().Writer)
}

func exportSalesXlsx(c echo.Context) error {
	var sales []domain.Sale
	if err := GetDB(c).Order("created_at ASC").Find(&sales).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}

	f := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"ID", "Date", "Type", "Product", "Barcode", "Qty", "Unit Price", "Amount"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}

	for i, s := range sales {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d", s.ID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.Date)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Type)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.ProductName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.Barcode)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.Qty)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), s.UnitPrice)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), s.Amount)
	}

	setDownloadHeaders(c, "sales.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return f.Write(c.Response().Writer)
}
