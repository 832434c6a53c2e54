package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
	"github.com/modvice/shopstock/pkg/common"
)

type dailyRevenueRow struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type dashboardResponse struct {
	ProductCount       int64             `json:"productCount"`
	LowStockCount      int64             `json:"lowStockCount"`
	PendingReorders    int64             `json:"pendingReorders"`
	TodayRevenue       float64           `json:"todayRevenue"`
	TodayQty           int64             `json:"todayQty"`
	MeanDailyRevenue   float64           `json:"meanDailyRevenue"`
	MedianDailyRevenue float64           `json:"medianDailyRevenue"`
	DailyRevenue       []dailyRevenueRow `json:"dailyRevenue"`
}

// registerDashboardRoutes registers the report routes
func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard", getDashboard)
}

func getDashboard(c echo.Context) error {
	db := GetDB(c)
	var resp dashboardResponse

	if err := db.Model(&domain.Product{}).Count(&resp.ProductCount).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	db.Model(&domain.Product{}).Where("quantity <= reorder_threshold").Count(&resp.LowStockCount)
	db.Model(&domain.ReorderRequest{}).Where("status = ?", domain.ReorderPending).Count(&resp.PendingReorders)

	today := common.TodayString()

	// Revenue excludes restocks, which are inventory intake rather than sales.
	type todayAgg struct {
		Revenue float64
		Qty     int64
	}
	var agg todayAgg
	db.Model(&domain.Sale{}).
		Select("COALESCE(SUM(amount),0) as revenue, COALESCE(SUM(qty),0) as qty").
		Where("date = ? AND type != ?", today, domain.TxRestock).
		Scan(&agg)
	resp.TodayRevenue = agg.Revenue
	resp.TodayQty = agg.Qty

	since := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	var rows []dailyRevenueRow
	db.Model(&domain.Sale{}).
		Select("date, COALESCE(SUM(amount),0) as revenue").
		Where("date >= ? AND type != ?", since, domain.TxRestock).
		Group("date").Order("date ASC").
		Scan(&rows)
	resp.DailyRevenue = rows

	if len(rows) > 0 {
		series := make([]float64, 0, len(rows))
		for _, row := range rows {
			series = append(series, row.Revenue)
		}
		resp.MeanDailyRevenue, _ = stats.Mean(series)
		resp.MedianDailyRevenue, _ = stats.Median(series)
	}

	return ok(c, resp)
}
