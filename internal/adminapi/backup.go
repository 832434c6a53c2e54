package adminapi

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type backupDocument struct {
	ExportedAt time.Time               `json:"exportedAt"`
	Products   []domain.Product        `json:"products"`
	Sales      []domain.Sale           `json:"sales"`
	Reorders   []domain.ReorderRequest `json:"reorders"`
	Users      []domain.SysUser        `json:"users"`
	Settings   []domain.SysConfig      `json:"settings"`
}

// registerBackupRoutes registers the admin data export route
func registerBackupRoutes() {
	webserver.ApiGET("/admin/backup", getBackup)
}

// getBackup dumps every collection in parallel into one JSON document.
func getBackup(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin); err != nil {
		return err
	}

	db := GetDB(c)
	doc := backupDocument{ExportedAt: time.Now()}

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		return db.WithContext(ctx).Order("id ASC").Find(&doc.Products).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("id ASC").Find(&doc.Sales).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("id ASC").Find(&doc.Reorders).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("id ASC").Find(&doc.Users).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Order("id ASC").Find(&doc.Settings).Error
	})
	if err := g.Wait(); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export data", err.Error())
	}

	setDownloadHeaders(c, "shopstock-backup.json", echo.MIMEApplicationJSON)
	return json.NewEncoder(c.Response().Writer).Encode(doc)
}
