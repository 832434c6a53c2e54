// Package adminapi exposes the REST endpoints for catalog, sales,
// reorders, users, settings, reports, exports and uploads.
package adminapi

// Init registers all API routes. The webserver must be initialized first.
func Init() {
	registerPublicRoutes()
	registerProductRoutes()
	registerSaleRoutes()
	registerReorderRoutes()
	registerUserRoutes()
	registerSettingsRoutes()
	registerDashboardRoutes()
	registerExportRoutes()
	registerUploadRoutes()
	registerBackupRoutes()
}
