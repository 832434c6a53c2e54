package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/config"
	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/inventory"
	"github.com/modvice/shopstock/internal/notify"
	"github.com/modvice/shopstock/pkg/metrics"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	bus           EventBus.Bus
	invService    *inventory.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider            = (*Application)(nil)
	_ ConfigProvider        = (*Application)(nil)
	_ SettingsProvider      = (*Application)(nil)
	_ SchedulerProvider     = (*Application)(nil)
	_ ConfigManagerProvider = (*Application)(nil)
	_ BusProvider           = (*Application)(nil)
	_ InventoryProvider     = (*Application)(nil)
	_ AppContext            = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
		a.checkSettings()
		a.checkDemoProducts()
	}()

	a.configManager = NewConfigManager(a)
	a.bus = EventBus.New()

	a.invService = inventory.NewService(
		inventory.NewGormProductRepository(a.gormDB),
		inventory.NewGormSaleRepository(a.gormDB),
		inventory.NewGormReorderRepository(a.gormDB),
		a.bus,
	)

	a.initMetricsSubscribers()
	a.initNotifier()
	a.initJob()
}

// initNotifier hooks reorder notifications onto the event bus.
func (a *Application) initNotifier() {
	notifier := notify.NewNotifier(a.configManager)
	err := a.bus.SubscribeAsync(inventory.TopicReorderCreated, notifier.HandleReorderCreated, false)
	if err != nil {
		zap.L().Error("failed to subscribe reorder notifier", zap.Error(err))
	}
}

// initMetricsSubscribers feeds the metrics store from inventory events.
func (a *Application) initMetricsSubscribers() {
	err := a.bus.SubscribeAsync(inventory.TopicSaleRecorded, func(sale *domain.Sale) {
		metrics.IncrCounter("sales_count", 1)
		metrics.IncrCounter("sales_amount", sale.Amount)
	}, false)
	if err != nil {
		zap.L().Error("failed to subscribe sales metrics", zap.Error(err))
	}

	err = a.bus.SubscribeAsync(inventory.TopicReorderCreated, func(req *domain.ReorderRequest, p *domain.Product) {
		metrics.IncrCounter("reorder_created", 1)
	}, false)
	if err != nil {
		zap.L().Error("failed to subscribe reorder metrics", zap.Error(err))
	}
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	a.migrateIndexes()
	return nil
}

// migrateIndexes creates the partial unique indexes gorm tags cannot express:
// at most one Pending reorder per product, unique non-empty barcodes, and
// case-insensitive unique user emails.
func (a *Application) migrateIndexes() {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inv_reorder_pending ON inv_reorder_request (product_id) WHERE status = 'Pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inv_product_barcode ON inv_product (barcode) WHERE barcode <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sys_user_email ON sys_user (lower(email))`,
	}
	for _, stmt := range stmts {
		if err := a.gormDB.Exec(stmt).Error; err != nil {
			zap.S().Errorf("index migration failed: %v", err)
		}
	}
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
	a.migrateIndexes()
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Bus returns the in-process event bus
func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// Inventory returns the stock adjustment / reorder advisor service
func (a *Application) Inventory() *inventory.Service {
	return a.invService
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, name string) string {
	return a.configManager.GetString(category, name)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, name string) int64 {
	return a.configManager.GetInt64(category, name)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, name string) bool {
	return a.configManager.GetBool(category, name)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
