package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/pkg/common"
)

// Settings categories and names stored in sys_config.
const (
	SettingsSystem           = "system"
	SettingsNotify           = "notify"
	SettingDefaultThreshold  = "default_threshold"
	SettingSmtpHost          = "smtp_host"
	SettingSmtpPort          = "smtp_port"
	SettingSmtpUser          = "smtp_user"
	SettingSmtpPasswd        = "smtp_passwd"
	SettingNotifyMailTo      = "mail_to"
	SettingNotifyWebhookURL  = "webhook_url"
	SettingNotifyMailEnable  = "mail_enable"
	SettingLowStockSweepCron = "low_stock_sweep"
)

// ConfigManager reads and writes runtime settings stored in sys_config,
// with a short read-through cache to keep hot paths off the database.
type ConfigManager struct {
	app      *Application
	mu       sync.RWMutex
	cache    map[string]string
	cachedAt time.Time
}

const settingsCacheTTL = 30 * time.Second

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, cache: make(map[string]string)}
}

func (m *ConfigManager) load() map[string]string {
	m.mu.RLock()
	if time.Since(m.cachedAt) < settingsCacheTTL {
		defer m.mu.RUnlock()
		return m.cache
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.app.gormDB.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}

	fresh := make(map[string]string, len(rows))
	for _, row := range rows {
		fresh[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = fresh
	m.cachedAt = time.Now()
	m.mu.Unlock()
	return fresh
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.load()[category+"."+name]
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// GetCategory returns all settings of one category keyed by name.
func (m *ConfigManager) GetCategory(category string) map[string]string {
	all := m.load()
	out := make(map[string]string)
	for key, val := range all {
		if len(key) > len(category)+1 && key[:len(category)] == category && key[len(category)] == '.' {
			out[key[len(category)+1:]] = val
		}
	}
	return out
}

// SetValue upserts a settings row and invalidates the cache.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var row domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&row).Error
	if err != nil {
		row = domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}
		err = m.app.gormDB.Create(&row).Error
	} else {
		err = m.app.gormDB.Model(&domain.SysConfig{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cachedAt = time.Time{}
	m.mu.Unlock()
	return nil
}
