package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newCachedConfigManager(values map[string]string) *ConfigManager {
	return &ConfigManager{cache: values, cachedAt: time.Now()}
}

func TestConfigManagerTypedGetters(t *testing.T) {
	m := newCachedConfigManager(map[string]string{
		"system.default_threshold": "5",
		"system.low_stock_sweep":   "@hourly",
		"notify.mail_enable":       "true",
		"notify.smtp_port":         "587",
	})

	assert.Equal(t, "@hourly", m.GetString(SettingsSystem, SettingLowStockSweepCron))
	assert.Equal(t, int64(5), m.GetInt64(SettingsSystem, SettingDefaultThreshold))
	assert.Equal(t, 587, m.GetInt(SettingsNotify, SettingSmtpPort))
	assert.True(t, m.GetBool(SettingsNotify, SettingNotifyMailEnable))
}

func TestConfigManagerMissingKeys(t *testing.T) {
	m := newCachedConfigManager(map[string]string{})

	assert.Empty(t, m.GetString(SettingsSystem, SettingDefaultThreshold))
	assert.Zero(t, m.GetInt64(SettingsSystem, SettingDefaultThreshold))
	assert.False(t, m.GetBool(SettingsNotify, SettingNotifyMailEnable))
}

func TestConfigManagerConcurrentReads(t *testing.T) {
	m := newCachedConfigManager(map[string]string{
		"system.default_threshold": "5",
		"notify.mail_enable":       "true",
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, int64(5), m.GetInt64(SettingsSystem, SettingDefaultThreshold))
				assert.True(t, m.GetBool(SettingsNotify, SettingNotifyMailEnable))
				_ = m.GetCategory(SettingsNotify)
			}
		}()
	}
	wg.Wait()
}

func TestConfigManagerGetCategory(t *testing.T) {
	m := newCachedConfigManager(map[string]string{
		"notify.smtp_host":         "mail.example.com",
		"notify.mail_to":           "ops@example.com",
		"system.default_threshold": "5",
	})

	got := m.GetCategory(SettingsNotify)
	assert.Equal(t, map[string]string{
		"smtp_host": "mail.example.com",
		"mail_to":   "ops@example.com",
	}, got)
}
