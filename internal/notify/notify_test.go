package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetCategory(category string) map[string]string {
	return f.values
}

func TestLoadSettings(t *testing.T) {
	n := NewNotifier(&fakeSettings{values: map[string]string{
		"mail_enable": "true",
		"smtp_host":   "mail.example.com",
		"smtp_port":   "587",
		"smtp_user":   "noreply@example.com",
		"smtp_passwd": "secret",
		"mail_to":     "ops@example.com",
		"webhook_url": "https://hooks.example.com/reorder",
	}})

	cfg, err := n.loadSettings()
	require.NoError(t, err)
	assert.True(t, cfg.MailEnable)
	assert.Equal(t, "mail.example.com", cfg.SmtpHost)
	assert.Equal(t, 587, cfg.SmtpPort)
	assert.Equal(t, "ops@example.com", cfg.MailTo)
	assert.Equal(t, "https://hooks.example.com/reorder", cfg.WebhookURL)
}

func TestLoadSettingsEmpty(t *testing.T) {
	n := NewNotifier(&fakeSettings{values: map[string]string{}})

	cfg, err := n.loadSettings()
	require.NoError(t, err)
	assert.False(t, cfg.MailEnable)
	assert.Empty(t, cfg.SmtpHost)
	assert.Zero(t, cfg.SmtpPort)
}
