// Package notify delivers best effort reorder notifications over SMTP and
// webhooks. Delivery settings are read at send time so runtime changes take
// effect without a restart.
package notify

import (
	"fmt"
	"time"

	"github.com/guonaihong/gout"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/modvice/shopstock/internal/domain"
)

// SettingsSource yields the settings of one category keyed by name.
type SettingsSource interface {
	GetCategory(category string) map[string]string
}

type notifySettings struct {
	MailEnable bool   `mapstructure:"mail_enable"`
	SmtpHost   string `mapstructure:"smtp_host"`
	SmtpPort   int    `mapstructure:"smtp_port"`
	SmtpUser   string `mapstructure:"smtp_user"`
	SmtpPasswd string `mapstructure:"smtp_passwd"`
	MailTo     string `mapstructure:"mail_to"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type Notifier struct {
	settings SettingsSource
}

func NewNotifier(settings SettingsSource) *Notifier {
	return &Notifier{settings: settings}
}

func (n *Notifier) loadSettings() (notifySettings, error) {
	raw := n.settings.GetCategory("notify")
	var cfg notifySettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// HandleReorderCreated is subscribed to the reorder created event. Failures
// are logged and never propagated back to the stock adjustment path.
func (n *Notifier) HandleReorderCreated(req *domain.ReorderRequest, p *domain.Product) {
	cfg, err := n.loadSettings()
	if err != nil {
		zap.L().Warn("notify settings decode failed", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Reorder suggested: %s", p.Name)
	body := fmt.Sprintf("Product %s (barcode %s) is down to %d units, at or below its threshold of %d.\n"+
		"Suggested reorder quantity: %d.",
		p.Name, p.Barcode, p.Quantity, p.ReorderThreshold, req.QtySuggestion)

	if cfg.MailEnable && cfg.SmtpHost != "" && cfg.MailTo != "" {
		n.sendMail(cfg, subject, body)
	}

	if cfg.WebhookURL != "" {
		n.sendWebhook(cfg.WebhookURL, req, p)
	}
}

func (n *Notifier) sendMail(cfg notifySettings, subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SmtpUser)
	m.SetHeader("To", cfg.MailTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(cfg.SmtpHost, cfg.SmtpPort, cfg.SmtpUser, cfg.SmtpPasswd)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Warn("reorder mail delivery failed",
			zap.String("to", cfg.MailTo), zap.Error(err))
		return
	}
	zap.L().Info("reorder mail sent", zap.String("to", cfg.MailTo))
}

func (n *Notifier) sendWebhook(url string, req *domain.ReorderRequest, p *domain.Product) {
	payload := map[string]interface{}{
		"event":         "reorder.created",
		"productId":     fmt.Sprintf("%d", p.ID),
		"productName":   p.Name,
		"barcode":       p.Barcode,
		"quantity":      p.Quantity,
		"threshold":     p.ReorderThreshold,
		"qtySuggestion": req.QtySuggestion,
		"createdAt":     req.CreatedAt.Format(time.RFC3339),
	}

	var code int
	err := gout.POST(url).
		SetJSON(payload).
		SetTimeout(10 * time.Second).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Warn("reorder webhook delivery failed", zap.String("url", url), zap.Error(err))
		return
	}
	if code >= 300 {
		zap.L().Warn("reorder webhook rejected", zap.String("url", url), zap.Int("status", code))
		return
	}
	zap.L().Info("reorder webhook sent", zap.String("url", url))
}
