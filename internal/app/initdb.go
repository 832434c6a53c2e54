package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/pkg/common"
)

func (a *Application) checkSuper() {
	const superEmail = "admin@modvice.com"
	const defaultPassword = "admin123"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var user domain.SysUser
	err = a.gormDB.Where("email = ?", superEmail).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			FullName:  "Administrator",
			Email:     superEmail,
			Password:  string(hashed),
			Role:      domain.RoleAdmin,
			Status:    common.ENABLED,
			Remark:    "default admin",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(user.Password) == ""
	resetRole := !strings.EqualFold(user.Role, domain.RoleAdmin)
	resetStatus := !strings.EqualFold(user.Status, common.ENABLED)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

type settingDefault struct {
	Category string
	Name     string
	Value    string
	Remark   string
}

func (a *Application) checkSettings() {
	defaults := []settingDefault{
		{SettingsSystem, SettingDefaultThreshold, "5", "Reorder threshold applied to products created without one"},
		{SettingsSystem, SettingLowStockSweepCron, "@hourly", "Cron spec for the low stock sweep job"},
		{SettingsNotify, SettingNotifyMailEnable, "false", "Enable reorder email notifications"},
		{SettingsNotify, SettingSmtpHost, "", "SMTP server host"},
		{SettingsNotify, SettingSmtpPort, "25", "SMTP server port"},
		{SettingsNotify, SettingSmtpUser, "", "SMTP account"},
		{SettingsNotify, SettingSmtpPasswd, "", "SMTP password"},
		{SettingsNotify, SettingNotifyMailTo, "", "Recipient for reorder notifications"},
		{SettingsNotify, SettingNotifyWebhookURL, "", "Webhook endpoint for reorder notifications"},
	}

	for sortid, item := range defaults {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", item.Category, item.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   item.Category,
				Name:   item.Name,
				Value:  item.Value,
				Remark: item.Remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", item.Category+"."+item.Name),
				zap.String("default", item.Value))
		}
	}
}

// checkDemoProducts seeds a small starter catalog on an empty database.
func (a *Application) checkDemoProducts() {
	var total int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&total).Error; err != nil || total > 0 {
		return
	}

	demo := []domain.Product{
		{Name: "Air Runner Classic", Brand: "Modvice", Barcode: "1000000000017", Price: 89.90,
			Quantity: 24, ReorderThreshold: 5, Type: "sneaker", Color: "black", Material: "mesh"},
		{Name: "Court Low Canvas", Brand: "Modvice", Barcode: "1000000000024", Price: 59.00,
			Quantity: 40, ReorderThreshold: 8, Type: "sneaker", Color: "white", Material: "canvas"},
		{Name: "Trail Grip Pro", Brand: "Northpeak", Barcode: "1000000000031", Price: 129.50,
			Quantity: 12, ReorderThreshold: 4, Type: "boot", Color: "brown", Material: "leather"},
	}

	for _, p := range demo {
		p.ID = common.UUIDint64()
		p.Rating = 4
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create demo product", zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized demo product", zap.String("name", p.Name))
		}
	}
}
