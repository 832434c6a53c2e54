package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/app"
	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
)

type thresholdPayload struct {
	DefaultThreshold int `json:"defaultThreshold" validate:"gte=0,lte=100000"`
}

type profilePayload struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=200"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// registerSettingsRoutes registers runtime settings routes
func registerSettingsRoutes() {
	webserver.ApiGET("/settings/threshold", getThreshold)
	webserver.ApiPUT("/settings/threshold", putThreshold)
	webserver.ApiPUT("/settings/profile", putProfile)
}

func getThreshold(c echo.Context) error {
	value := webserver.AppCtx(c).GetSettingsInt64Value(app.SettingsSystem, app.SettingDefaultThreshold)
	return ok(c, map[string]interface{}{"defaultThreshold": value})
}

func putThreshold(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin); err != nil {
		return err
	}

	var payload thresholdPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse threshold parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	mgr := webserver.AppCtx(c).ConfigMgr()
	err := mgr.SetValue(app.SettingsSystem, app.SettingDefaultThreshold, strconv.Itoa(payload.DefaultThreshold))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update threshold", err.Error())
	}

	return ok(c, map[string]interface{}{"defaultThreshold": payload.DefaultThreshold})
}

// putProfile lets any authenticated user update their own name and password.
func putProfile(c echo.Context) error {
	caller := webserver.GetCurrentUser(c)
	if caller == nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	}

	var payload profilePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", caller.ID).First(&user).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	if payload.FullName != nil {
		user.FullName = strings.TrimSpace(*payload.FullName)
	}
	if payload.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
		}
		user.Password = string(hashed)
	}
	user.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", err.Error())
	}

	return ok(c, user)
}
