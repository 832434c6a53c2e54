package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/internal/webserver"
	"github.com/modvice/shopstock/pkg/common"
)

type userPayload struct {
	FullName string `json:"fullName" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=Admin Manager Staff Cashier Client"`
	Remark   string `json:"remark" validate:"omitempty,max=500"`
}

type userUpdatePayload struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role" validate:"omitempty,oneof=Admin Manager Staff Cashier Client"`
	Status   *string `json:"status" validate:"omitempty,oneof=enabled disabled"`
	Remark   *string `json:"remark" validate:"omitempty,max=500"`
}

// registerUserRoutes registers operator account routes
func registerUserRoutes() {
	webserver.ApiGET("/users", listUsers)
	webserver.ApiGET("/users/:id", getUser)
	webserver.ApiPOST("/users", createUser)
	webserver.ApiPUT("/users/:id", updateUser)
	webserver.ApiDELETE("/users/:id", deleteUser)
}

func listUsers(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.SysUser{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + q + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	var users []domain.SysUser
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}

	return paged(c, users, total, page, pageSize)
}

func getUser(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}

	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	return ok(c, user)
}

func createUser(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var exists int64
	GetDB(c).Model(&domain.SysUser{}).Where("lower(email) = ?", email).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}

	user := domain.SysUser{
		ID:        common.UUIDint64(),
		FullName:  strings.TrimSpace(payload.FullName),
		Email:     email,
		Password:  string(hashed),
		Role:      payload.Role,
		Status:    common.ENABLED,
		Remark:    payload.Remark,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := GetDB(c).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

func updateUser(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}

	var payload userUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	// Only admins may change roles
	if payload.Role != nil && !webserver.HasRole(c, domain.RoleAdmin) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Only admins may change roles", nil)
	}

	if payload.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*payload.Email))
		if email != user.Email {
			var exists int64
			GetDB(c).Model(&domain.SysUser{}).Where("lower(email) = ? AND id != ?", email, id).Count(&exists)
			if exists > 0 {
				return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", nil)
			}
			user.Email = email
		}
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
	if payload.Role != nil {
		user.Role = *payload.Role
	}
	if payload.Status != nil {
		user.Status = *payload.Status
	}
	if payload.Remark != nil {
		user.Remark = *payload.Remark
	}
	user.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already in use", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}

	return ok(c, user)
}

func deleteUser(c echo.Context) error {
	if err := requireRole(c, domain.RoleAdmin); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}

	caller := webserver.GetCurrentUser(c)
	if caller != nil && caller.ID == id {
		return fail(c, http.StatusConflict, "SELF_DELETE", "Cannot delete your own account", nil)
	}

	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.SysUser{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user", err.Error())
	}

	return ok(c, map[string]interface{}{"id": id})
}
