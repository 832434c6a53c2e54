package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/webserver"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type failBody struct {
	Error apiError `json:"error"`
}

type pagedBody struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, failBody{Error: apiError{Code: code, Message: message, Details: details}})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedBody{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, errors.New("empty id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", details)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", nil)
}

// GetDB returns the request scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.AppCtx(c).DB()
}

// requireRole short-circuits handlers that need elevated roles.
func requireRole(c echo.Context, roles ...string) error {
	if !webserver.HasRole(c, roles...) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Insufficient role for this operation", nil)
	}
	return nil
}
