package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modvice/shopstock/internal/domain"
)

const testSecret = "test-secret"

func TestIssueTokenRoundTrip(t *testing.T) {
	user := &domain.SysUser{
		ID:    1234567890123456789,
		Email: "staff@example.com",
		Role:  domain.RoleStaff,
	}

	raw, err := IssueToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Parse the same way the auth middleware does
	token, err := jwtv5.Parse(raw, func(token *jwtv5.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwtv5.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "1234567890123456789", claims["id"])
	assert.Equal(t, "staff@example.com", claims["email"])
	assert.Equal(t, domain.RoleStaff, claims["role"])
}

func TestIssueTokenExpired(t *testing.T) {
	user := &domain.SysUser{ID: 1, Email: "x@example.com", Role: domain.RoleStaff}
	raw, err := IssueToken(user, testSecret, -time.Hour)
	require.NoError(t, err)

	_, err = jwtv5.Parse(raw, func(token *jwtv5.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.Error(t, err)
}

func newAuthedContext(t *testing.T, user *domain.SysUser) echo.Context {
	t.Helper()

	raw, err := IssueToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	token, err := jwtv5.Parse(raw, func(token *jwtv5.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("user", token)
	return c
}

func TestGetCurrentUser(t *testing.T) {
	user := &domain.SysUser{
		ID:    987654321987654321,
		Email: "manager@example.com",
		Role:  domain.RoleManager,
	}
	c := newAuthedContext(t, user)

	current := GetCurrentUser(c)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, user.Email, current.Email)
	assert.Equal(t, user.Role, current.Role)
}

func TestGetCurrentUserMissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Nil(t, GetCurrentUser(c))
	assert.False(t, HasRole(c, domain.RoleAdmin))
}

func TestHasRole(t *testing.T) {
	user := &domain.SysUser{ID: 1, Email: "a@example.com", Role: domain.RoleCashier}
	c := newAuthedContext(t, user)

	assert.True(t, HasRole(c, domain.RoleCashier))
	assert.True(t, HasRole(c, domain.RoleAdmin, domain.RoleCashier))
	assert.False(t, HasRole(c, domain.RoleAdmin, domain.RoleManager))
}
