package webserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/modvice/shopstock/internal/domain"
	"github.com/modvice/shopstock/pkg/common"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginUser struct {
	ID       int64  `json:"id,string"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

// RegisterAuthRoutes wires the public login endpoint.
func (s *WebServer) RegisterAuthRoutes() {
	s.pub.POST("/auth/login", s.handleLogin)
}

// IssueToken signs an HS256 bearer token for the given user.
func IssueToken(user *domain.SysUser, secret string, expire time.Duration) (string, error) {
	claims := jwtv4.MapClaims{
		"id":    strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(expire).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *WebServer) handleLogin(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse login parameters")
	}
	if err := c.Validate(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var user domain.SysUser
	err := s.appCtx.DB().Where("email = ?", email).First(&user).Error
	if err != nil || user.Status != common.ENABLED {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		zap.L().Warn("login rejected", zap.String("email", email), zap.String("ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	expire := time.Duration(s.appCtx.Config().Web.JwtExpire) * time.Hour
	if expire <= 0 {
		expire = 8 * time.Hour
	}
	token, err := IssueToken(&user, s.appCtx.Config().Web.Secret, expire)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	s.appCtx.DB().Model(&domain.SysUser{}).Where("id = ?", user.ID).
		Update("last_login", time.Now())
	s.appCtx.DB().Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   user.Email,
		OprIp:     c.RealIP(),
		OptAction: "login",
		OptDesc:   "operator login",
		OptTime:   time.Now(),
	})

	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User: loginUser{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}
