package webserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/modvice/shopstock/internal/app"
	"github.com/modvice/shopstock/pkg/common"
)

// ContextAppKey stores the application context on each request.
const ContextAppKey = "shopstock_app"

var server *WebServer

type WebServer struct {
	appCtx app.AppContext
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonSerializer plugs json-iterator into echo.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body").SetInternal(err)
	}
	return nil
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the web server on top of the application context.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: false,
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextAppKey, appCtx)
			return next(c)
		}
	})

	// uploaded images are served directly from the workdir
	e.Static("/uploads", common.MakeWorkDir(appCtx.Config().System.Workdir, "uploads"))

	pub := e.Group("/api")
	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.Secret),
	}))

	server = &WebServer{appCtx: appCtx, root: e, pub: pub, api: api}
	return server
}

// Listen starts serving on the configured host/port; blocks until shutdown.
func (s *WebServer) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.appCtx.Config().Web.Host, s.appCtx.Config().Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	return s.root.Start(addr)
}

// AppCtx returns the application context bound to the request.
func AppCtx(c echo.Context) app.AppContext {
	return c.Get(ContextAppKey).(app.AppContext)
}

// Route registration helpers used by the adminapi package.

func PubGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.pub.GET(path, h, m...)
}

func PubPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.pub.POST(path, h, m...)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// CurrentUser is the authenticated caller identity extracted from the JWT.
type CurrentUser struct {
	ID    int64
	Email string
	Role  string
}

// GetCurrentUser reads the verified token claims from the request context.
func GetCurrentUser(c echo.Context) *CurrentUser {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil
	}
	return &CurrentUser{
		ID:    cast.ToInt64(claims["id"]),
		Email: cast.ToString(claims["email"]),
		Role:  cast.ToString(claims["role"]),
	}
}

// HasRole reports whether the caller holds one of the given roles.
func HasRole(c echo.Context, roles ...string) bool {
	user := GetCurrentUser(c)
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}
