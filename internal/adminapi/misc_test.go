package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "/", 1, defaultPageSize},
		{"explicit", "/?page=3&pageSize=50", 3, 50},
		{"negative page", "/?page=-1", 1, defaultPageSize},
		{"zero pageSize", "/?pageSize=0", 1, defaultPageSize},
		{"capped", "/?pageSize=99999", 1, maxPageSize},
		{"garbage", "/?page=abc&pageSize=xyz", 1, defaultPageSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(tc.target)
			page, pageSize := parsePagination(c)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPageSize, pageSize)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	c, _ := newTestContext("/")
	c.SetParamNames("id")
	c.SetParamValues("123456789")

	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)
}

func TestParseIDParamInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "-5", "0", "12.5"} {
		c, _ := newTestContext("/")
		c.SetParamNames("id")
		c.SetParamValues(raw)

		_, err := parseIDParam(c, "id")
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestFailBodyShape(t *testing.T) {
	c, rec := newTestContext("/")
	err := fail(c, http.StatusConflict, "BARCODE_EXISTS", "Barcode already in use", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"BARCODE_EXISTS","message":"Barcode already in use"}}`,
		rec.Body.String())
}

func TestPagedBodyShape(t *testing.T) {
	c, rec := newTestContext("/")
	err := paged(c, []string{"a", "b"}, 42, 2, 20)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"items":["a","b"],"total":42,"page":2,"pageSize":20}`,
		rec.Body.String())
}
