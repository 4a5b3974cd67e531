package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/transfers/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(a *Authorizer) *gin.Engine {
	r := gin.New()
	r.GET("/bookings", a.Require(PermBooking), func(c *gin.Context) {
		p, _ := FromContext(c)
		c.String(http.StatusOK, p.Subject)
	})
	r.POST("/public/bookings", a.RequireAPIKeyOr(PermBooking), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, a *Authorizer, superuser bool, perms ...string) http.Header {
	t.Helper()
	token, err := a.IssueToken("staff-1", superuser, perms, time.Hour)
	require.NoError(t, err)
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestPrincipal_Has(t *testing.T) {
	assert.True(t, Principal{Superuser: true}.Has(PermDrivers))
	assert.True(t, Principal{Permissions: []string{"booking"}}.Has(PermBooking))
	assert.False(t, Principal{Permissions: []string{"booking"}}.Has(PermVehicles))
}

func TestRequire(t *testing.T) {
	a := NewAuthorizer(config.AuthConfig{JWTSecret: "secret", APIKey: "widget-key"})
	r := newRouter(a)

	w := do(r, http.MethodGet, "/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/bookings", http.Header{"Authorization": []string{"Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/bookings", bearer(t, a, false, "drivers"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/bookings", bearer(t, a, false, "booking"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff-1", w.Body.String())

	w = do(r, http.MethodGet, "/bookings", bearer(t, a, true))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequire_WrongSecret(t *testing.T) {
	a := NewAuthorizer(config.AuthConfig{JWTSecret: "secret"})
	other := NewAuthorizer(config.AuthConfig{JWTSecret: "other"})

	w := do(newRouter(a), http.MethodGet, "/bookings", bearer(t, other, true))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAPIKeyOr(t *testing.T) {
	a := NewAuthorizer(config.AuthConfig{JWTSecret: "secret", APIKey: "widget-key"})
	r := newRouter(a)

	w := do(r, http.MethodPost, "/public/bookings", http.Header{APIKeyHeader: []string{"widget-key"}})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/public/bookings", http.Header{APIKeyHeader: []string{"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/public/bookings", bearer(t, a, false, "booking"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDisabledAuthorizerAllowsAll(t *testing.T) {
	a := NewAuthorizer(config.AuthConfig{})
	r := newRouter(a)

	assert.False(t, a.Enabled())
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/bookings", nil).Code)
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/public/bookings", nil).Code)
}
