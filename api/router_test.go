package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/transfers/config"
	"github.com/Domenick1991/transfers/internal/auth"
	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(bookings *MockBookingUseCase, routes *MockRouteUseCase, cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Bookings: bookings,
		Routes:   routes,
		Guard:    auth.NewAuthorizer(cfg),
	})
}

func TestRouter_RequestID(t *testing.T) {
	routes := &MockRouteUseCase{}
	routes.On("List", mock.Anything).Return([]domain.Route{}, nil)
	router := newTestRouter(&MockBookingUseCase{}, routes, config.AuthConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_Permissions(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret", APIKey: "widget-key"}
	bookings := &MockBookingUseCase{}
	bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(sampleBooking(), nil)
	bookings.On("AssignDriver", mock.Anything, "fctab12c1", int64Ptr(3)).Return(sampleBooking(), nil)
	router := newTestRouter(bookings, &MockRouteUseCase{}, cfg)

	issuer := auth.NewAuthorizer(cfg)
	bookingOnly, err := issuer.IssueToken("clerk", false, []string{"booking"}, time.Hour)
	require.NoError(t, err)
	dispatcher, err := issuer.IssueToken("dispatch", false, []string{"drivers"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header map[string]string
		want   int
	}{
		{"widget creates booking", http.MethodPost, "/api/v1/bookings", `{"route_id":7}`, map[string]string{"Api-Key": "widget-key"}, http.StatusCreated},
		{"anonymous create rejected", http.MethodPost, "/api/v1/bookings", `{"route_id":7}`, nil, http.StatusUnauthorized},
		{"widget cannot list", http.MethodGet, "/api/v1/bookings", ``, map[string]string{"Api-Key": "widget-key"}, http.StatusUnauthorized},
		{"booking clerk cannot assign drivers", http.MethodPut, "/api/v1/bookings/fctab12c1/driver", `{"driver_id":3}`, map[string]string{"Authorization": "Bearer " + bookingOnly}, http.StatusForbidden},
		{"dispatcher assigns drivers", http.MethodPut, "/api/v1/bookings/fctab12c1/driver", `{"driver_id":3}`, map[string]string{"Authorization": "Bearer " + dispatcher}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(RouterDeps{
		Bookings:       &MockBookingUseCase{},
		Routes:         &MockRouteUseCase{},
		Guard:          auth.NewAuthorizer(config.AuthConfig{}),
		AllowedOrigins: []string{"https://firstclass.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	req.Header.Set("Origin", "https://firstclass.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://firstclass.example", w.Header().Get("Access-Control-Allow-Origin"))
}
