package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/schedule"
	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CheckDriver(ctx context.Context, driverID int64, target booking.Target) (*schedule.Conflict, error) {
	args := m.Called(ctx, driverID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Conflict), args.Error(1)
}

func (m *MockBookingUseCase) CheckVehicle(ctx context.Context, vehicleID int64, target booking.Target) (*schedule.Conflict, error) {
	args := m.Called(ctx, vehicleID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Conflict), args.Error(1)
}

func (m *MockBookingUseCase) AvailableDrivers(ctx context.Context, target booking.Target) ([]domain.Driver, error) {
	args := m.Called(ctx, target)
	return args.Get(0).([]domain.Driver), args.Error(1)
}

func (m *MockBookingUseCase) AvailableVehicles(ctx context.Context, target booking.Target, vehicleType string) ([]domain.Vehicle, error) {
	args := m.Called(ctx, target, vehicleType)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockBookingUseCase) AssignDriver(ctx context.Context, bookingID string, driverID *int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AssignVehicle(ctx context.Context, bookingID string, vehicleID *int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateBooking(ctx context.Context, bookingID string, patch domain.BookingPatch) (*booking.UpdateResult, error) {
	args := m.Called(ctx, bookingID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.UpdateResult), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CompleteFinishedBookings(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:        1,
		BookingID: "fctab12c1",
		RouteID:   7,
		Itinerary: domain.Itinerary{
			RouteDurationMinutes: 45,
			TripType:             domain.TripTypeOneWay,
			PickupDate:           &domain.Date{Year: 2025, Month: time.January, Day: 10},
			PickupTime:           &domain.Clock{Hour: 8},
		},
		Status:        domain.BookingStatusPending,
		PaymentType:   domain.PaymentTypeCard,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalAmount:   120,
		PassengerName: "Anna Berg",
	}
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	body := []byte(`{"route_id":7,"trip_type":"One Way","pickup_date":"2025-01-10","pickup_time":"08:00","payment_type":"card","total_amount":120,"passenger_name":"Anna Berg"}`)
	c, w := newTestContext(http.MethodPost, "/api/v1/bookings", body)

	mockService.On("CreateBooking", c.Request.Context(), mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.RouteID == 7 && in.TripType == domain.TripTypeOneWay && *in.PickupTime == domain.Clock{Hour: 8}
	})).Return(sampleBooking(), nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "fctab12c1", response.BookingID)
	assert.Equal(t, string(domain.BookingStatusPending), response.Status)
	assert.Equal(t, "08:00", response.PickupTime.String())
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_ValidationError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/v1/bookings", []byte(`{"route_id":7,"trip_type":"Return"}`))
	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).
		Return(nil, domain.ValidationError{Field: "pickup_date", Msg: "pickup date is required"})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"pickup_date: pickup date is required","field":"pickup_date"}`, w.Body.String())
}

func TestBookingHandler_create_BadJSON(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/v1/bookings", []byte(`{"pickup_time":"8 o'clock"}`))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodGet, "/api/v1/bookings/fctzzzzz9", nil)
	c.Params = gin.Params{{Key: "booking_id", Value: "fctzzzzz9"}}
	mockService.On("GetBooking", c.Request.Context(), "fctzzzzz9").Return(nil, domain.NotFoundError{Resource: "booking"})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodGet, "/api/v1/bookings?status=Pending&pickup_date=2025-01-10&driver_id=3&limit=20", nil)
	date := domain.Date{Year: 2025, Month: time.January, Day: 10}
	mockService.On("ListBookings", c.Request.Context(), repository.BookingFilter{
		Status:     domain.BookingStatusPending,
		PickupDate: &date,
		DriverID:   int64Ptr(3),
		Limit:      20,
	}).Return([]domain.Booking{*sampleBooking()}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list_BadFilter(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := newTestContext(http.MethodGet, "/api/v1/bookings?driver_id=abc", nil)
	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_assignDriver_Conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPut, "/api/v1/bookings/fctab12c1/driver", []byte(`{"driver_id":3}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("AssignDriver", c.Request.Context(), "fctab12c1", int64Ptr(3)).Return(nil, domain.ConflictError{
		Resource:   domain.ResourceDriver,
		ResourceID: 3,
		BookingID:  "fctqq0002",
		Windows:    []string{"2025-01-10 08:30 to 09:45"},
	})

	handler.assignDriver(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response struct {
		Error    string       `json:"error"`
		Conflict conflictBody `json:"conflict"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "fctqq0002", response.Conflict.BookingID)
	assert.Equal(t, []string{"2025-01-10 08:30 to 09:45"}, response.Conflict.Windows)
	assert.Contains(t, response.Error, "driver 3 is already booked")
}

func TestBookingHandler_assignDriver_Null(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPut, "/api/v1/bookings/fctab12c1/driver", []byte(`{"driver_id":null}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("AssignDriver", c.Request.Context(), "fctab12c1", (*int64)(nil)).Return(sampleBooking(), nil)

	handler.assignDriver(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_assignVehicle_Missing(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPut, "/api/v1/bookings/fctab12c1/vehicle", []byte(`{}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}

	handler.assignVehicle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "AssignVehicle", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_assignVehicle_Busy(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPut, "/api/v1/bookings/fctab12c1/vehicle", []byte(`{"vehicle_id":5}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("AssignVehicle", c.Request.Context(), "fctab12c1", int64Ptr(5)).Return(nil, domain.ErrResourceBusy)

	handler.assignVehicle(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_update(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPatch, "/api/v1/bookings/fctab12c1", []byte(`{"pickup_time":"09:00","return_date":null}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}

	updated := sampleBooking()
	updated.PickupTime = &domain.Clock{Hour: 9}
	mockService.On("UpdateBooking", c.Request.Context(), "fctab12c1", mock.MatchedBy(func(p domain.BookingPatch) bool {
		return p.PickupTime.Set && *p.PickupTime.Value == domain.Clock{Hour: 9} &&
			p.ReturnDate.Set && p.ReturnDate.Value == nil &&
			!p.PickupDate.Set
	})).Return(&booking.UpdateResult{Booking: updated, Changes: []string{"Pickup Time: 08:00 AM → 09:00 AM"}}, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response updateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"Pickup Time: 08:00 AM → 09:00 AM"}, response.Changes)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_update_TerminalStatus(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPatch, "/api/v1/bookings/fctab12c1", []byte(`{"booking_status":"Pending"}`))
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("UpdateBooking", c.Request.Context(), "fctab12c1", mock.Anything).Return(nil, domain.ErrTerminalStatus)

	handler.update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodDelete, "/api/v1/bookings/fctab12c1", nil)
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	cancelled := sampleBooking()
	cancelled.Status = domain.BookingStatusCancelled
	mockService.On("CancelBooking", c.Request.Context(), "fctab12c1").Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"booking_status":"Cancelled"`)
}

func TestBookingHandler_cancel_StorageError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodDelete, "/api/v1/bookings/fctab12c1", nil)
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("CancelBooking", c.Request.Context(), "fctab12c1").Return(nil, errors.New("connection refused"))

	handler.cancel(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestBookingHandler_availableVehicles(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodGet, "/api/v1/bookings/fctab12c1/available-vehicles?type=Sedan", nil)
	c.Params = gin.Params{{Key: "booking_id", Value: "fctab12c1"}}
	mockService.On("AvailableVehicles", c.Request.Context(), booking.Target{BookingID: "fctab12c1"}, "Sedan").
		Return([]domain.Vehicle{{ID: 11, LicensePlate: "AB-123", VehicleType: "Sedan"}}, nil)

	handler.availableVehicles(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []vehicleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(11), response[0].ID)
}
