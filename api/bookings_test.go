package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/ledger"
	"github.com/smirnov-d/railbooking/internal/service/booking"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, trainID string) (*booking.CancelResult, error) {
	args := m.Called(ctx, trainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CancelResult), args.Error(1)
}

func (m *MockBookingUseCase) GetStatus(ctx context.Context, trainID string) (*booking.StatusResult, error) {
	args := m.Called(ctx, trainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.StatusResult), args.Error(1)
}

func (m *MockBookingUseCase) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.BookingRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) ViewArchive(ctx context.Context, dateKey string) (*booking.ArchiveView, error) {
	args := m.Called(ctx, dateKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.ArchiveView), args.Error(1)
}

func (m *MockBookingUseCase) Summary(ctx context.Context) (*booking.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Summary), args.Error(1)
}

func (m *MockBookingUseCase) ArchiveStale(ctx context.Context) ([]domain.BookingRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRecord), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]interface{}{
		"train_id":        "T100",
		"origin":          "DEL",
		"destination":     "BOM",
		"travel_date":     "2026-09-10",
		"booking_date":    "2026-08-28",
		"class":           "SL",
		"seats_requested": 2,
	})
	c.Request = httptest.NewRequest("POST", "/booking/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	record := &domain.BookingRecord{
		BookingID: "bid-1",
		TrainID:   "T100",
		Status:    domain.BookingStatusConfirmed,
	}
	mockService.On("CreateBooking", c.Request.Context(), mock.AnythingOfType("booking.CreateBookingInput")).
		Return(&booking.CreateBookingResult{Status: "confirmed", SeatsLeft: 12, Fare: 1450.75, Record: record}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp["status"])
	assert.Equal(t, "bid-1", resp["booking_id"])
	assert.Equal(t, float64(12), resp["seats_left"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createRejected(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]interface{}{
		"train_id":        "T100",
		"origin":          "DEL",
		"destination":     "BOM",
		"travel_date":     "2026-09-10",
		"booking_date":    "2026-08-28",
		"class":           "1A",
		"seats_requested": 6,
	})
	c.Request = httptest.NewRequest("POST", "/booking/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.AnythingOfType("booking.CreateBookingInput")).
		Return(&booking.CreateBookingResult{Status: "rejected", Reason: "No seats available"}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp["status"])
	assert.Equal(t, "No seats available", resp["reason"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createBadDate(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]interface{}{
		"train_id":        "T100",
		"origin":          "DEL",
		"destination":     "BOM",
		"travel_date":     "10-09-2026",
		"booking_date":    "2026-08-28",
		"class":           "SL",
		"seats_requested": 2,
	})
	c.Request = httptest.NewRequest("POST", "/booking/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_listEmpty(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/booking/all", nil)

	mockService.On("ListBookings", c.Request.Context()).Return([]domain.BookingRecord{}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No bookings found", resp["message"])
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "train_id", Value: "T100"}}
	c.Request = httptest.NewRequest("DELETE", "/booking/cancel/T100", nil)

	mockService.On("CancelBooking", c.Request.Context(), "T100").
		Return(&booking.CancelResult{TrainID: "T100", Status: domain.BookingStatusCancelled, RefundAmount: 900.00}, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp["status"])
	assert.Equal(t, 900.00, resp["refund_amount"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancelNotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "train_id", Value: "T999"}}
	c.Request = httptest.NewRequest("DELETE", "/booking/cancel/T999", nil)

	mockService.On("CancelBooking", c.Request.Context(), "T999").Return(nil, ledger.ErrNotFound)

	handler.cancel(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_status(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "train_id", Value: "T100"}}
	c.Request = httptest.NewRequest("GET", "/booking/status/T100", nil)

	mockService.On("GetStatus", c.Request.Context(), "T100").
		Return(&booking.StatusResult{TrainID: "T100", Status: domain.BookingStatusConfirmed, Fare: 1450.75, Timestamp: time.Now()}, nil)

	handler.status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp["status"])
	assert.Equal(t, 1450.75, resp["fare"])
}

func TestBookingHandler_archiveNotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/booking/archive?date=19990101", nil)

	mockService.On("ViewArchive", c.Request.Context(), "19990101").Return(nil, ledger.ErrNotFound)

	handler.archive(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_summary(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/booking/summary", nil)

	mockService.On("Summary", c.Request.Context()).Return(&booking.Summary{
		TotalConfirmed: 2,
		TotalCancelled: 1,
		TotalArchived:  5,
		TotalRevenue:   2500.50,
		TotalRefund:    400.00,
		ChartLabels:    []string{"Confirmed", "Cancelled", "Archived"},
		ChartValues:    []int{2, 1, 5},
	}, nil)

	handler.summary(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["summary"]["total_confirmed"])
	assert.Equal(t, float64(5), resp["summary"]["total_archived"])
	assert.Equal(t, 2500.50, resp["summary"]["total_revenue"])
}
