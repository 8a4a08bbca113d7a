package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/ledger"
	"github.com/smirnov-d/railbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	TrainID        string `json:"train_id" binding:"required"`
	Origin         string `json:"origin" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	TravelDate     string `json:"travel_date" binding:"required"`
	BookingDate    string `json:"booking_date" binding:"required"`
	ClassName      string `json:"class" binding:"required"`
	SeatsRequested int    `json:"seats_requested" binding:"required,gt=0"`
}

type bookingResponse struct {
	BookingID      string  `json:"booking_id"`
	TrainID        string  `json:"train_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	TravelDate     string  `json:"travel_date"`
	BookingDate    string  `json:"booking_date"`
	ClassName      string  `json:"class"`
	SeatsRequested int     `json:"seats_requested"`
	Fare           float64 `json:"fare"`
	Status         string  `json:"status"`
	Timestamp      string  `json:"timestamp"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/all", h.list)
	router.DELETE("/cancel/:train_id", h.cancel)
	router.GET("/status/:train_id", h.status)
	router.GET("/search", h.search)
	router.GET("/archive", h.archive)
	router.GET("/summary", h.summary)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	travelDate, err := time.Parse(domain.DateLayout, req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "travel_date must be in format YYYY-MM-DD"})
		return
	}
	bookingDate, err := time.Parse(domain.DateLayout, req.BookingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_date must be in format YYYY-MM-DD"})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		TrainID:        req.TrainID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		TravelDate:     travelDate,
		BookingDate:    bookingDate,
		ClassName:      req.ClassName,
		SeatsRequested: req.SeatsRequested,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if result.Record == nil {
		c.JSON(http.StatusOK, gin.H{"status": result.Status, "reason": result.Reason})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":     result.Status,
		"booking_id": result.Record.BookingID,
		"seats_left": result.SeatsLeft,
		"fare":       result.Fare,
	})
}

func (h *BookingHandler) list(c *gin.Context) {
	records, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No bookings found"})
		return
	}
	c.JSON(http.StatusOK, toResponses(records))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	trainID := c.Param("train_id")
	result, err := h.service.CancelBooking(c.Request.Context(), trainID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        string(result.Status),
		"train_id":      result.TrainID,
		"refund_amount": result.RefundAmount,
		"message":       "Booking cancelled successfully and archived",
	})
}

func (h *BookingHandler) status(c *gin.Context) {
	trainID := c.Param("train_id")
	result, err := h.service.GetStatus(c.Request.Context(), trainID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No booking found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"train_id":  result.TrainID,
		"status":    string(result.Status),
		"fare":      result.Fare,
		"timestamp": result.Timestamp.Format(time.RFC3339),
	})
}

func (h *BookingHandler) search(c *gin.Context) {
	filter := domain.SearchFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Status:      c.Query("status"),
		ClassName:   c.Query("class"),
	}
	if raw := c.Query("travel_date"); raw != "" {
		date, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "travel_date must be in format YYYY-MM-DD"})
			return
		}
		filter.TravelDate = &date
	}

	records, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No matching bookings found"})
		return
	}
	c.JSON(http.StatusOK, toResponses(records))
}

func (h *BookingHandler) archive(c *gin.Context) {
	view, err := h.service.ViewArchive(c.Request.Context(), c.Query("date"))
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Archive not found for given date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if view.Date != "" {
		c.JSON(http.StatusOK, gin.H{
			"archive_date": view.Date,
			"records":      toResponses(view.Records),
		})
		return
	}
	if view.Total == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No archived records found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_archived_records": view.Total,
		"records":                toResponses(view.Records),
	})
}

func (h *BookingHandler) summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": gin.H{
			"total_confirmed": summary.TotalConfirmed,
			"total_cancelled": summary.TotalCancelled,
			"total_archived":  summary.TotalArchived,
			"total_revenue":   summary.TotalRevenue,
			"total_refund":    summary.TotalRefund,
		},
		"chart_data": gin.H{
			"labels": summary.ChartLabels,
			"values": summary.ChartValues,
		},
	})
}

func toResponses(records []domain.BookingRecord) []bookingResponse {
	responses := make([]bookingResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, bookingResponse{
			BookingID:      rec.BookingID,
			TrainID:        rec.TrainID,
			Origin:         rec.Origin,
			Destination:    rec.Destination,
			TravelDate:     rec.TravelDate.Format(domain.DateLayout),
			BookingDate:    rec.BookingDate.Format(domain.DateLayout),
			ClassName:      rec.ClassName,
			SeatsRequested: rec.SeatsRequested,
			Fare:           rec.Fare,
			Status:         string(rec.Status),
			Timestamp:      rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses
}
