package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/service/predict"
)

type PredictHandler struct {
	service predict.PredictUseCase
}

type predictRequest struct {
	TrainID        string `json:"train_id" binding:"required"`
	Origin         string `json:"origin" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	TravelDate     string `json:"travel_date" binding:"required"`
	BookingDate    string `json:"booking_date" binding:"required"`
	ClassName      string `json:"class" binding:"required"`
	SeatsRequested int    `json:"seats_requested" binding:"required,gt=0"`
}

func NewPredictHandler(service predict.PredictUseCase) *PredictHandler {
	return &PredictHandler{service: service}
}

func (h *PredictHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.predict)
}

func (h *PredictHandler) predict(c *gin.Context) {
	var req predictRequest
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

	result, err := h.service.Predict(c.Request.Context(), predict.Query{
		TrainID:        req.TrainID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		TravelDate:     travelDate,
		BookingDate:    bookingDate,
		ClassName:      req.ClassName,
		SeatsRequested: req.SeatsRequested,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seat_available":             result.SeatAvailable,
		"probability_seat_available": result.Probability,
		"seats_left":                 result.SeatsLeft,
		"predicted_fare":             result.Fare,
	})
}
