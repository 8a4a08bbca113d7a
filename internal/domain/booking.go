package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// DateLayout is the wire format for travel and booking dates.
const DateLayout = "2006-01-02"

// PartitionLayout is the key format for archive partitions, one per sweep day.
const PartitionLayout = "20060102"

type BookingRecord struct {
	BookingID      string        `json:"booking_id"`
	TrainID        string        `json:"train_id"`
	Origin         string        `json:"origin"`
	Destination    string        `json:"destination"`
	TravelDate     time.Time     `json:"travel_date"`
	BookingDate    time.Time     `json:"booking_date"`
	ClassName      string        `json:"class"`
	SeatsRequested int           `json:"seats_requested"`
	Fare           float64       `json:"fare"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Stale reports whether the record should be moved out of the ledger:
// either its travel date has passed or it was cancelled.
func (r BookingRecord) Stale(today time.Time) bool {
	return dateOnly(r.TravelDate).Before(dateOnly(today)) || r.Status == BookingStatusCancelled
}

// DaysUntil returns the number of whole calendar days from today until the
// travel date. Negative when the date has already passed.
func (r BookingRecord) DaysUntil(today time.Time) int {
	return int(dateOnly(r.TravelDate).Sub(dateOnly(today)).Hours() / 24)
}

// SearchFilter holds optional AND-combined booking filters. String fields
// match case-insensitively; TravelDate matches the exact calendar day.
type SearchFilter struct {
	Origin      string
	Destination string
	Status      string
	ClassName   string
	TravelDate  *time.Time
}

func (f SearchFilter) Matches(r BookingRecord) bool {
	if f.Origin != "" && !strings.EqualFold(f.Origin, r.Origin) {
		return false
	}
	if f.Destination != "" && !strings.EqualFold(f.Destination, r.Destination) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, string(r.Status)) {
		return false
	}
	if f.ClassName != "" && !strings.EqualFold(f.ClassName, r.ClassName) {
		return false
	}
	if f.TravelDate != nil && !dateOnly(*f.TravelDate).Equal(dateOnly(r.TravelDate)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
