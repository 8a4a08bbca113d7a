package booking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/kafka"
	"github.com/smirnov-d/railbooking/internal/ledger"
	"github.com/smirnov-d/railbooking/internal/service/predict"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	ListBookings(ctx context.Context) ([]domain.BookingRecord, error)
	CancelBooking(ctx context.Context, trainID string) (*CancelResult, error)
	GetStatus(ctx context.Context, trainID string) (*StatusResult, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.BookingRecord, error)
	ViewArchive(ctx context.Context, dateKey string) (*ArchiveView, error)
	Summary(ctx context.Context) (*Summary, error)
	ArchiveStale(ctx context.Context) ([]domain.BookingRecord, error)
}

type Predictor interface {
	Predict(ctx context.Context, q predict.Query) (predict.Result, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookingService orchestrates the booking ledger. Every operation runs the
// archival sweep first; the mutex serializes each sweep+mutation pair so
// concurrent cancels or a sweep racing a write cannot lose updates.
type BookingService struct {
	mu                 sync.Mutex
	ledger             ledger.LedgerStore
	archive            ledger.ArchiveStore
	predictor          Predictor
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type CreateBookingInput struct {
	TrainID        string
	Origin         string
	Destination    string
	TravelDate     time.Time
	BookingDate    time.Time
	ClassName      string
	SeatsRequested int
}

type CreateBookingResult struct {
	Status    string
	Reason    string
	SeatsLeft int
	Fare      float64
	Record    *domain.BookingRecord
}

type CancelResult struct {
	TrainID      string
	Status       domain.BookingStatus
	RefundAmount float64
}

type StatusResult struct {
	TrainID   string
	Status    domain.BookingStatus
	Fare      float64
	Timestamp time.Time
}

type ArchiveView struct {
	Date    string
	Total   int
	Records []domain.BookingRecord
}

type Summary struct {
	TotalConfirmed int
	TotalCancelled int
	TotalArchived  int
	TotalRevenue   float64
	TotalRefund    float64
	ChartLabels    []string
	ChartValues    []int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	store ledger.LedgerStore,
	archive ledger.ArchiveStore,
	predictor Predictor,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		ledger:       store,
		archive:      archive,
		predictor:    predictor,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if input.TrainID == "" {
		return nil, errors.New("train id is required")
	}
	if input.SeatsRequested <= 0 {
		return nil, errors.New("seats requested must be positive")
	}
	if input.TravelDate.IsZero() || input.BookingDate.IsZero() {
		return nil, errors.New("travel and booking dates are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	prediction, err := s.predictor.Predict(ctx, predict.Query{
		TrainID:        input.TrainID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		TravelDate:     input.TravelDate,
		BookingDate:    input.BookingDate,
		ClassName:      input.ClassName,
		SeatsRequested: input.SeatsRequested,
	})
	if err != nil {
		return nil, err
	}
	if !prediction.SeatAvailable {
		return &CreateBookingResult{Status: "rejected", Reason: "No seats available"}, nil
	}

	record := domain.BookingRecord{
		BookingID:      uuid.NewString(),
		TrainID:        input.TrainID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		TravelDate:     input.TravelDate,
		BookingDate:    input.BookingDate,
		ClassName:      input.ClassName,
		SeatsRequested: input.SeatsRequested,
		Fare:           prediction.Fare,
		Status:         domain.BookingStatusConfirmed,
		CreatedAt:      time.Now(),
	}
	if err := s.ledger.Append(ctx, record); err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_created", record)

	return &CreateBookingResult{
		Status:    string(domain.BookingStatusConfirmed),
		SeatsLeft: prediction.SeatsLeft,
		Fare:      prediction.Fare,
		Record:    &record,
	}, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}
	return s.ledger.All(ctx)
}

func (s *BookingService) CancelBooking(ctx context.Context, trainID string) (*CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	current := lastMatch(records, trainID)
	if current == nil {
		return nil, ledger.ErrNotFound
	}
	if current.Status == domain.BookingStatusCancelled {
		// Repeat cancellation is a no-op: no new refund, no write.
		return &CancelResult{TrainID: trainID, Status: domain.BookingStatusCancelled}, nil
	}

	refund := Refund(current.DaysUntil(time.Now()), current.Fare)

	updated, err := s.ledger.UpdateStatus(ctx, trainID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", *updated)

	// The cancelled row is archived right away.
	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	return &CancelResult{
		TrainID:      trainID,
		Status:       domain.BookingStatusCancelled,
		RefundAmount: refund,
	}, nil
}

func (s *BookingService) GetStatus(ctx context.Context, trainID string) (*StatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	record := lastMatch(records, trainID)
	if record == nil {
		return nil, ledger.ErrNotFound
	}
	return &StatusResult{
		TrainID:   record.TrainID,
		Status:    record.Status,
		Fare:      record.Fare,
		Timestamp: record.CreatedAt,
	}, nil
}

func (s *BookingService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	var matches []domain.BookingRecord
	for _, rec := range records {
		if filter.Matches(rec) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

func (s *BookingService) ViewArchive(ctx context.Context, dateKey string) (*ArchiveView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	if dateKey != "" {
		records, err := s.archive.ReadPartition(ctx, dateKey)
		if err != nil {
			return nil, err
		}
		return &ArchiveView{Date: dateKey, Total: len(records), Records: records}, nil
	}

	records, err := s.archive.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ArchiveView{Total: len(records), Records: records}, nil
}

func (s *BookingService) Summary(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweep(ctx); err != nil {
		return nil, err
	}

	active, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	archived, err := s.archive.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalArchived: len(archived)}
	for _, rec := range active {
		switch rec.Status {
		case domain.BookingStatusConfirmed:
			summary.TotalConfirmed++
			summary.TotalRevenue += rec.Fare
		case domain.BookingStatusCancelled:
			summary.TotalCancelled++
		}
	}
	for _, rec := range archived {
		if rec.Status == domain.BookingStatusCancelled {
			summary.TotalRefund += rec.Fare
		}
	}
	summary.TotalRevenue = round2(summary.TotalRevenue)
	summary.TotalRefund = round2(summary.TotalRefund)
	summary.ChartLabels = []string{"Confirmed", "Cancelled", "Archived"}
	summary.ChartValues = []int{summary.TotalConfirmed, summary.TotalCancelled, summary.TotalArchived}
	return summary, nil
}

// ArchiveStale runs the sweep on its own and returns the evicted records.
// Used by the worker's periodic tick.
func (s *BookingService) ArchiveStale(ctx context.Context) ([]domain.BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep(ctx)
}

// sweep moves past-travel-date and cancelled rows into today's archive
// partition and rewrites the ledger with the survivors. Caller holds s.mu.
func (s *BookingService) sweep(ctx context.Context) ([]domain.BookingRecord, error) {
	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	today := time.Now()
	var stale, active []domain.BookingRecord
	for _, rec := range records {
		if rec.Stale(today) {
			stale = append(stale, rec)
		} else {
			active = append(active, rec)
		}
	}
	if len(stale) == 0 {
		return nil, nil
	}

	dateKey := today.Format(domain.PartitionLayout)
	if err := s.archive.AppendToPartition(ctx, dateKey, stale); err != nil {
		return nil, err
	}
	if err := s.ledger.ReplaceAll(ctx, active); err != nil {
		return nil, err
	}
	for _, rec := range stale {
		s.publish(ctx, "booking_archived", rec)
	}
	return stale, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, rec domain.BookingRecord) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   rec.BookingID,
		TrainID:     rec.TrainID,
		Origin:      rec.Origin,
		Destination: rec.Destination,
		TravelDate:  rec.TravelDate,
		Fare:        rec.Fare,
		Status:      string(rec.Status),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, rec.BookingID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, rec.BookingID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, rec.BookingID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, rec.BookingID, err)
		}
	}
}

func lastMatch(records []domain.BookingRecord, trainID string) *domain.BookingRecord {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].TrainID == trainID {
			return &records[i]
		}
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
