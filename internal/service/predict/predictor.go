package predict

import (
	"context"
	"math"
	"path/filepath"
	"time"
)

type Query struct {
	TrainID        string
	Origin         string
	Destination    string
	TravelDate     time.Time
	BookingDate    time.Time
	ClassName      string
	SeatsRequested int
}

type Result struct {
	SeatAvailable bool    `json:"seat_available"`
	Probability   float64 `json:"probability_seat_available"`
	SeatsLeft     int     `json:"seats_left"`
	Fare          float64 `json:"predicted_fare"`
}

type PredictUseCase interface {
	Predict(ctx context.Context, q Query) (Result, error)
}

// Cache stores previously computed predictions keyed by the query tuple.
type Cache interface {
	GetPrediction(ctx context.Context, q Query) (*Result, error)
	SetPrediction(ctx context.Context, q Query, r Result) error
}

// Service evaluates the three pre-trained models: a seat-availability
// classifier, a seats-left regressor and a fare regressor.
type Service struct {
	seat      *modelArtifact
	seatsLeft *modelArtifact
	fare      *modelArtifact
	cache     Cache
}

// NewService loads seat_model.json, seatleft_model.json and fare_model.json
// from the artifact directory. cache may be nil.
func NewService(artifactDir string, cache Cache) (*Service, error) {
	seat, err := loadArtifact(filepath.Join(artifactDir, "seat_model.json"))
	if err != nil {
		return nil, err
	}
	seatsLeft, err := loadArtifact(filepath.Join(artifactDir, "seatleft_model.json"))
	if err != nil {
		return nil, err
	}
	fare, err := loadArtifact(filepath.Join(artifactDir, "fare_model.json"))
	if err != nil {
		return nil, err
	}
	return &Service{seat: seat, seatsLeft: seatsLeft, fare: fare, cache: cache}, nil
}

func (s *Service) Predict(ctx context.Context, q Query) (Result, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPrediction(ctx, q); err == nil && cached != nil {
			return *cached, nil
		}
	}

	prob := sigmoid(s.seat.score(q))
	seatsLeft := int(math.Round(s.seatsLeft.score(q)))
	if seatsLeft < 0 {
		seatsLeft = 0
	}

	result := Result{
		SeatAvailable: prob >= 0.5,
		Probability:   math.Round(prob*10000) / 10000,
		SeatsLeft:     seatsLeft,
		Fare:          round2(s.fare.score(q)),
	}

	if s.cache != nil {
		_ = s.cache.SetPrediction(ctx, q, result)
	}
	return result, nil
}

var _ PredictUseCase = (*Service)(nil)
