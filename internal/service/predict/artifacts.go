package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// modelArtifact holds the exported weights of one pre-trained model. The
// categorical maps carry one weight per category seen during training;
// unseen categories fall back to DefaultWeight.
type modelArtifact struct {
	Bias               float64            `json:"bias"`
	DaysToDeparture    float64            `json:"days_to_departure"`
	SeatsRequested     float64            `json:"seats_requested"`
	ClassWeights       map[string]float64 `json:"class_weights"`
	OriginWeights      map[string]float64 `json:"origin_weights"`
	DestinationWeights map[string]float64 `json:"destination_weights"`
	MonthWeights       map[string]float64 `json:"month_weights"`
	DayOfWeekWeights   map[string]float64 `json:"dow_weights"`
	DefaultWeight      float64            `json:"default_weight"`
}

func loadArtifact(path string) (*modelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m modelArtifact
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

func (m *modelArtifact) score(q Query) float64 {
	score := m.Bias
	score += m.DaysToDeparture * float64(daysToDeparture(q))
	score += m.SeatsRequested * float64(q.SeatsRequested)
	score += lookup(m.ClassWeights, q.ClassName, m.DefaultWeight)
	score += lookup(m.OriginWeights, q.Origin, m.DefaultWeight)
	score += lookup(m.DestinationWeights, q.Destination, m.DefaultWeight)
	score += lookup(m.MonthWeights, strconv.Itoa(int(q.TravelDate.Month())), m.DefaultWeight)
	score += lookup(m.DayOfWeekWeights, strconv.Itoa(int(q.TravelDate.Weekday())), m.DefaultWeight)
	return score
}

// lookup resolves one categorical feature. An empty map means the model
// does not use the feature; an unseen category takes the fallback weight.
func lookup(weights map[string]float64, key string, fallback float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	if w, ok := weights[key]; ok {
		return w
	}
	return fallback
}

func daysToDeparture(q Query) int {
	days := int(dateOnly(q.TravelDate).Sub(dateOnly(q.BookingDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
