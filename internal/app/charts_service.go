package app

import (
	"context"
	"errors"
	"time"

	"fitlog/internal/domain"
)

// MaxChartDays caps the window of a chart request.
const MaxChartDays = 366

// ChartsService encapsulates chart data retrieval use cases.
type ChartsService struct {
	weightRepo domain.WeightRepository
	now        func() time.Time
}

// NewChartsService creates a ChartsService backed by the given repository.
func NewChartsService(wr domain.WeightRepository) *ChartsService {
	return &ChartsService{weightRepo: wr, now: time.Now}
}

// SeriesPoint is the body composition recorded on one date. Metrics that
// were not recorded are nil.
type SeriesPoint struct {
	Day      string   `json:"day"`
	Weight   *float64 `json:"weight"`
	IMC      *float64 `json:"imc"`
	Fat      *float64 `json:"fat"`
	Muscle   *float64 `json:"muscle"`
	Visceral *float64 `json:"visceral"`
}

// Series returns one point per recorded date within the last days days,
// oldest first. When a date has several entries the newest one wins.
// Weights are converted to unit.
func (s *ChartsService) Series(ctx context.Context, userID int64, days int, unit string) ([]SeriesPoint, error) {
	if unit != "kg" && unit != "lb" {
		return nil, errors.New("unit must be \"kg\" or \"lb\"")
	}
	if days <= 0 || days > MaxChartDays {
		days = MaxChartDays
	}

	entries, err := s.weightRepo.ListWeightEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortWeightEntries(entries)

	since := domain.Today(s.now().AddDate(0, 0, -(days - 1)))
	points := make([]SeriesPoint, 0, len(entries))
	seen := make(map[string]bool)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Date < since || !domain.ValidDate(e.Date) {
			continue
		}
		p := SeriesPoint{
			Day:      e.Date,
			Weight:   domain.MetricValue(e.Weight),
			IMC:      domain.MetricValue(e.IMC),
			Fat:      domain.MetricValue(e.FatPercentage),
			Muscle:   domain.MetricValue(e.MusclePercentage),
			Visceral: domain.MetricValue(e.VisceralFat),
		}
		if p.Weight != nil && unit != "kg" {
			v := domain.ConvertWeight(*p.Weight, "kg", unit)
			p.Weight = &v
		}
		// Entries run oldest first here, so a repeated date replaces the
		// point with the newer reading.
		if seen[e.Date] {
			points[len(points)-1] = p
			continue
		}
		seen[e.Date] = true
		points = append(points, p)
	}
	return points, nil
}
