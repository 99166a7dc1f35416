package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fitlog/internal/domain"
)

// DefaultHeight pre-fills the height of a new entry, in centimeters.
const DefaultHeight = "173"

// Fat-percentage goal band shown next to the history.
const (
	FatGoalMin = 10.0
	FatGoalMax = 15.0
)

// WeightForm carries the editable fields of a weight entry. IMC is never
// accepted from the client; it is derived on save.
type WeightForm struct {
	ID               string `json:"id,omitempty"`
	Date             string `json:"date"`
	Weight           string `json:"weight"`
	Height           string `json:"height"`
	FatPercentage    string `json:"fatPercentage"`
	MusclePercentage string `json:"musclePercentage"`
	VisceralFat      string `json:"visceralFat"`
}

// FormFromEntry returns the editable fields of e.
func FormFromEntry(e domain.WeightEntry) WeightForm {
	return WeightForm{
		ID:               e.ID,
		Date:             e.Date,
		Weight:           e.Weight,
		Height:           e.Height,
		FatPercentage:    e.FatPercentage,
		MusclePercentage: e.MusclePercentage,
		VisceralFat:      e.VisceralFat,
	}
}

// NewEntryDefaults is the initial record of the "new entry" form.
func NewEntryDefaults(today string) WeightForm {
	return WeightForm{Date: today, Height: DefaultHeight}
}

// Trends holds the per-field comparison against the previous entry.
type Trends struct {
	Weight           domain.Trend `json:"weight,omitempty"`
	IMC              domain.Trend `json:"imc,omitempty"`
	FatPercentage    domain.Trend `json:"fatPercentage,omitempty"`
	MusclePercentage domain.Trend `json:"musclePercentage,omitempty"`
	VisceralFat      domain.Trend `json:"visceralFat,omitempty"`
	Height           domain.Trend `json:"height,omitempty"`
}

// Tones says whether each trend is good or bad news.
type Tones struct {
	Weight           domain.Tone `json:"weight"`
	IMC              domain.Tone `json:"imc"`
	FatPercentage    domain.Tone `json:"fatPercentage"`
	MusclePercentage domain.Tone `json:"musclePercentage"`
	VisceralFat      domain.Tone `json:"visceralFat"`
	Height           domain.Tone `json:"height"`
}

// Tones applies each metric's polarity to its trend. Only muscle is better
// when it goes up; height has no preferred direction.
func (t Trends) Tones() Tones {
	return Tones{
		Weight:           domain.LowerIsBetter.Tone(t.Weight),
		IMC:              domain.LowerIsBetter.Tone(t.IMC),
		FatPercentage:    domain.LowerIsBetter.Tone(t.FatPercentage),
		MusclePercentage: domain.HigherIsBetter.Tone(t.MusclePercentage),
		VisceralFat:      domain.LowerIsBetter.Tone(t.VisceralFat),
		Height:           domain.Neutral.Tone(t.Height),
	}
}

// HistoryItem is a weight entry annotated for display.
type HistoryItem struct {
	domain.WeightEntry
	DisplayDate    string                `json:"displayDate"`
	Classification domain.Classification `json:"classification"`
	Trends         Trends                `json:"trends"`
	Tones          Tones                 `json:"tones"`
	PreviousID     string                `json:"previousId,omitempty"`
}

// FatGoal reports the latest recorded fat percentage against the goal band.
type FatGoal struct {
	Entry *domain.WeightEntry `json:"entry"`
	Value *float64            `json:"value"`
	Min   float64             `json:"min"`
	Max   float64             `json:"max"`
	Met   bool                `json:"met"`
}

// WeightService encapsulates the body-composition history use cases.
type WeightService struct {
	repo domain.WeightRepository
	now  func() time.Time
}

// NewWeightService creates a WeightService backed by the given repository.
func NewWeightService(repo domain.WeightRepository) *WeightService {
	return &WeightService{repo: repo, now: time.Now}
}

// Today returns the local calendar date used to default new entries.
func (s *WeightService) Today() string {
	return domain.Today(s.now())
}

// Entries returns the raw history, newest first.
func (s *WeightService) Entries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	entries, err := s.repo.ListWeightEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortWeightEntries(entries)
	return entries, nil
}

// History returns every entry newest first, each compared against the
// chronologically previous entry.
func (s *WeightService) History(ctx context.Context, userID int64) ([]HistoryItem, error) {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Annotate(entries), nil
}

// SortWeightEntries orders entries by date descending. Same-date entries
// fall back to creation time, newest first, then to ID so the order is total.
func SortWeightEntries(entries []domain.WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Annotate derives classification and trends for entries already sorted by
// SortWeightEntries. Entry i is compared with entry i+1.
func Annotate(entries []domain.WeightEntry) []HistoryItem {
	out := make([]HistoryItem, len(entries))
	for i, e := range entries {
		item := HistoryItem{
			WeightEntry:    e,
			DisplayDate:    domain.FormatFullDate(e.Date),
			Classification: domain.ClassifyIMC(e.IMC),
		}
		var prev domain.WeightEntry
		if i+1 < len(entries) {
			prev = entries[i+1]
			item.PreviousID = prev.ID
		}
		item.Trends = Trends{
			Weight:           compareField(e.Weight, prev.Weight),
			IMC:              compareField(e.IMC, prev.IMC),
			FatPercentage:    compareField(e.FatPercentage, prev.FatPercentage),
			MusclePercentage: compareField(e.MusclePercentage, prev.MusclePercentage),
			VisceralFat:      compareField(e.VisceralFat, prev.VisceralFat),
			Height:           compareField(e.Height, prev.Height),
		}
		item.Tones = item.Trends.Tones()
		out[i] = item
	}
	return out
}

func compareField(cur, prev string) domain.Trend {
	return domain.Compare(domain.MetricValue(cur), domain.MetricValue(prev))
}

// Save creates the entry when form.ID is empty and otherwise replaces every
// editable field of the existing entry. IMC is recomputed from weight and
// height. It returns the stored entry.
func (s *WeightService) Save(ctx context.Context, userID int64, form WeightForm) (*domain.WeightEntry, error) {
	form.Date = strings.TrimSpace(form.Date)
	if form.Date == "" {
		form.Date = s.Today()
	}
	if !domain.ValidDate(form.Date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	entry := domain.WeightEntry{
		ID:               form.ID,
		UserID:           userID,
		Date:             form.Date,
		Weight:           strings.TrimSpace(form.Weight),
		Height:           strings.TrimSpace(form.Height),
		FatPercentage:    strings.TrimSpace(form.FatPercentage),
		MusclePercentage: strings.TrimSpace(form.MusclePercentage),
		VisceralFat:      strings.TrimSpace(form.VisceralFat),
	}
	entry.IMC = domain.CalculateIMC(entry.Weight, entry.Height)

	if entry.ID == "" {
		entry.CreatedAt = s.now().UTC()
		id, err := s.repo.AddWeightEntry(ctx, userID, entry)
		if err != nil {
			return nil, err
		}
		entry.ID = id
		return &entry, nil
	}

	existing, err := s.repo.GetWeightEntry(ctx, userID, entry.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("weight entry %s: %w", entry.ID, ErrNotFound)
	}
	entry.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateWeightEntry(ctx, userID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes an entry. Removing an entry that is already gone is not an
// error.
func (s *WeightService) Remove(ctx context.Context, userID int64, id string) error {
	return s.repo.DeleteWeightEntry(ctx, userID, id)
}

// FatGoal finds the newest entry with a recorded fat percentage and checks
// it against the goal band.
func (s *WeightService) FatGoal(ctx context.Context, userID int64) (*FatGoal, error) {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	goal := &FatGoal{Min: FatGoalMin, Max: FatGoalMax}
	for i := range entries {
		if strings.TrimSpace(entries[i].FatPercentage) == "" {
			continue
		}
		goal.Entry = &entries[i]
		goal.Value = domain.MetricValue(entries[i].FatPercentage)
		break
	}
	if goal.Value != nil {
		goal.Met = *goal.Value >= FatGoalMin && *goal.Value <= FatGoalMax
	}
	return goal, nil
}
