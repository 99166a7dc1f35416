package domain

import "context"

// Book names one of the two exercise-log collections: the in-progress daily
// log and the archived summary.
type Book string

const (
	BookDaily   Book = "daily"
	BookSummary Book = "summary"
)

// Valid reports whether b names a known collection.
func (b Book) Valid() bool { return b == BookDaily || b == BookSummary }

// CardioDay is the day tag whose logs record speed/distance/incline in the
// series/reps/kilos fields.
const CardioDay = "Día 5"

// ExerciseLog is one exercise record of a workout session.
type ExerciseLog struct {
	ID           string  `json:"id"`
	UserID       int64   `json:"-"`
	Date         string  `json:"date"`
	Day          string  `json:"day"`
	ExerciseName string  `json:"exerciseName"`
	Sede         string  `json:"sede"`
	Series       string  `json:"series"`
	Reps         string  `json:"reps"`
	Kilos        string  `json:"kilos"`
	Tiempo       string  `json:"tiempo"`
	Calorias     string  `json:"calorias"`
	DistanceUnit string  `json:"distanceUnit,omitempty"`
	Notes        string  `json:"notes"`
	Media        []Media `json:"media"`
}

// IsCardio reports whether the log belongs to the cardio day.
func (l ExerciseLog) IsCardio() bool { return l.Day == CardioDay }

// DayInfo describes a workout-day tag.
type DayInfo struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
}

// Days is the catalogue of workout-day tags, in display order.
var Days = []DayInfo{
	{"Día 5", "Cardio"},
	{"Día 1", "Pecho y Bíceps"},
	{"Día 2", "Pierna y Glúteo"},
	{"Día 3", "Hombro y Espalda"},
	{"Día 4", "Tríceps y Antebrazo"},
}

// LookupDay returns the catalogue entry for tag.
func LookupDay(tag string) (DayInfo, int, bool) {
	for i, d := range Days {
		if d.Tag == tag {
			return d, i, true
		}
	}
	return DayInfo{}, -1, false
}

// ExerciseRepository is the port for exercise-log persistence.
type ExerciseRepository interface {
	ListExerciseLogs(ctx context.Context, userID int64, book Book) ([]ExerciseLog, error)
	GetExerciseLog(ctx context.Context, userID int64, book Book, id string) (*ExerciseLog, error)
	AddExerciseLog(ctx context.Context, userID int64, book Book, l ExerciseLog) (string, error)
	UpdateExerciseLog(ctx context.Context, userID int64, book Book, l ExerciseLog) error
	DeleteExerciseLog(ctx context.Context, userID int64, book Book, id string) error
	ReplaceExerciseLogs(ctx context.Context, userID int64, book Book, logs []ExerciseLog) error
}
