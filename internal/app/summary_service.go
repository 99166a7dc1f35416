package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"fitlog/internal/domain"
)

// OtherDay and UnnamedExercise label logs missing a day tag or a name.
const (
	OtherDay        = "Otros"
	UnnamedExercise = "Sin Nombre"
)

// Comparisons holds the trend of each compared log field. Only fields present
// on both the log and its predecessor are set.
type Comparisons struct {
	Series   domain.Trend `json:"series,omitempty"`
	Reps     domain.Trend `json:"reps,omitempty"`
	Kilos    domain.Trend `json:"kilos,omitempty"`
	Tiempo   domain.Trend `json:"tiempo,omitempty"`
	Calorias domain.Trend `json:"calorias,omitempty"`
}

// AnnotatedLog is a log with its comparison against the previous attempt of
// the same exercise at the same venue.
type AnnotatedLog struct {
	domain.ExerciseLog
	DisplayDate string      `json:"displayDate"`
	PreviousID  string      `json:"previousId,omitempty"`
	Comparisons Comparisons `json:"comparisons"`
}

// ExerciseGroup is every log of one exercise inside a day group.
type ExerciseGroup struct {
	Name string         `json:"name"`
	Logs []AnnotatedLog `json:"logs"`
}

// DayGroup is the logs of one workout-day tag inside a session.
type DayGroup struct {
	Tag       string          `json:"tag"`
	Title     string          `json:"title"`
	Key       string          `json:"key"`
	Exercises []ExerciseGroup `json:"exercises"`
}

// Session is the set of logs sharing a calendar date.
type Session struct {
	Date          string               `json:"date"`
	DisplayDate   string               `json:"displayDate"`
	IsToday       bool                 `json:"isToday"`
	TotalCalories float64              `json:"totalCalories"`
	Logs          []domain.ExerciseLog `json:"-"`
	Days          []DayGroup           `json:"days"`
}

// SummaryService encapsulates the workout summary use cases.
type SummaryService struct {
	repo domain.ExerciseRepository
}

// NewSummaryService creates a SummaryService backed by the given repository.
func NewSummaryService(repo domain.ExerciseRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

// Logs lists one collection as stored.
func (s *SummaryService) Logs(ctx context.Context, userID int64, book domain.Book) ([]domain.ExerciseLog, error) {
	if !book.Valid() {
		return nil, fmt.Errorf("%w: unknown log book %q", ErrValidation, book)
	}
	return s.repo.ListExerciseLogs(ctx, userID, book)
}

// Record stores a new log in book.
func (s *SummaryService) Record(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) (*domain.ExerciseLog, error) {
	if !book.Valid() {
		return nil, fmt.Errorf("%w: unknown log book %q", ErrValidation, book)
	}
	if !domain.ValidDate(l.Date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	l.ExerciseName = strings.TrimSpace(l.ExerciseName)
	if l.ExerciseName == "" {
		return nil, fmt.Errorf("%w: exerciseName is required", ErrValidation)
	}
	l.UserID = userID
	l.Media = cleanMedia(l.Media)
	id, err := s.repo.AddExerciseLog(ctx, userID, book, l)
	if err != nil {
		return nil, err
	}
	l.ID = id
	return &l, nil
}

// Sessions groups the summary logs into sessions, today's first and the rest
// newest first, each annotated with comparisons against every known log.
func (s *SummaryService) Sessions(ctx context.Context, userID int64, today string) ([]Session, error) {
	summary, err := s.repo.ListExerciseLogs(ctx, userID, domain.BookSummary)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.ListExerciseLogs(ctx, userID, domain.BookDaily)
	if err != nil {
		return nil, err
	}
	return BuildSessions(summary, MergeLogs(summary, daily), today), nil
}

// Session returns the session for date, or nil if it has no logs.
func (s *SummaryService) Session(ctx context.Context, userID int64, date, today string) (*Session, error) {
	sessions, err := s.Sessions(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Date == date {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// Log returns one summary log, or nil if it does not exist.
func (s *SummaryService) Log(ctx context.Context, userID int64, id string) (*domain.ExerciseLog, error) {
	return s.repo.GetExerciseLog(ctx, userID, domain.BookSummary, id)
}

// RemoveLog deletes a summary log.
func (s *SummaryService) RemoveLog(ctx context.Context, userID int64, id string) error {
	return s.repo.DeleteExerciseLog(ctx, userID, domain.BookSummary, id)
}

// RemoveSession deletes every summary log dated date and reports how many
// were removed.
func (s *SummaryService) RemoveSession(ctx context.Context, userID int64, date string) (int, error) {
	logs, err := s.repo.ListExerciseLogs(ctx, userID, domain.BookSummary)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range logs {
		if l.Date != date {
			continue
		}
		if err := s.repo.DeleteExerciseLog(ctx, userID, domain.BookSummary, l.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RemoveMedia drops one attachment of a summary log. Out-of-range indexes
// are ignored.
func (s *SummaryService) RemoveMedia(ctx context.Context, userID int64, id string, index int) (*domain.ExerciseLog, error) {
	l, err := s.repo.GetExerciseLog(ctx, userID, domain.BookSummary, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("exercise log %s: %w", id, ErrNotFound)
	}
	if index < 0 || index >= len(l.Media) {
		return l, nil
	}
	l.Media = append(l.Media[:index:index], l.Media[index+1:]...)
	if err := s.repo.UpdateExerciseLog(ctx, userID, domain.BookSummary, *l); err != nil {
		return nil, err
	}
	return l, nil
}

// MergeLogs combines collections, later collections overriding earlier ones
// with the same ID.
func MergeLogs(books ...[]domain.ExerciseLog) []domain.ExerciseLog {
	idx := make(map[string]int)
	var out []domain.ExerciseLog
	for _, logs := range books {
		for _, l := range logs {
			if i, ok := idx[l.ID]; ok {
				out[i] = l
				continue
			}
			idx[l.ID] = len(out)
			out = append(out, l)
		}
	}
	return out
}

// PreviousLog finds the most recent log strictly before cur's date with the
// same exercise name and venue.
func PreviousLog(cur domain.ExerciseLog, pool []domain.ExerciseLog) *domain.ExerciseLog {
	if !domain.ValidDate(cur.Date) {
		return nil
	}
	var best *domain.ExerciseLog
	for i := range pool {
		l := &pool[i]
		if l.ID == cur.ID || l.ExerciseName != cur.ExerciseName || l.Sede != cur.Sede {
			continue
		}
		if !domain.ValidDate(l.Date) || l.Date >= cur.Date {
			continue
		}
		if best == nil || l.Date > best.Date {
			best = l
		}
	}
	return best
}

// CompareLogs compares series, reps, kilos, tiempo and calorias of cur
// against prev. Tiempo is compared in seconds.
func CompareLogs(cur, prev domain.ExerciseLog) Comparisons {
	both := func(a, b *float64) domain.Trend {
		if a == nil || b == nil {
			return domain.TrendNone
		}
		return domain.Compare(a, b)
	}
	return Comparisons{
		Series:   both(domain.MetricValue(cur.Series), domain.MetricValue(prev.Series)),
		Reps:     both(domain.MetricValue(cur.Reps), domain.MetricValue(prev.Reps)),
		Kilos:    both(domain.MetricValue(cur.Kilos), domain.MetricValue(prev.Kilos)),
		Tiempo:   both(durationValue(cur.Tiempo), durationValue(prev.Tiempo)),
		Calorias: both(domain.MetricValue(cur.Calorias), domain.MetricValue(prev.Calorias)),
	}
}

func durationValue(s string) *float64 {
	secs, ok := domain.ParseDuration(s)
	if !ok {
		return nil
	}
	return &secs
}

// AnnotateLog attaches the comparison against the previous attempt in pool.
func AnnotateLog(l domain.ExerciseLog, pool []domain.ExerciseLog) AnnotatedLog {
	a := AnnotatedLog{ExerciseLog: l, DisplayDate: domain.FormatShortDate(l.Date)}
	if prev := PreviousLog(l, pool); prev != nil {
		a.PreviousID = prev.ID
		a.Comparisons = CompareLogs(l, *prev)
	}
	return a
}

// BuildSessions groups logs by date. Logs without a date are skipped.
// Day groups follow the catalogue order of domain.Days; logs whose tag is
// not in the catalogue are not shown in day groups but still count towards
// the session calories.
func BuildSessions(logs, pool []domain.ExerciseLog, today string) []Session {
	byDate := make(map[string]*Session)
	var order []string
	for _, l := range logs {
		if l.Date == "" {
			continue
		}
		sess, ok := byDate[l.Date]
		if !ok {
			sess = &Session{Date: l.Date, DisplayDate: domain.FormatLongDate(l.Date), IsToday: l.Date == today}
			byDate[l.Date] = sess
			order = append(order, l.Date)
		}
		sess.Logs = append(sess.Logs, l)
		if c, ok := domain.ParseMetric(l.Calorias); ok {
			sess.TotalCalories += c
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a == today || b == today {
			return a == today && b != today
		}
		return a > b
	})

	out := make([]Session, 0, len(order))
	for _, date := range order {
		sess := byDate[date]
		sess.Days = groupDays(sess.Date, sess.Logs, pool)
		out = append(out, *sess)
	}
	return out
}

func groupDays(date string, logs, pool []domain.ExerciseLog) []DayGroup {
	byTag := make(map[string][]domain.ExerciseLog)
	for _, l := range logs {
		tag := l.Day
		if tag == "" {
			tag = OtherDay
		}
		byTag[tag] = append(byTag[tag], l)
	}
	var days []DayGroup
	for _, info := range domain.Days {
		tagLogs := byTag[info.Tag]
		if len(tagLogs) == 0 {
			continue
		}
		g := DayGroup{Tag: info.Tag, Title: info.Title, Key: date + "-" + info.Tag}
		byName := make(map[string]int)
		for _, l := range tagLogs {
			name := l.ExerciseName
			if name == "" {
				name = UnnamedExercise
			}
			i, ok := byName[name]
			if !ok {
				i = len(g.Exercises)
				byName[name] = i
				g.Exercises = append(g.Exercises, ExerciseGroup{Name: name})
			}
			g.Exercises[i].Logs = append(g.Exercises[i].Logs, AnnotateLog(l, pool))
		}
		days = append(days, g)
	}
	return days
}

// LogText renders one log as plain text.
func LogText(l domain.ExerciseLog) string {
	var metrics string
	if l.IsCardio() {
		var parts []string
		if l.Series != "" {
			parts = append(parts, "Velocidad: "+l.Series)
		}
		if l.Reps != "" {
			dist := "Distancia: " + l.Reps
			switch l.DistanceUnit {
			case "KM":
				dist += " Kilómetros"
			case "":
			default:
				dist += " Metros"
			}
			parts = append(parts, dist)
		}
		if l.Kilos != "" {
			parts = append(parts, "Inclinación: "+l.Kilos)
		}
		if len(parts) == 0 {
			metrics = "  - -"
		} else {
			metrics = "  - " + strings.Join(parts, ", ")
		}
	} else {
		metrics = fmt.Sprintf("  - %s series x %s reps @ %s kgs", dash(l.Series), dash(l.Reps), dash(l.Kilos))
	}

	lines := []string{
		fmt.Sprintf("%s - %s [Sede: %s]", strings.ToUpper(l.ExerciseName), domain.FormatShortDate(l.Date), l.Sede),
		metrics,
	}
	if l.Tiempo != "" {
		lines = append(lines, "  - Tiempo: "+l.Tiempo+" Min")
	}
	if l.Calorias != "" {
		lines = append(lines, "  - Calorías: "+l.Calorias+" Kcal")
	}
	if l.Notes != "" {
		lines = append(lines, "  - Notas: "+l.Notes)
	}
	return strings.Join(lines, "\n")
}

// SessionText renders a whole session as plain text.
func SessionText(sess Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resumen de Sesión - %s\n", domain.FormatLongDate(sess.Date))
	fmt.Fprintf(&b, "Total Calorías: %s Kcal\n", FormatCalories(sess.TotalCalories))
	b.WriteString("====================================\n\n")
	for _, l := range sess.Logs {
		b.WriteString(LogText(l))
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatCalories formats a calorie total the Spanish way: decimal comma, up
// to three decimals, and dot grouping only from five integer digits up.
func FormatCalories(v float64) string {
	opts := []number.Option{number.MaxFractionDigits(3)}
	if math.Abs(v) < 10000 {
		opts = append(opts, number.NoSeparator())
	}
	return message.NewPrinter(language.Spanish).Sprint(number.Decimal(v, opts...))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
