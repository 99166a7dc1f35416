package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitlog/internal/domain"
)

// ExportVersion is the version written to every export document.
const ExportVersion = 1

// Export is the downloadable backup document. A full export writes every
// collection, empty ones as [], so restoring it clears what the backup did
// not have. A summary export writes only summaryLogs.
type Export struct {
	Version       int                  `json:"version"`
	ExportedAt    time.Time            `json:"exportedAt"`
	WeightEntries []domain.WeightEntry `json:"weightEntries"`
	Notes         []domain.Note        `json:"notes"`
	DailyLogs     []domain.ExerciseLog `json:"dailyLogs"`
	SummaryLogs   []domain.ExerciseLog `json:"summaryLogs"`

	summaryOnly bool
}

// MarshalJSON implements json.Marshaler.
func (e Export) MarshalJSON() ([]byte, error) {
	if e.summaryOnly {
		return json.Marshal(struct {
			Version     int                  `json:"version"`
			ExportedAt  time.Time            `json:"exportedAt"`
			SummaryLogs []domain.ExerciseLog `json:"summaryLogs"`
		}{e.Version, e.ExportedAt, orEmpty(e.SummaryLogs)})
	}
	type full Export
	f := full(e)
	f.WeightEntries = orEmpty(f.WeightEntries)
	f.Notes = orEmpty(f.Notes)
	f.DailyLogs = orEmpty(f.DailyLogs)
	f.SummaryLogs = orEmpty(f.SummaryLogs)
	return json.Marshal(f)
}

// importWeight accepts entries written before weights were always stored in
// kilograms.
type importWeight struct {
	domain.WeightEntry
	Unit string `json:"unit,omitempty"`
}

// importDoc mirrors Export with pointers so absent collections are left
// untouched on import. A missing version marks a session export, which only
// carries summaryLogs.
type importDoc struct {
	Version       *int                  `json:"version"`
	ExportedAt    *time.Time            `json:"exportedAt"`
	WeightEntries *[]importWeight       `json:"weightEntries"`
	Notes         *[]domain.Note        `json:"notes"`
	DailyLogs     *[]domain.ExerciseLog `json:"dailyLogs"`
	SummaryLogs   *[]domain.ExerciseLog `json:"summaryLogs"`
}

// ImportResult counts the records written per collection.
type ImportResult struct {
	WeightEntries int `json:"weightEntries"`
	Notes         int `json:"notes"`
	DailyLogs     int `json:"dailyLogs"`
	SummaryLogs   int `json:"summaryLogs"`
}

// TransferService exports and imports a user's data.
type TransferService struct {
	weights   domain.WeightRepository
	notes     domain.NoteRepository
	exercises domain.ExerciseRepository
	tx        domain.Transactor
	now       func() time.Time
}

// NewTransferService creates a TransferService over the given repositories.
// When the weight store is also a domain.Transactor, imports run in one of
// its transactions.
func NewTransferService(wr domain.WeightRepository, nr domain.NoteRepository, er domain.ExerciseRepository) *TransferService {
	tx, _ := wr.(domain.Transactor)
	return &TransferService{weights: wr, notes: nr, exercises: er, tx: tx, now: time.Now}
}

// ExportAll collects every collection of the user.
func (s *TransferService) ExportAll(ctx context.Context, userID int64) (*Export, error) {
	weights, err := s.weights.ListWeightEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListNotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	daily, err := s.exercises.ListExerciseLogs(ctx, userID, domain.BookDaily)
	if err != nil {
		return nil, err
	}
	summary, err := s.exercises.ListExerciseLogs(ctx, userID, domain.BookSummary)
	if err != nil {
		return nil, err
	}
	SortWeightEntries(weights)
	return &Export{
		Version:       ExportVersion,
		ExportedAt:    s.now().UTC(),
		WeightEntries: weights,
		Notes:         notes,
		DailyLogs:     daily,
		SummaryLogs:   summary,
	}, nil
}

// ExportSummary collects only the summary logs.
func (s *TransferService) ExportSummary(ctx context.Context, userID int64) (*Export, error) {
	summary, err := s.exercises.ListExerciseLogs(ctx, userID, domain.BookSummary)
	if err != nil {
		return nil, err
	}
	return &Export{
		Version:     ExportVersion,
		ExportedAt:  s.now().UTC(),
		SummaryLogs: orEmpty(summary),
		summaryOnly: true,
	}, nil
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// Text renders the export as a human-readable report.
func (e *Export) Text() string {
	var b strings.Builder
	if len(e.WeightEntries) > 0 {
		b.WriteString("HISTORIAL DE PESO\n====================================\n")
		for _, w := range e.WeightEntries {
			fmt.Fprintf(&b, "%s: %s kg", domain.FormatShortDate(w.Date), dash(w.Weight))
			if w.IMC != "" {
				fmt.Fprintf(&b, ", IMC %s (%s)", w.IMC, domain.ClassifyIMC(w.IMC).Label)
			}
			if w.FatPercentage != "" {
				fmt.Fprintf(&b, ", Grasa %s%%", w.FatPercentage)
			}
			if w.MusclePercentage != "" {
				fmt.Fprintf(&b, ", Músculo %s%%", w.MusclePercentage)
			}
			if w.VisceralFat != "" {
				fmt.Fprintf(&b, ", Visceral %s", w.VisceralFat)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(e.Notes) > 0 {
		b.WriteString("CONSEJOS\n====================================\n")
		for _, n := range e.Notes {
			fmt.Fprintf(&b, "%s\n%s\n", strings.ToUpper(n.Title), n.Content)
			for _, l := range n.VideoLinks {
				fmt.Fprintf(&b, "  - %s: %s\n", l.Name, l.URL)
			}
			b.WriteString("\n")
		}
	}
	if len(e.DailyLogs) > 0 {
		b.WriteString("REGISTRO DIARIO\n====================================\n")
		for _, l := range e.DailyLogs {
			b.WriteString(LogText(l))
			b.WriteString("\n\n")
		}
	}
	for _, sess := range BuildSessions(e.SummaryLogs, e.SummaryLogs, "") {
		b.WriteString(SessionText(sess))
	}
	return b.String()
}

// Import replaces the user's collections with those present in data. A
// collection absent from the document is left as it is. Every collection is
// validated before any is written, and the writes share one transaction
// when the store supports it, so a rejected import changes nothing.
func (s *TransferService) Import(ctx context.Context, userID int64, data []byte) (*ImportResult, error) {
	doc, err := decodeImport(data)
	if err != nil {
		return nil, err
	}
	plan, err := planImport(doc, s.now())
	if err != nil {
		return nil, err
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		return s.apply(ctx, userID, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan.result(), nil
}

// importPlan holds the validated collections; nil means "not in the file".
type importPlan struct {
	weights *[]domain.WeightEntry
	notes   *[]domain.Note
	daily   *[]domain.ExerciseLog
	summary *[]domain.ExerciseLog
}

func planImport(doc *importDoc, now time.Time) (*importPlan, error) {
	var p importPlan
	if doc.WeightEntries != nil {
		entries, err := importWeights(*doc.WeightEntries)
		if err != nil {
			return nil, err
		}
		p.weights = &entries
	}
	if doc.Notes != nil {
		notes, err := importNotes(*doc.Notes, now)
		if err != nil {
			return nil, err
		}
		p.notes = &notes
	}
	if doc.DailyLogs != nil {
		logs, err := importLogs(domain.BookDaily, *doc.DailyLogs)
		if err != nil {
			return nil, err
		}
		p.daily = &logs
	}
	if doc.SummaryLogs != nil {
		logs, err := importLogs(domain.BookSummary, *doc.SummaryLogs)
		if err != nil {
			return nil, err
		}
		p.summary = &logs
	}
	return &p, nil
}

func (s *TransferService) apply(ctx context.Context, userID int64, p *importPlan) error {
	if p.weights != nil {
		if err := s.weights.ReplaceWeightEntries(ctx, userID, *p.weights); err != nil {
			return err
		}
	}
	if p.notes != nil {
		if err := s.notes.ReplaceNotes(ctx, userID, *p.notes); err != nil {
			return err
		}
	}
	if p.daily != nil {
		if err := s.exercises.ReplaceExerciseLogs(ctx, userID, domain.BookDaily, *p.daily); err != nil {
			return err
		}
	}
	if p.summary != nil {
		if err := s.exercises.ReplaceExerciseLogs(ctx, userID, domain.BookSummary, *p.summary); err != nil {
			return err
		}
	}
	return nil
}

func (p *importPlan) result() *ImportResult {
	var r ImportResult
	if p.weights != nil {
		r.WeightEntries = len(*p.weights)
	}
	if p.notes != nil {
		r.Notes = len(*p.notes)
	}
	if p.daily != nil {
		r.DailyLogs = len(*p.daily)
	}
	if p.summary != nil {
		r.SummaryLogs = len(*p.summary)
	}
	return &r
}

func (s *TransferService) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

func decodeImport(data []byte) (*importDoc, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, invalidImport("el archivo está vacío")
	}
	var doc importDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, invalidImport("JSON mal formado en la posición %d", syn.Offset)
		}
		var typ *json.UnmarshalTypeError
		if errors.As(err, &typ) && typ.Field != "" {
			return nil, invalidImport("el campo %q tiene un tipo inesperado", typ.Field)
		}
		return nil, invalidImport("estructura de datos inesperada")
	}
	if doc.Version != nil && *doc.Version != ExportVersion {
		return nil, invalidImport("versión %d no soportada", *doc.Version)
	}
	if doc.WeightEntries == nil && doc.Notes == nil && doc.DailyLogs == nil && doc.SummaryLogs == nil {
		return nil, invalidImport("el archivo no contiene datos reconocibles")
	}
	return &doc, nil
}

func importWeights(in []importWeight) ([]domain.WeightEntry, error) {
	seen := make(map[string]bool, len(in))
	out := make([]domain.WeightEntry, 0, len(in))
	for i, w := range in {
		e := w.WeightEntry
		if !domain.ValidDate(e.Date) {
			return nil, invalidImport("registro de peso %d sin fecha válida", i+1)
		}
		if w.Unit != "" && w.Unit != "kg" && w.Unit != "lb" {
			return nil, invalidImport("registro de peso %d con unidad desconocida %q", i+1, w.Unit)
		}
		e.ID = importID(e.ID)
		if seen[e.ID] {
			return nil, invalidImport("id de peso duplicado %q", e.ID)
		}
		seen[e.ID] = true
		e.Weight = domain.WeightInKg(e.Weight, w.Unit)
		e.IMC = domain.CalculateIMC(e.Weight, e.Height)
		out = append(out, e)
	}
	SortWeightEntries(out)
	return out, nil
}

func importNotes(in []domain.Note, now time.Time) ([]domain.Note, error) {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Note, 0, len(in))
	for i, n := range in {
		if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Content) == "" {
			return nil, invalidImport("consejo %d sin título ni contenido", i+1)
		}
		n.ID = importID(n.ID)
		if seen[n.ID] {
			return nil, invalidImport("id de consejo duplicado %q", n.ID)
		}
		seen[n.ID] = true
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.Media = cleanMedia(n.Media)
		n.VideoLinks = cleanLinks(n.VideoLinks)
		out = append(out, n)
	}
	return out, nil
}

func importLogs(book domain.Book, in []domain.ExerciseLog) ([]domain.ExerciseLog, error) {
	seen := make(map[string]bool, len(in))
	out := make([]domain.ExerciseLog, 0, len(in))
	for i, l := range in {
		if !domain.ValidDate(l.Date) {
			return nil, invalidImport("ejercicio %d de %s sin fecha válida", i+1, book)
		}
		if strings.TrimSpace(l.ExerciseName) == "" {
			return nil, invalidImport("ejercicio %d de %s sin nombre", i+1, book)
		}
		l.ID = importID(l.ID)
		if seen[l.ID] {
			return nil, invalidImport("id de ejercicio duplicado %q", l.ID)
		}
		seen[l.ID] = true
		l.Media = cleanMedia(l.Media)
		out = append(out, l)
	}
	return out, nil
}

func importID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
