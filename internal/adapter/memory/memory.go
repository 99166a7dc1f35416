// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitlog/internal/domain"
)

type bookKey struct {
	userID int64
	book   domain.Book
}

// DB implements an in-memory database storage. Records are copied in and
// out so callers never share slices with the store.
type DB struct {
	mu       sync.Mutex
	weights  map[int64][]domain.WeightEntry
	notes    map[int64][]domain.Note
	logs     map[bookKey][]domain.ExerciseLog
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
	now           func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		weights:  make(map[int64][]domain.WeightEntry),
		notes:    make(map[int64][]domain.Note),
		logs:     make(map[bookKey][]domain.ExerciseLog),
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.WeightRepository = (*DB)(nil)
var _ domain.NoteRepository = (*DB)(nil)
var _ domain.ExerciseRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.Transactor = (*DB)(nil)

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// --- WeightRepository ---

// ListWeightEntries returns the user's entries in insertion order.
func (db *DB) ListWeightEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.weights[userID]), nil
}

// GetWeightEntry returns nil when the entry does not exist.
func (db *DB) GetWeightEntry(ctx context.Context, userID int64, id string) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range db.weights[userID] {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

// AddWeightEntry stores e under a fresh ID.
func (db *DB) AddWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.ID = uuid.NewString()
	e.UserID = userID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = db.now().UTC()
	}
	db.weights[userID] = append(db.weights[userID], e)
	return e.ID, nil
}

// UpdateWeightEntry replaces the stored entry with the same ID.
func (db *DB) UpdateWeightEntry(ctx context.Context, userID int64, e domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	entries := db.weights[userID]
	i := slices.IndexFunc(entries, func(w domain.WeightEntry) bool { return w.ID == e.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	e.UserID = userID
	entries[i] = e
	return nil
}

// DeleteWeightEntry removes the entry. Unknown IDs are ignored.
func (db *DB) DeleteWeightEntry(ctx context.Context, userID int64, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.weights[userID] = slices.DeleteFunc(db.weights[userID], func(w domain.WeightEntry) bool { return w.ID == id })
	return nil
}

// ReplaceWeightEntries swaps the user's whole history.
func (db *DB) ReplaceWeightEntries(ctx context.Context, userID int64, entries []domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.WeightEntry, len(entries))
	for i, e := range entries {
		e.ID = newID(e.ID)
		e.UserID = userID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = db.now().UTC()
		}
		out[i] = e
	}
	db.weights[userID] = out
	return nil
}

// --- NoteRepository ---

func cloneNote(n domain.Note) domain.Note {
	n.Media = slices.Clone(n.Media)
	n.VideoLinks = slices.Clone(n.VideoLinks)
	return n
}

// ListNotes returns the user's notes in insertion order.
func (db *DB) ListNotes(ctx context.Context, userID int64) ([]domain.Note, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.Note, len(db.notes[userID]))
	for i, n := range db.notes[userID] {
		out[i] = cloneNote(n)
	}
	return out, nil
}

// GetNote returns nil when the note does not exist.
func (db *DB) GetNote(ctx context.Context, userID int64, id string) (*domain.Note, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, n := range db.notes[userID] {
		if n.ID == id {
			n = cloneNote(n)
			return &n, nil
		}
	}
	return nil, nil
}

// AddNote stores n under a fresh ID.
func (db *DB) AddNote(ctx context.Context, userID int64, n domain.Note) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n = cloneNote(n)
	n.ID = uuid.NewString()
	n.UserID = userID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = db.now().UTC()
	}
	db.notes[userID] = append(db.notes[userID], n)
	return n.ID, nil
}

// UpdateNote replaces the stored note with the same ID.
func (db *DB) UpdateNote(ctx context.Context, userID int64, n domain.Note) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	notes := db.notes[userID]
	i := slices.IndexFunc(notes, func(x domain.Note) bool { return x.ID == n.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	n = cloneNote(n)
	n.UserID = userID
	notes[i] = n
	return nil
}

// DeleteNote removes the note. Unknown IDs are ignored.
func (db *DB) DeleteNote(ctx context.Context, userID int64, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.notes[userID] = slices.DeleteFunc(db.notes[userID], func(x domain.Note) bool { return x.ID == id })
	return nil
}

// ReplaceNotes swaps all of the user's notes.
func (db *DB) ReplaceNotes(ctx context.Context, userID int64, notes []domain.Note) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.Note, len(notes))
	for i, n := range notes {
		n = cloneNote(n)
		n.ID = newID(n.ID)
		n.UserID = userID
		if n.CreatedAt.IsZero() {
			n.CreatedAt = db.now().UTC()
		}
		out[i] = n
	}
	db.notes[userID] = out
	return nil
}

// --- ExerciseRepository ---

func cloneLog(l domain.ExerciseLog) domain.ExerciseLog {
	l.Media = slices.Clone(l.Media)
	return l
}

// ListExerciseLogs returns one collection in insertion order.
func (db *DB) ListExerciseLogs(ctx context.Context, userID int64, book domain.Book) ([]domain.ExerciseLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	logs := db.logs[bookKey{userID, book}]
	out := make([]domain.ExerciseLog, len(logs))
	for i, l := range logs {
		out[i] = cloneLog(l)
	}
	return out, nil
}

// GetExerciseLog returns nil when the log does not exist.
func (db *DB) GetExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) (*domain.ExerciseLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, l := range db.logs[bookKey{userID, book}] {
		if l.ID == id {
			l = cloneLog(l)
			return &l, nil
		}
	}
	return nil, nil
}

// AddExerciseLog stores l under a fresh ID.
func (db *DB) AddExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	k := bookKey{userID, book}
	l = cloneLog(l)
	l.ID = uuid.NewString()
	l.UserID = userID
	db.logs[k] = append(db.logs[k], l)
	return l.ID, nil
}

// UpdateExerciseLog replaces the stored log with the same ID.
func (db *DB) UpdateExerciseLog(ctx context.Context, userID int64, book domain.Book, l domain.ExerciseLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	logs := db.logs[bookKey{userID, book}]
	i := slices.IndexFunc(logs, func(x domain.ExerciseLog) bool { return x.ID == l.ID })
	if i < 0 {
		return domain.ErrNotFound
	}
	l = cloneLog(l)
	l.UserID = userID
	logs[i] = l
	return nil
}

// DeleteExerciseLog removes the log. Unknown IDs are ignored.
func (db *DB) DeleteExerciseLog(ctx context.Context, userID int64, book domain.Book, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	k := bookKey{userID, book}
	db.logs[k] = slices.DeleteFunc(db.logs[k], func(x domain.ExerciseLog) bool { return x.ID == id })
	return nil
}

// ReplaceExerciseLogs swaps one whole collection.
func (db *DB) ReplaceExerciseLogs(ctx context.Context, userID int64, book domain.Book, logs []domain.ExerciseLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]domain.ExerciseLog, len(logs))
	for i, l := range logs {
		l = cloneLog(l)
		l.ID = newID(l.ID)
		l.UserID = userID
		out[i] = l
	}
	db.logs[bookKey{userID, book}] = out
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    db.now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// InTx restores weights, notes and exercise logs to their state before fn
// when fn fails.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.mu.Lock()
	weights, notes, logs := cloneAll(db.weights), cloneAll(db.notes), cloneAll(db.logs)
	db.mu.Unlock()
	if err := fn(ctx); err != nil {
		db.mu.Lock()
		db.weights, db.notes, db.logs = weights, notes, logs
		db.mu.Unlock()
		return err
	}
	return nil
}

func cloneAll[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: r.db.now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. Expired sessions are dropped.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if r.db.now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

// SessionCount reports how many sessions are stored, expired or not.
func (r *SessionRepo) SessionCount() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.sessions)
}
